package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/electric-coding/artifactstore/internal/paths"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryClient is an in-process ObjectClient with S3's flat key semantics.
// Buffers are copied on the way in and out.
type MemoryClient struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{buckets: make(map[string]map[string]memoryObject)}
}

func (m *MemoryClient) bucket(name string) map[string]memoryObject {
	objects, ok := m.buckets[name]
	if !ok {
		objects = make(map[string]memoryObject)
		m.buckets[name] = objects
	}
	return objects
}

func (m *MemoryClient) Upload(bucket, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(bucket)[key] = memoryObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
	}
	return nil
}

func (m *MemoryClient) Download(bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("get object %s: %w", paths.ObjectURI(bucket, key), ErrNotFound)
	}
	return append([]byte{}, obj.data...), nil
}

// ContentType reports the content type recorded at upload, or "" when the
// object is missing or was uploaded without one.
func (m *MemoryClient) ContentType(bucket, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buckets[bucket][key].contentType
}

func (m *MemoryClient) Head(bucket, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buckets[bucket][key]
	return ok, nil
}

func (m *MemoryClient) List(bucket, prefix string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0)
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

func (m *MemoryClient) Delete(bucket string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.buckets[bucket], key)
	}
	return nil
}

// Copy keeps the source object's content type, as S3's CopyObject does.
func (m *MemoryClient) Copy(srcBucket, srcKey, destBucket, destKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[srcBucket][srcKey]
	if !ok {
		return fmt.Errorf("copy object %s: %w", paths.ObjectURI(srcBucket, srcKey), ErrNotFound)
	}
	m.bucket(destBucket)[destKey] = memoryObject{
		data:        append([]byte(nil), obj.data...),
		contentType: obj.contentType,
	}
	return nil
}
