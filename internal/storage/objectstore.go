package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/electric-coding/artifactstore/internal/paths"
)

type ClientProvider func() (ObjectClient, error)

func StaticClient(client ObjectClient) ClientProvider {
	return func() (ObjectClient, error) {
		return client, nil
	}
}

// LazyClient resolves an ObjectClient on first use and keeps it. A failed
// resolution is not cached, so a later call may still succeed.
type LazyClient struct {
	mu       sync.Mutex
	provider ClientProvider
	client   ObjectClient
}

func NewLazyClient(provider ClientProvider) *LazyClient {
	return &LazyClient{provider: provider}
}

func (l *LazyClient) Get() (ObjectClient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}
	if l.provider == nil {
		return nil, fmt.Errorf("%w: no object client provider configured", ErrCapabilityUnavailable)
	}
	client, err := l.provider()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapabilityUnavailable, err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: object client provider returned nil", ErrCapabilityUnavailable)
	}
	l.client = client
	return client, nil
}

type ObjectStoreBackend struct {
	client *LazyClient
	logger *zap.Logger
}

func NewObjectStore(client *LazyClient, logger *zap.Logger) *ObjectStoreBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStoreBackend{client: client, logger: logger}
}

func (b *ObjectStoreBackend) Kind() paths.Kind {
	return paths.ObjectStore
}

func (b *ObjectStoreBackend) resolve(fullPath string) (ObjectClient, string, string, error) {
	client, err := b.client.Get()
	if err != nil {
		return nil, "", "", err
	}
	bucket, key, err := paths.ParseObjectURI(fullPath)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return client, bucket, key, nil
}

func (b *ObjectStoreBackend) ReadAll(fullPath string) ([]byte, error) {
	client, bucket, key, err := b.resolve(fullPath)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("read %s: %w: bucket root is not an object", fullPath, ErrNotFound)
	}
	data, err := client.Download(bucket, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fullPath, err)
	}
	return data, nil
}

func (b *ObjectStoreBackend) WriteAll(fullPath string, data []byte, contentType string) error {
	client, bucket, key, err := b.resolve(fullPath)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("write %s: %w: object key is required", fullPath, ErrUnsupported)
	}
	if err := client.Upload(bucket, key, data, contentType); err != nil {
		return fmt.Errorf("write %s: %w", fullPath, err)
	}
	return nil
}

func (b *ObjectStoreBackend) Exists(fullPath string) bool {
	entry, err := b.Stat(fullPath)
	if err != nil {
		b.logger.Debug("existence check failed", zap.String("path", fullPath), zap.Error(err))
		return false
	}
	return entry != Missing
}

// Stat reports File when an object exists at the exact key and Directory
// when at least one object lives under key + "/".
func (b *ObjectStoreBackend) Stat(fullPath string) (EntryType, error) {
	client, bucket, key, err := b.resolve(fullPath)
	if err != nil {
		return Missing, err
	}
	if key != "" {
		found, err := client.Head(bucket, key)
		if err != nil {
			return Missing, fmt.Errorf("stat %s: %w", fullPath, err)
		}
		if found {
			return File, nil
		}
	}
	keys, err := client.List(bucket, dirPrefix(key), 1)
	if err != nil {
		return Missing, fmt.Errorf("stat %s: %w", fullPath, err)
	}
	if len(keys) > 0 {
		return Directory, nil
	}
	return Missing, nil
}

// Remove deletes the object at fullPath and everything under it. Failures
// other than a missing client are logged and dropped.
func (b *ObjectStoreBackend) Remove(fullPath string) error {
	client, bucket, key, err := b.resolve(fullPath)
	if err != nil {
		if errors.Is(err, ErrCapabilityUnavailable) {
			return err
		}
		b.logger.Warn("delete skipped", zap.String("path", fullPath), zap.Error(err))
		return nil
	}

	keys := make([]string, 0)
	if key != "" {
		found, err := client.Head(bucket, key)
		if err != nil {
			b.logger.Warn("delete lookup failed", zap.String("path", fullPath), zap.Error(err))
		}
		if found {
			keys = append(keys, key)
		}
	}
	nested, err := client.List(bucket, dirPrefix(key), 0)
	if err != nil {
		b.logger.Warn("delete listing failed", zap.String("path", fullPath), zap.Error(err))
	}
	keys = append(keys, nested...)
	if len(keys) == 0 {
		return nil
	}

	if err := client.Delete(bucket, keys); err != nil {
		b.logger.Warn("delete failed", zap.String("path", fullPath), zap.Int("keys", len(keys)), zap.Error(err))
	}
	return nil
}

// Copy performs a server-side copy. When srcFull is a prefix rather than
// an object, every key beneath it is copied to the same relative key
// beneath destFull.
func (b *ObjectStoreBackend) Copy(srcFull, destFull string) error {
	client, srcBucket, srcKey, err := b.resolve(srcFull)
	if err != nil {
		return err
	}
	destBucket, destKey, err := paths.ParseObjectURI(destFull)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	if srcKey != "" {
		found, err := client.Head(srcBucket, srcKey)
		if err != nil {
			return fmt.Errorf("copy %s: %w", srcFull, err)
		}
		if found {
			if destKey == "" {
				return fmt.Errorf("copy %s: %w: destination object key is required", destFull, ErrUnsupported)
			}
			if err := client.Copy(srcBucket, srcKey, destBucket, destKey); err != nil {
				return fmt.Errorf("copy %s to %s: %w", srcFull, destFull, err)
			}
			return nil
		}
	}

	srcPrefix := dirPrefix(srcKey)
	keys, err := client.List(srcBucket, srcPrefix, 0)
	if err != nil {
		return fmt.Errorf("copy %s: %w", srcFull, err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("copy %s: %w", srcFull, ErrNotFound)
	}
	destPrefix := dirPrefix(destKey)
	for _, k := range keys {
		target := destPrefix + strings.TrimPrefix(k, srcPrefix)
		if err := client.Copy(srcBucket, k, destBucket, target); err != nil {
			return fmt.Errorf("copy %s to %s: %w", paths.ObjectURI(srcBucket, k), paths.ObjectURI(destBucket, target), err)
		}
	}
	return nil
}

// List returns the full URIs of objects under prefix, treating prefix as a
// directory so that "data" never matches "database". Transport failures
// yield an empty listing.
func (b *ObjectStoreBackend) List(prefix, suffix string) ([]string, error) {
	client, err := b.client.Get()
	if err != nil {
		return nil, err
	}

	searchPath := prefix
	if !strings.HasSuffix(searchPath, "/") {
		searchPath += "/"
	}
	bucket, key, err := paths.ParseObjectURI(searchPath)
	if err != nil {
		b.logger.Warn("list skipped", zap.String("prefix", prefix), zap.Error(err))
		return []string{}, nil
	}

	keys, err := client.List(bucket, key, 0)
	if err != nil {
		b.logger.Warn("list failed", zap.String("prefix", prefix), zap.Error(err))
		return []string{}, nil
	}

	results := make([]string, 0, len(keys))
	for _, k := range keys {
		if suffix != "" && !strings.HasSuffix(k, suffix) {
			continue
		}
		uri := paths.ObjectURI(bucket, k)
		if !strings.HasPrefix(uri, searchPath) {
			continue
		}
		results = append(results, uri)
	}
	return results, nil
}

func dirPrefix(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}
