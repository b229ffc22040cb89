package storage

import "github.com/electric-coding/artifactstore/internal/paths"

type EntryType int

const (
	Missing EntryType = iota
	File
	Directory
)

func (t EntryType) String() string {
	switch t {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "missing"
	}
}

// Backend performs whole-object I/O against one storage medium. All paths
// are full paths as produced by paths.Join.
//
// Exists never fails. List and Remove only return an error when the
// backend itself cannot be reached (ErrCapabilityUnavailable); transport
// failures degrade to an empty listing or a silent no-op.
type Backend interface {
	Kind() paths.Kind
	ReadAll(fullPath string) ([]byte, error)
	// WriteAll replaces the artifact at fullPath. contentType is recorded
	// where the medium supports it and may be empty.
	WriteAll(fullPath string, data []byte, contentType string) error
	Exists(fullPath string) bool
	Stat(fullPath string) (EntryType, error)
	Remove(fullPath string) error
	Copy(srcFull, destFull string) error
	List(prefix, suffix string) ([]string, error)
}

// ObjectClient is the capability an object store must provide. Keys are
// bucket-relative; errors should already carry a kind from this package.
type ObjectClient interface {
	Upload(bucket, key string, data []byte, contentType string) error
	Download(bucket, key string) ([]byte, error)
	Head(bucket, key string) (bool, error)
	// List returns every key starting with prefix, up to limit keys when
	// limit is positive.
	List(bucket, prefix string, limit int) ([]string, error)
	Delete(bucket string, keys []string) error
	Copy(srcBucket, srcKey, destBucket, destKey string) error
}
