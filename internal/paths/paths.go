package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ObjectScheme = "s3://"

type Kind int

const (
	Filesystem Kind = iota
	ObjectStore
)

func (k Kind) String() string {
	switch k {
	case Filesystem:
		return "filesystem"
	case ObjectStore:
		return "s3"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func Classify(path string) Kind {
	if strings.HasPrefix(path, ObjectScheme) {
		return ObjectStore
	}
	return Filesystem
}

// NormalizeBase returns the canonical base path for a Store. Relative
// filesystem paths are resolved against the working directory once, here.
func NormalizeBase(path string) (string, Kind, error) {
	kind := Classify(path)
	if kind == ObjectStore {
		return strings.TrimRight(path, "/"), kind, nil
	}

	if filepath.IsAbs(path) {
		return trimSeparators(path), kind, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", kind, fmt.Errorf("resolve working directory: %w", err)
	}
	return filepath.Join(cwd, path), kind, nil
}

func trimSeparators(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" || strings.HasSuffix(trimmed, ":") {
		// "/" or a bare volume such as "C:\" keeps its root separator.
		return path[:len(trimmed)+1]
	}
	return trimmed
}

func Join(base string, kind Kind, rel string) string {
	rel = stripLeadingSeparator(rel, kind)
	if rel == "" {
		return base
	}
	if kind == ObjectStore {
		return base + "/" + rel
	}
	return filepath.Join(base, filepath.FromSlash(rel))
}

func stripLeadingSeparator(rel string, kind Kind) string {
	if strings.HasPrefix(rel, "/") {
		return rel[1:]
	}
	if kind == Filesystem && filepath.Separator != '/' && strings.HasPrefix(rel, string(filepath.Separator)) {
		return rel[1:]
	}
	return rel
}

// Split breaks a full path into the directory or prefix that contains it
// and its final segment. Object-store paths are split lexically on "/".
func Split(full string) (string, string) {
	if Classify(full) == ObjectStore {
		idx := strings.LastIndex(full, "/")
		if idx < len(ObjectScheme) {
			return full, ""
		}
		return full[:idx], full[idx+1:]
	}

	dir := filepath.Dir(full)
	if dir == "" {
		dir = "."
	}
	return dir, filepath.Base(full)
}

var ErrInvalidObjectURI = errors.New("invalid s3 uri")

// ParseObjectURI splits s3://bucket/key into its bucket and key. An empty
// key addresses the bucket root.
func ParseObjectURI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, ObjectScheme) {
		return "", "", fmt.Errorf("%w: %q has no %s scheme", ErrInvalidObjectURI, uri, ObjectScheme)
	}
	rest := strings.TrimPrefix(uri, ObjectScheme)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: %q has no bucket", ErrInvalidObjectURI, uri)
	}
	return bucket, key, nil
}

func ObjectURI(bucket, key string) string {
	if key == "" {
		return ObjectScheme + bucket
	}
	return ObjectScheme + bucket + "/" + key
}
