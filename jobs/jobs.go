// Package jobs names per-run artifact directories and manages their
// lifecycle under a shared storage root.
package jobs

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/electric-coding/artifactstore"
	"github.com/electric-coding/artifactstore/internal/paths"
)

const (
	DefaultPrefix = "job"
	timeLayout    = "20060102-150405"
)

var ErrInvalidID = errors.New("invalid job id")

var now = time.Now

var idPattern = regexp.MustCompile(`^(.+)-(\d{8}-\d{6})-([0-9a-f]{8})$`)

// GenerateID returns "<prefix>-YYYYMMDD-HHMMSS-<8 hex>" using local time.
func GenerateID(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, now().Format(timeLayout), short)
}

// ParseID splits a generated id into its prefix and creation time.
func ParseID(id string) (string, time.Time, error) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	created, err := time.ParseInLocation(timeLayout, m[2], time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidID, id, err)
	}
	return m[1], created, nil
}

type Job struct {
	ID          string
	StoragePath string
}

func Create(storagePath, prefix string) Job {
	return Job{ID: GenerateID(prefix), StoragePath: storagePath}
}

func (j Job) String() string {
	return j.ID
}

// Path is the job's directory: StoragePath joined with the id.
func (j Job) Path() (string, error) {
	base, kind, err := paths.NormalizeBase(j.StoragePath)
	if err != nil {
		return "", err
	}
	return paths.Join(base, kind, j.ID), nil
}

// Store opens a Store rooted at the job's directory.
func (j Job) Store(opts ...artifactstore.Option) (*artifactstore.Store, error) {
	p, err := j.Path()
	if err != nil {
		return nil, fmt.Errorf("resolve job %s: %w", j.ID, err)
	}
	return artifactstore.New(p, opts...)
}

// List returns the ids of job directories directly under root whose names
// parse as job ids with the given prefix, oldest first. An empty prefix
// matches any prefix.
func List(root *artifactstore.Store, prefix string) ([]string, error) {
	files, err := root.ListFiles("", "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]time.Time)
	for _, f := range files {
		name := topLevelName(root, f)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		p, created, err := ParseID(name)
		if err != nil {
			continue
		}
		if prefix != "" && p != prefix {
			continue
		}
		seen[name] = created
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		ta, tb := seen[ids[a]], seen[ids[b]]
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return ids[a] < ids[b]
	})
	return ids, nil
}

// Cleanup deletes the oldest jobs under root until at most keep remain and
// returns the ids it removed.
func Cleanup(root *artifactstore.Store, prefix string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must be >= 0, got %d", keep)
	}
	ids, err := List(root, prefix)
	if err != nil {
		return nil, err
	}
	if len(ids) <= keep {
		return []string{}, nil
	}

	stale := ids[:len(ids)-keep]
	for _, id := range stale {
		if err := root.Delete(id); err != nil {
			return nil, fmt.Errorf("delete job %s: %w", id, err)
		}
	}
	return stale, nil
}

// topLevelName returns the first path segment of full below the Store's
// base, or "" for files stored directly in the base.
func topLevelName(root *artifactstore.Store, full string) string {
	rel := strings.TrimPrefix(full, root.BasePath())
	if root.IsObjectStore() {
		rel = strings.TrimPrefix(rel, "/")
	} else {
		rel = strings.TrimLeft(filepath.ToSlash(rel), "/")
	}
	name, _, nested := strings.Cut(rel, "/")
	if !nested {
		return ""
	}
	return name
}
