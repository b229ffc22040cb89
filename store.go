package artifactstore

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/electric-coding/artifactstore/internal/codec"
	"github.com/electric-coding/artifactstore/internal/metrics"
	"github.com/electric-coding/artifactstore/internal/paths"
	"github.com/electric-coding/artifactstore/internal/storage"
)

type Kind = paths.Kind

const (
	Filesystem  = paths.Filesystem
	ObjectStore = paths.ObjectStore
)

// Store reads and writes artifacts relative to one base path. The backend
// is fixed at construction; a Store keeps no open handles, so it is safe
// for concurrent use.
type Store struct {
	base    string
	kind    Kind
	backend storage.Backend
	objects *storage.LazyClient
	logger  *zap.Logger

	textEncoding string
	jsonIndent   int
	yamlIndent   int
}

// New binds a Store to base. Relative filesystem paths are resolved
// against the current working directory once, here. Object-store bases
// never contact the store during construction.
func New(base string, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	normalized, kind, err := paths.NormalizeBase(base)
	if err != nil {
		return nil, fmt.Errorf("resolve base path %q: %w", base, err)
	}

	s := &Store{
		base:         normalized,
		kind:         kind,
		logger:       o.logger,
		textEncoding: codec.DefaultTextEncoding,
		jsonIndent:   codec.DefaultJSONIndent,
		yamlIndent:   codec.DefaultYAMLIndent,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	objects := o.client
	if o.cfg != nil {
		if o.cfg.Codec.TextEncoding != "" {
			s.textEncoding = o.cfg.Codec.TextEncoding
		}
		if o.cfg.Codec.JSONIndent > 0 {
			s.jsonIndent = o.cfg.Codec.JSONIndent
		}
		if o.cfg.Codec.YAMLIndent > 0 {
			s.yamlIndent = o.cfg.Codec.YAMLIndent
		}
		if objects == nil {
			s3cfg := o.cfg.S3
			objects = storage.NewLazyClient(func() (storage.ObjectClient, error) {
				return storage.NewS3Client(s3cfg)
			})
		}
	}
	if o.textEncoding != "" {
		s.textEncoding = o.textEncoding
	}
	if objects == nil {
		objects = storage.DefaultClient()
	}
	s.objects = objects

	if _, err := codec.LookupEncoding(s.textEncoding); err != nil {
		return nil, err
	}

	s.backend = s.backendFor(kind)
	return s, nil
}

// FromFilePath splits a full artifact path into a Store for its parent and
// the artifact's name.
func FromFilePath(full string, opts ...Option) (*Store, string, error) {
	dir, name := paths.Split(full)
	s, err := New(dir, opts...)
	if err != nil {
		return nil, "", err
	}
	return s, name, nil
}

// Collectors returns the Prometheus collectors updated by every Store.
func Collectors() []prometheus.Collector {
	return metrics.Collectors()
}

func (s *Store) backendFor(kind Kind) storage.Backend {
	if kind == ObjectStore {
		return storage.NewObjectStore(s.objects, s.logger)
	}
	return storage.NewLocal(s.logger)
}

func (s *Store) BasePath() string {
	return s.base
}

func (s *Store) Kind() Kind {
	return s.kind
}

func (s *Store) IsObjectStore() bool {
	return s.kind == ObjectStore
}

// FullPath resolves rel against the base path without touching storage.
func (s *Store) FullPath(rel string) string {
	return paths.Join(s.base, s.kind, rel)
}

func (s *Store) String() string {
	return s.base
}

func (s *Store) observe(op string, err error) {
	metrics.Observe(s.kind.String(), op, err)
}

func (s *Store) read(op, rel string) ([]byte, error) {
	data, err := s.backend.ReadAll(s.FullPath(rel))
	s.observe(op, err)
	if err != nil {
		return nil, err
	}
	metrics.AddBytes(s.kind.String(), "in", len(data))
	return data, nil
}

func (s *Store) write(op, rel string, data []byte, contentType string) error {
	err := s.backend.WriteAll(s.FullPath(rel), data, contentType)
	s.observe(op, err)
	if err != nil {
		return err
	}
	metrics.AddBytes(s.kind.String(), "out", len(data))
	return nil
}

func (s *Store) ReadBytes(rel string) ([]byte, error) {
	return s.read("read_bytes", rel)
}

func (s *Store) WriteBytes(rel string, data []byte, opts ...WriteOption) error {
	o := applyWriteOptions(opts)
	return s.write("write_bytes", rel, data, o.contentType)
}

func (s *Store) encodingFor(opts []TextOption) string {
	o := textOptions{encoding: s.textEncoding}
	for _, opt := range opts {
		opt(&o)
	}
	return o.encoding
}

func (s *Store) ReadText(rel string, opts ...TextOption) (string, error) {
	data, err := s.read("read_text", rel)
	if err != nil {
		return "", err
	}
	text, err := codec.DecodeText(data, s.encodingFor(opts))
	if err != nil {
		return "", parseError(rel, err)
	}
	return text, nil
}

func (s *Store) WriteText(rel, text string, opts ...TextOption) error {
	data, err := codec.EncodeText(text, s.encodingFor(opts))
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return s.write("write_text", rel, data, "")
}

// Exists never fails; an unreachable backend reports false.
func (s *Store) Exists(rel string) bool {
	ok := s.backend.Exists(s.FullPath(rel))
	s.observe("exists", nil)
	return ok
}

// Delete removes a file or a whole directory/prefix. An empty rel deletes
// the base path itself. Missing targets are not an error, and object-store
// failures are logged rather than returned.
func (s *Store) Delete(rel string) error {
	full := s.base
	if rel != "" {
		full = s.FullPath(rel)
	}
	s.logger.Info("deleting artifact", zap.String("path", full))
	err := s.backend.Remove(full)
	s.observe("delete", err)
	return err
}

// Copy copies src to dest. Either side may be a full s3:// URI instead of
// a path relative to the Store. Both sides must live on the same kind of
// backend.
func (s *Store) Copy(src, dest string) error {
	srcFull := s.resolveArg(src)
	destFull := s.resolveArg(dest)
	srcKind := paths.Classify(srcFull)
	destKind := paths.Classify(destFull)

	s.logger.Info("copying artifact", zap.String("src", srcFull), zap.String("dest", destFull))
	if srcKind != destKind {
		err := fmt.Errorf("copy %s to %s: %w: cross-backend copy", srcFull, destFull, ErrUnsupported)
		s.observe("copy", err)
		return err
	}
	err := s.backendFor(srcKind).Copy(srcFull, destFull)
	s.observe("copy", err)
	return err
}

// CopyTo copies rel from s into dstRel of dst.
func (s *Store) CopyTo(rel string, dst *Store, dstRel string) error {
	srcFull := s.FullPath(rel)
	destFull := dst.FullPath(dstRel)

	s.logger.Info("copying artifact", zap.String("src", srcFull), zap.String("dest", destFull))
	if s.kind != dst.kind {
		err := fmt.Errorf("copy %s to %s: %w: cross-backend copy", srcFull, destFull, ErrUnsupported)
		s.observe("copy", err)
		return err
	}
	err := s.backend.Copy(srcFull, destFull)
	s.observe("copy", err)
	return err
}

func (s *Store) resolveArg(p string) string {
	if paths.Classify(p) == ObjectStore {
		return p
	}
	return s.FullPath(p)
}

// ListFiles returns the full paths of files under prefix whose names end
// with suffix. An empty prefix lists the whole Store. Transport failures
// yield an empty list.
func (s *Store) ListFiles(prefix, suffix string) ([]string, error) {
	search := s.base
	if prefix != "" {
		search = s.FullPath(prefix)
	}
	files, err := s.backend.List(search, suffix)
	s.observe("list", err)
	return files, err
}
