package artifactstore

import (
	"go.uber.org/zap"

	"github.com/electric-coding/artifactstore/internal/config"
	"github.com/electric-coding/artifactstore/internal/storage"
)

type (
	Config         = config.Config
	ObjectClient   = storage.ObjectClient
	ClientProvider = storage.ClientProvider
)

func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// LoadConfig reads a TOML config file. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

type options struct {
	logger       *zap.Logger
	client       *storage.LazyClient
	cfg          *Config
	textEncoding string
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObjectClient uses client for every object-store operation instead of
// the process-wide S3 client.
func WithObjectClient(client ObjectClient) Option {
	return func(o *options) {
		o.client = storage.NewLazyClient(storage.StaticClient(client))
	}
}

// WithClientProvider defers building the object client until the first
// object-store operation. A failing provider surfaces as
// ErrCapabilityUnavailable on that operation and is retried on the next.
func WithClientProvider(provider ClientProvider) Option {
	return func(o *options) {
		o.client = storage.NewLazyClient(provider)
	}
}

// WithConfig applies codec defaults from cfg and, unless a client was
// given explicitly, builds the S3 client from cfg.S3.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

func WithTextEncoding(name string) Option {
	return func(o *options) {
		o.textEncoding = name
	}
}

type textOptions struct {
	encoding string
}

type TextOption func(*textOptions)

// Encoding overrides the Store's text encoding for one call.
func Encoding(name string) TextOption {
	return func(o *textOptions) {
		o.encoding = name
	}
}

type writeOptions struct {
	contentType string
	indent      int
	indentSet   bool
	flow        bool
}

type WriteOption func(*writeOptions)

// ContentType is stored with the object on object stores. Filesystem
// stores ignore it.
func ContentType(contentType string) WriteOption {
	return func(o *writeOptions) {
		o.contentType = contentType
	}
}

// Indent overrides the Store's JSON or YAML indentation for one call. A
// negative indent writes compact single-line JSON.
func Indent(n int) WriteOption {
	return func(o *writeOptions) {
		o.indent = n
		o.indentSet = true
	}
}

// FlowStyle writes every YAML mapping and sequence inline.
func FlowStyle() WriteOption {
	return func(o *writeOptions) {
		o.flow = true
	}
}

func applyWriteOptions(opts []WriteOption) writeOptions {
	var o writeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
