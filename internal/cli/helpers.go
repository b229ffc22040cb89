package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/electric-coding/artifactstore"
	"github.com/electric-coding/artifactstore/internal/config"
	"github.com/electric-coding/artifactstore/internal/logging"
)

type session struct {
	logger *zap.Logger
	opts   []artifactstore.Option
}

func newSession(global globalOptions) (*session, error) {
	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if global.LogLevel != "" {
		level = global.LogLevel
	}
	logger := logging.New(level)

	opts := []artifactstore.Option{
		artifactstore.WithConfig(cfg),
		artifactstore.WithLogger(logger),
	}
	if global.Encoding != "" {
		opts = append(opts, artifactstore.WithTextEncoding(global.Encoding))
	}
	return &session{logger: logger, opts: opts}, nil
}

func (s *session) open(base string) (*artifactstore.Store, error) {
	store, err := artifactstore.New(base, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", base, err)
	}
	return store, nil
}

func (s *session) openFile(full string) (*artifactstore.Store, string, error) {
	store, name, err := artifactstore.FromFilePath(full, s.opts...)
	if err != nil {
		return nil, "", fmt.Errorf("open store for %s: %w", full, err)
	}
	return store, name, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}
