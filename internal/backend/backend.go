// Package backend opens the naming directory selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sghaida/remoteresource/config"
	"github.com/sghaida/remoteresource/naming"
	"github.com/sghaida/remoteresource/naming/filedir"
	"github.com/sghaida/remoteresource/naming/httpdir"
	"github.com/sghaida/remoteresource/naming/sqldir"
)

// Backend is an opened directory and what it needs at shutdown.
type Backend struct {
	Directory naming.Directory
	Kind      string

	file  *filedir.Directory
	store *sqldir.Store
}

// Open opens the directory described by cfg. A memory backend starts empty.
func Open(cfg config.DirectoryConfig, log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Backend{Kind: cfg.Kind}

	switch cfg.Kind {
	case config.KindMemory:
		b.Directory = naming.NewMapDirectory()
	case config.KindFile, "":
		d, err := filedir.Open(cfg.File, filedir.WithLogger(log))
		if err != nil {
			return nil, err
		}
		b.Kind = config.KindFile
		b.Directory, b.file = d, d
	case config.KindSQLite:
		s, err := sqldir.Open(cfg.SQLite, sqldir.WithLogger(log))
		if err != nil {
			return nil, err
		}
		b.Directory, b.store = s, s
	case config.KindHTTP:
		c, err := httpdir.NewClient(cfg.URL,
			httpdir.WithRateLimit(cfg.Rate, 1),
			httpdir.WithClientLogger(log),
		)
		if err != nil {
			return nil, err
		}
		b.Directory = c
	default:
		return nil, fmt.Errorf("backend: unknown directory kind %q", cfg.Kind)
	}

	log.Info("directory opened", zap.String("kind", b.Kind))
	return b, nil
}

// Store returns the SQLite store, or nil for other kinds.
func (b *Backend) Store() *sqldir.Store { return b.store }

// Watch reloads a file backend on change until ctx is done. Other kinds
// return immediately.
func (b *Backend) Watch(ctx context.Context) error {
	if b.file == nil {
		return nil
	}
	return b.file.Watch(ctx)
}

// Close releases the backend.
func (b *Backend) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
