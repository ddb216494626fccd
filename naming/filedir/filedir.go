// Package filedir serves a naming.Directory from a TOML or YAML file.
//
// Every top-level table of the document is a context and every key inside
// it is a name:
//
//	[externalCtx]
//	myResource = "postgres://db:5432/orders"
//	replicas   = 3
//
// The file is read once by Open and again on Reload or, while Watch runs,
// whenever it changes on disk. A failed reload keeps the previous snapshot.
package filedir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/remoteresource/naming"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither TOML nor
	// YAML, judged by extension.
	ErrUnsupportedFormat = errors.New("filedir: unsupported file format")

	// ErrInvalidDocument is returned when a top-level value is not a table.
	ErrInvalidDocument = errors.New("filedir: invalid directory document")
)

// Format is a supported document format.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses a directory document into context -> name -> value data.
func Decode(f Format, data []byte) (map[string]map[string]any, error) {
	raw := map[string]any{}
	switch f {
	case TOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("filedir: decode toml: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("filedir: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	out := make(map[string]map[string]any, len(raw))
	for ctxName, v := range raw {
		switch entries := v.(type) {
		case map[string]any:
			out[ctxName] = entries
		case nil:
			// An empty YAML mapping ("ctx:") is an empty context.
			out[ctxName] = map[string]any{}
		default:
			return nil, fmt.Errorf("%w: context %q is a %T, want a table", ErrInvalidDocument, ctxName, v)
		}
	}
	return out, nil
}

// Directory is a naming.Directory backed by a file.
type Directory struct {
	path   string
	format Format
	log    *zap.Logger
	hook   func(error)

	cur atomic.Pointer[naming.MapDirectory]
}

var _ naming.Directory = (*Directory)(nil)

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.log = l
		}
	}
}

// OnReload registers fn to run after every reload attempt made by Watch,
// with the reload error or nil.
func OnReload(fn func(err error)) Option {
	return func(d *Directory) { d.hook = fn }
}

// Open reads the directory file at path.
func Open(path string, opts ...Option) (*Directory, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("filedir: %w", err)
	}

	d := &Directory{path: abs, format: format, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the absolute path of the file.
func (d *Directory) Path() string { return d.path }

// Reload re-reads the file and swaps the snapshot in one step. On error the
// previous snapshot stays in place.
func (d *Directory) Reload() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("filedir: %w", err)
	}
	entries, err := Decode(d.format, data)
	if err != nil {
		return err
	}
	d.cur.Store(naming.FromMap(entries))
	d.log.Debug("directory loaded",
		zap.String("path", d.path),
		zap.Int("contexts", len(entries)),
	)
	return nil
}

// Contexts returns the context names of the current snapshot.
func (d *Directory) Contexts() []string { return d.cur.Load().Contexts() }

// OpenContext implements naming.Directory against the current snapshot.
func (d *Directory) OpenContext(ctx context.Context, name string) (naming.Namespace, error) {
	return d.cur.Load().OpenContext(ctx, name)
}

// Watch reloads the file whenever it is written, created or renamed into
// place, until ctx is done. It returns nil when ctx ends and an error only
// when the watcher cannot be started or fails.
func (d *Directory) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("filedir: watch: %w", err)
	}
	defer w.Close()

	// Watching the parent survives editors that replace the file.
	if err := w.Add(filepath.Dir(d.path)); err != nil {
		return fmt.Errorf("filedir: watch: %w", err)
	}
	d.log.Info("watching directory file", zap.String("path", d.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !d.affects(ev) {
				continue
			}
			err := d.Reload()
			if err != nil {
				d.log.Warn("directory reload failed", zap.String("path", d.path), zap.Error(err))
			} else {
				d.log.Info("directory reloaded", zap.String("path", d.path))
			}
			if d.hook != nil {
				d.hook(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("filedir: watch: %w", err)
		}
	}
}

// affects reports whether ev should trigger a reload.
func (d *Directory) affects(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != d.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
