// Package sqldir persists a naming.Directory in SQLite.
//
// Contexts are rows of the namespaces table and names are rows of entries,
// with values stored as JSON. Lookups decode the JSON into the generic Go
// representation (string, float64, bool, []any, map[string]any or nil).
package sqldir

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sghaida/remoteresource/naming"
	"github.com/sghaida/remoteresource/naming/sqldir/migrations"
)

// ErrInvalidValue is returned by BindJSON for malformed JSON.
var ErrInvalidValue = errors.New("sqldir: value is not valid JSON")

// Store is a SQLite-backed naming.Directory.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

var _ naming.Directory = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqldir: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL for concurrent readers; pragmas in the DSN apply to every pooled
	// connection.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	s.log.Debug("sqlite directory opened", zap.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		s.log.Info("applied migration", zap.String("file", name))
	}
	return nil
}

// CreateNamespace adds an empty context. Existing contexts are left as is.
func (s *Store) CreateNamespace(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("sqldir: empty context name")
	}
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO namespaces (name) VALUES (?)", name)
	if err != nil {
		return fmt.Errorf("creating namespace %q: %w", name, err)
	}
	return nil
}

// Bind stores value, encoded as JSON, under name in context ctxName. The
// context is created if needed and an existing binding is replaced.
func (s *Store) Bind(ctx context.Context, ctxName, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q/%q: %w", ctxName, name, err)
	}
	return s.BindJSON(ctx, ctxName, name, raw)
}

// BindJSON is Bind for a value that is already JSON.
func (s *Store) BindJSON(ctx context.Context, ctxName, name string, raw json.RawMessage) error {
	if ctxName == "" || name == "" {
		return errors.New("sqldir: empty context or name")
	}
	if !json.Valid(raw) {
		return fmt.Errorf("%w: %q/%q", ErrInvalidValue, ctxName, name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO namespaces (name) VALUES (?)", ctxName); err != nil {
		return fmt.Errorf("creating namespace %q: %w", ctxName, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (namespace, name, value) VALUES (?, ?, ?)
		ON CONFLICT (namespace, name) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, ctxName, name, string(raw))
	if err != nil {
		return fmt.Errorf("binding %q/%q: %w", ctxName, name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing binding: %w", err)
	}

	s.log.Debug("bound entry", zap.String("context", ctxName), zap.String("name", name))
	return nil
}

// Unbind removes a binding. It returns a *naming.NotFoundError when nothing
// was bound.
func (s *Store) Unbind(ctx context.Context, ctxName, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE namespace = ? AND name = ?", ctxName, name)
	if err != nil {
		return fmt.Errorf("unbinding %q/%q: %w", ctxName, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unbinding %q/%q: %w", ctxName, name, err)
	}
	if n == 0 {
		return &naming.NotFoundError{Context: ctxName, Name: name}
	}
	return nil
}

// Contexts returns all context names in sorted order.
func (s *Store) Contexts(ctx context.Context) ([]string, error) {
	return s.column(ctx, "SELECT name FROM namespaces ORDER BY name")
}

// Names returns the names bound in ctxName in sorted order.
func (s *Store) Names(ctx context.Context, ctxName string) ([]string, error) {
	return s.column(ctx, "SELECT name FROM entries WHERE namespace = ? ORDER BY name", ctxName)
}

func (s *Store) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", naming.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// OpenContext implements naming.Directory.
func (s *Store) OpenContext(ctx context.Context, name string) (naming.Namespace, error) {
	var found string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM namespaces WHERE name = ?", name).Scan(&found)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, &naming.NotFoundError{Context: name}
	case err != nil:
		return nil, unavailable(ctx, err)
	}
	return &namespace{store: s, name: name}, nil
}

type namespace struct {
	store *Store
	name  string
}

func (n *namespace) Lookup(ctx context.Context, name string) (any, error) {
	var raw string
	err := n.store.db.QueryRowContext(ctx,
		"SELECT value FROM entries WHERE namespace = ? AND name = ?", n.name, name,
	).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, &naming.NotFoundError{Context: n.name, Name: name}
	case err != nil:
		return nil, unavailable(ctx, err)
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decoding %q/%q: %w", n.name, name, err)
	}
	return v, nil
}

// unavailable classifies a query failure. Context errors pass through.
func unavailable(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", naming.ErrUnavailable, err)
}
