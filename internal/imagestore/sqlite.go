package imagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS images (
  id         TEXT PRIMARY KEY,
  data       TEXT NOT NULL,
  size       INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_images_created ON images(created_at);
`

// SQLite is a Store persisted in a SQLite database file.
type SQLite struct {
	db     *sql.DB
	limits Limits
	opts   options
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// A leading "~/" in path is expanded to the home directory.
func OpenSQLite(ctx context.Context, path string, limits Limits, opts ...Option) (*SQLite, error) {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating store directory: %v", ErrStoreFailure, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStoreFailure, err)
	}
	// One connection serializes writers; eviction and insert share a transaction.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrStoreFailure, pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrStoreFailure, err)
	}

	return &SQLite{db: db, limits: limits.withDefaults(), opts: applyOptions(opts)}, nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, id string) (string, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM images WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.wrap(err)
	}
	return data, true, nil
}

// Save implements Store. Eviction and insert run in one transaction.
func (s *SQLite) Save(ctx context.Context, id, data string) ([]string, error) {
	if err := validateSave(id, data); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE id=?`, id).Scan(&exists); err != nil {
		return nil, s.wrap(err)
	}
	if exists > 0 {
		return nil, ErrDuplicateID
	}

	var count int
	var bytes int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size), 0) FROM images`).Scan(&count, &bytes); err != nil {
		return nil, s.wrap(err)
	}

	size := int64(len(data))
	var evicted []string
	if needsEviction(count, bytes, size, s.limits) {
		evicted, err = s.evictTx(ctx, tx, evictionCount(count), id)
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO images(id, data, size, created_at) VALUES(?,?,?,?)`,
		id, data, size, s.opts.now().UnixNano()); err != nil {
		return nil, s.wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, s.wrap(err)
	}
	return evicted, nil
}

// evictTx deletes the n oldest entries other than keep.
func (s *SQLite) evictTx(ctx context.Context, tx *sql.Tx, n int, keep string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM images WHERE id<>? ORDER BY created_at ASC, rowid ASC LIMIT ?`, keep, n)
	if err != nil {
		return nil, s.wrap(err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, s.wrap(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, s.wrap(err)
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE id=?`, id); err != nil {
			return nil, s.wrap(err)
		}
	}
	return ids, nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data, size, created_at FROM images ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Data, &e.Size, &at); err != nil {
			return nil, s.wrap(err)
		}
		e.CreatedAt = time.Unix(0, at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(err)
	}
	return out, nil
}

// Delete implements Store.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id=?`, id)
	if err != nil {
		return s.wrap(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// wrap classifies database errors. Context errors pass through unchanged.
func (s *SQLite) wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return ErrStoreClosed
	}
	return fmt.Errorf("%w: %v", ErrStoreFailure, err)
}

// Compile-time interface check.
var _ Store = (*SQLite)(nil)
