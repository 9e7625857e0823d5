package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aretw0/lantern/pkg/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// Store implements ports.SnapshotStore on a SQLite database.
// Files that cannot be opened or written are reported as
// domain.ErrStorageUnavailable.
type Store struct {
	path string
	db   *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// The special path ":memory:" keeps everything in process.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, classify("failed to create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, classify("failed to open database", err)
	}
	// One connection: SQLite serializes writers anyway and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, classify("failed to apply schema", err)
	}

	return &Store{path: path, db: db}, nil
}

// Save upserts the snapshot.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return classify("failed to save snapshot", err)
	}
	return nil
}

// Load reads the snapshot.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, classify("failed to load snapshot", err)
	}
	return data, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE key = ?", key); err != nil {
		return classify("failed to delete snapshot", err)
	}
	return nil
}

// List returns every key in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM snapshots ORDER BY key")
	if err != nil {
		return nil, classify("failed to list snapshots", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// unavailableCodes are primary result codes meaning the database file itself
// is unusable.
var unavailableCodes = map[int]bool{
	sqlite3.SQLITE_CANTOPEN: true,
	sqlite3.SQLITE_READONLY: true,
	sqlite3.SQLITE_IOERR:    true,
	sqlite3.SQLITE_PERM:     true,
	sqlite3.SQLITE_FULL:     true,
	sqlite3.SQLITE_NOTADB:   true,
}

func classify(msg string, err error) error {
	unavailable := errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EROFS)

	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) && unavailableCodes[sqlErr.Code()&0xff] {
		unavailable = true
	}

	if unavailable {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
