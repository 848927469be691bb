package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the SQLite file behind a profile's cache. Every key is one row in
// cache_entries, so there are no relations to enforce.
type DB struct {
	*sql.DB
}

// Open opens the cache at path in WAL mode. The pool holds a single
// connection: writes from different threads queue on it instead of failing
// with SQLITE_BUSY.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping cache %s: %w", path, err)
	}
	return &DB{db}, nil
}

// JournalMode reports the active journal mode, "wal" once Open succeeded.
func (db *DB) JournalMode(ctx context.Context) (string, error) {
	var mode string
	if err := db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
		return "", fmt.Errorf("journal mode: %w", err)
	}
	return mode, nil
}
