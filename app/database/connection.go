package database

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a feed, article or list does not exist.
var ErrNotFound = errors.New("record not found")

// DB wraps the SQLite handle shared by all repositories.
type DB struct {
	*sqlx.DB
	path string
}

// Open connects to the SQLite database at path. Pragmas are passed through the
// DSN so every pooled connection enforces foreign keys.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	return &DB{DB: db, path: path}, nil
}

func (db *DB) Path() string {
	return db.path
}
