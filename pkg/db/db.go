package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens the SQLite database at path with foreign keys enabled, a busy
// timeout, and immediate write transactions so concurrent writers queue on the
// lock instead of failing. ":memory:" yields a single-connection pool.
func Open(path string) (*sql.DB, error) {
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	memory := path == ":memory:"
	// Escaped so '?' and '#' in file names stay part of the path.
	dsn := fmt.Sprintf("file:%s?%s&_journal_mode=WAL", (&url.URL{Path: path}).EscapedPath(), params)
	if memory {
		dsn = "file::memory:?" + params
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}
	return conn, nil
}

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
