// Package db opens the application's sqlite database and manages its
// schema through embedded migrations.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle so store packages can hang shared helpers
// off one type.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the sqlite database at path and
// applies the connection pragmas: WAL journaling for concurrent
// readers and a busy timeout so short write contention retries inside
// sqlite instead of failing immediately.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := handle.Exec(p); err != nil {
			handle.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return &DB{handle}, nil
}
