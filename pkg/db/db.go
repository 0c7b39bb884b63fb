package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB provides database operations backed by a sqlite file
type DB struct {
	*sql.DB
}

// NewDB opens the sqlite database at path with foreign keys enforced
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite allows one writer at a time
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &DB{sqlDB}, nil
}

// withPragmas applies the connection pragmas to every pooled connection
func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close closes the database
func (db *DB) Close() error {
	return db.DB.Close()
}
