package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens an existing SQLite database in read-only mode
func OpenDatabase(path string) (*sql.DB, error) {
	// query parameters other than _pragma are only honoured on file: URIs
	return openSQLite(path, "file:"+path+"?mode=ro")
}

// OpenWritableDatabase opens (creating if needed) a SQLite database for writing
func OpenWritableDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StorageError{Path: path, Op: "open", Err: err}
		}
	}
	db, err := openSQLite(path, path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// a single writer avoids SQLITE_BUSY between the API handlers
	db.SetMaxOpenConns(1)
	return db, nil
}

func openSQLite(path, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	return db, nil
}
