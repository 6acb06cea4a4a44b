package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // sqlite
)

// OpenSQLite opens (and creates if needed) a SQLite database for local
// development and tests. Queries are shared with the Postgres store.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}

	// Make the parent directory unless using an in-memory db.
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; serialising through one connection
	// avoids "database is locked" under concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = wal;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	// SQLite does not check foreign keys unless asked to.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("foreign keys pragma: %w", err)
	}

	log.Println("✅ Opened SQLite database at", path)

	if err := InitTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
