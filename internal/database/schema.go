package database

import (
	"database/sql"
	"fmt"
	"log"
)

// The schema sticks to SQL understood by both PostgreSQL and SQLite so the
// same statements bootstrap either store.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name VARCHAR(20) NOT NULL,
		name_key VARCHAR(20) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS journals (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS entries (
		id UUID PRIMARY KEY,
		journal_id UUID NOT NULL REFERENCES journals(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_journals_user_id ON journals(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_journals_created_at ON journals(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_journal_id ON entries(journal_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_user_id ON entries(user_id)`,
}

// InitTables creates all necessary tables if they don't exist
func InitTables(db *sql.DB) error {
	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("init tables: %w", err)
		}
	}

	log.Println("✅ Database tables initialized")
	return nil
}
