package repository

import (
	"database/sql"
	"time"

	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
)

// Store persists users, journals and entries. Placeholders are written as
// $1..$n in order of first use, which both lib/pq and go-sqlite3 bind
// positionally.
type Store struct {
	db     *sql.DB
	cipher *utils.BodyCipher
	now    func() time.Time
}

// New returns a Store over db. cipher may be nil to keep entry bodies in
// plaintext.
func New(db *sql.DB, cipher *utils.BodyCipher) *Store {
	return &Store{
		db:     db,
		cipher: cipher,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// DB exposes the handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}
