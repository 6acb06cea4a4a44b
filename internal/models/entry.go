package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a single journal entry. UserID and JournalID are set when the
// entry is created and never change afterwards.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	JournalID uuid.UUID `json:"journal_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryUpdate carries the only fields of an Entry that may change.
type EntryUpdate struct {
	Title string
	Body  string
}

// OwnedBy reports whether the entry belongs to the given user.
func (e *Entry) OwnedBy(userID uuid.UUID) bool {
	return e != nil && userID != uuid.Nil && e.UserID == userID
}
