package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered journal author.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Internal only - never returned in JSON
	PasswordHash string `json:"-"`
}
