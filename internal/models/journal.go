package models

import (
	"time"

	"github.com/google/uuid"
)

// Journal groups entries under a single owner. Owner is fixed at creation.
type Journal struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
