package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
	"github.com/google/uuid"
)

// CreateJournal stores a journal owned by ownerID. The title must be
// non-blank and the owner must exist.
func (s *Store) CreateJournal(ctx context.Context, title string, ownerID uuid.UUID) (*models.Journal, error) {
	title = strings.TrimSpace(title)
	if err := utils.RequireText("title", "Title", title, utils.MaxTitleLength); err != nil {
		return nil, utils.ValidationErrors{}.Add(err)
	}

	if _, err := s.UserByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("journal owner %s: %w", ownerID, err)
	}

	j := &models.Journal{
		ID:        uuid.New(),
		UserID:    ownerID,
		Title:     title,
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journals (id, user_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`, j.ID, j.UserID, j.Title, j.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert journal: %w", err)
	}
	return j, nil
}

// GetJournal loads a journal by id.
func (s *Store) GetJournal(ctx context.Context, id uuid.UUID) (*models.Journal, error) {
	var j models.Journal
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at FROM journals WHERE id = $1
	`, id).Scan(&j.ID, &j.UserID, &j.Title, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get journal: %w", err)
	}
	return &j, nil
}

// ListJournalsForUser returns the user's journals, oldest first.
func (s *Store) ListJournalsForUser(ctx context.Context, userID uuid.UUID) ([]models.Journal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at FROM journals
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	journals := []models.Journal{}
	for rows.Next() {
		var j models.Journal
		if err := rows.Scan(&j.ID, &j.UserID, &j.Title, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		journals = append(journals, j)
	}
	return journals, rows.Err()
}
