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

const entryColumns = `id, journal_id, user_id, title, body, created_at, updated_at`

func validateEntry(title, body string) error {
	var errs utils.ValidationErrors
	errs = errs.Add(utils.RequireText("title", "Title", title, utils.MaxTitleLength))
	errs = errs.Add(utils.RequireText("body", "Body", body, 0))
	return errs.Err()
}

// CreateEntry stores an entry in journalID owned by ownerID. ownerID must be
// the acting user; it is never taken from client input. Returns ErrNotFound
// when the journal does not exist.
func (s *Store) CreateEntry(ctx context.Context, title, body string, ownerID, journalID uuid.UUID) (*models.Entry, error) {
	title = strings.TrimSpace(title)
	if err := validateEntry(title, body); err != nil {
		return nil, err
	}

	if _, err := s.GetJournal(ctx, journalID); err != nil {
		return nil, fmt.Errorf("entry journal %s: %w", journalID, err)
	}

	sealed, err := s.cipher.Seal(body)
	if err != nil {
		return nil, fmt.Errorf("seal entry body: %w", err)
	}

	now := s.now()
	e := &models.Entry{
		ID:        uuid.New(),
		JournalID: journalID,
		UserID:    ownerID,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.JournalID, e.UserID, e.Title, sealed, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// GetEntry loads an entry by id.
func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = $1`, id)
	e, err := s.scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntriesForJournal returns a journal's entries, oldest first.
func (s *Store) ListEntriesForJournal(ctx context.Context, journalID uuid.UUID) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE journal_id = $1
		ORDER BY created_at, id
	`, journalID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		e, err := s.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// UpdateEntry changes title and body only. Owner and journal are immutable.
func (s *Store) UpdateEntry(ctx context.Context, id uuid.UUID, fields models.EntryUpdate) (*models.Entry, error) {
	title := strings.TrimSpace(fields.Title)
	if err := validateEntry(title, fields.Body); err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Seal(fields.Body)
	if err != nil {
		return nil, fmt.Errorf("seal entry body: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE entries SET title = $1, body = $2, updated_at = $3 WHERE id = $4
	`, title, sealed, s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	if err := requireOneRow(res); err != nil {
		return nil, err
	}
	return s.GetEntry(ctx, id)
}

// DestroyEntry hard-deletes an entry.
func (s *Store) DestroyEntry(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireOneRow(res)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanEntry(row scanner) (*models.Entry, error) {
	var e models.Entry
	var body string
	if err := row.Scan(&e.ID, &e.JournalID, &e.UserID, &e.Title, &body, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	plain, err := s.cipher.Open(body)
	if err != nil {
		return nil, fmt.Errorf("open entry body: %w", err)
	}
	e.Body = plain
	return &e, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
