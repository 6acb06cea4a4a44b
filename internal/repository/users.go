package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
	"github.com/google/uuid"
)

// CreateUser inserts u. ID and CreatedAt are assigned here. A name that
// differs only in case from an existing one is a duplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	u.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, name_key, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, utils.NormalizeUsername(u.Name), u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isDuplicateError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByID loads a user, including the password hash.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, created_at FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

// UserByName looks a user up case-insensitively.
func (s *Store) UserByName(ctx context.Context, name string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, created_at FROM users WHERE name_key = $1
	`, utils.NormalizeUsername(name))
	return scanUser(row)
}

// ListUsers returns every user ordered by name. Password hashes are left empty.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM users ORDER BY name_key`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
