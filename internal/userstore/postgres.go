// internal/userstore/postgres.go
package userstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dubbing-backend/internal/models"
)

const queryTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL UNIQUE,
	image       TEXT NOT NULL DEFAULT '',
	target_lang TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres keeps users in a single table. The *sql.DB is expected to use the lib/pq driver.
type Postgres struct {
	DB *sql.DB
}

// EnsureSchema creates the users table when missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.DB.ExecContext(ctx, schema)
	return err
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, name, email, image, target_lang, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, NormalizeEmail(email)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Image,
		&user.TargetLang,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts the user; an existing row for the email is left untouched.
func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, image, target_lang)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := s.DB.QueryRowContext(ctx, query,
		user.ID, user.Name, NormalizeEmail(user.Email), user.Image, user.TargetLang,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// lost a race with another sign-in for the same email
		return nil
	}
	return err
}

// SetTargetLang overwrites the stored preference. Last write wins.
func (s *Postgres) SetTargetLang(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET target_lang = $1,
		    updated_at  = NOW()
		WHERE email = $2
	`

	result, err := s.DB.ExecContext(ctx, query, user.TargetLang, NormalizeEmail(user.Email))
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Ping verifies the connection for health checks.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
