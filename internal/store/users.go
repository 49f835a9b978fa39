package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/buyerleads/internal/auth"
)

// ErrUserNotFound is returned by GetUser for unknown ids.
var ErrUserNotFound = errors.New("user not found")

// UpsertUser returns the user with email, creating it when missing. A
// non-empty name replaces the stored one.
func (s *Store) UpsertUser(ctx context.Context, email, name string) (auth.User, error) {
	var u auth.User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name)
		VALUES ($1, lower($2), $3)
		ON CONFLICT (email) DO UPDATE
			SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name)
		RETURNING id, email, name, created_at`,
		uuid.New(), email, name,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		return auth.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (auth.User, error) {
	var u auth.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
