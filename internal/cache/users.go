package cache

import (
	"context"
	"database/sql"
	"errors"

	"chargist/internal/models"
)

// UpsertUser inserts or replaces a user profile by id.
func (s *Store) UpsertUser(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (id, username, name, picture_url)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			name = excluded.name,
			picture_url = excluded.picture_url
	`
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Username, user.Name, user.PictureURL)
	if err != nil {
		return err
	}
	s.hub.notify(tableUsers)
	return nil
}

// GetUser returns one user or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT id, username, name, picture_url FROM users WHERE id = ?`
	var user models.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username, &user.Name, &user.PictureURL)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}
