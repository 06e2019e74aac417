package cache

import (
	"context"

	"chargist/internal/models"
)

// UpsertFavorite inserts a favorite marker, idempotently.
func (s *Store) UpsertFavorite(ctx context.Context, fav models.Favorite) error {
	const query = `
		INSERT INTO favorite_stations (station_id, user_id)
		VALUES (?, ?)
		ON CONFLICT (station_id, user_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, fav.StationID, fav.UserID)
	if err != nil {
		return err
	}
	s.hub.notify(tableFavorites)
	return nil
}

// DeleteFavorite removes one favorite marker.
func (s *Store) DeleteFavorite(ctx context.Context, fav models.Favorite) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorite_stations WHERE station_id = ? AND user_id = ?`, fav.StationID, fav.UserID); err != nil {
		return err
	}
	s.hub.notify(tableFavorites)
	return nil
}

// DeleteFavoritesByUser clears every favorite of one user.
func (s *Store) DeleteFavoritesByUser(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorite_stations WHERE user_id = ?`, userID); err != nil {
		return err
	}
	s.hub.notify(tableFavorites)
	return nil
}

// ReplaceFavorites swaps one user's favorite set for the emitted one. Other
// users' rows are untouched.
func (s *Store) ReplaceFavorites(ctx context.Context, userID int64, favs []models.Favorite) error {
	if err := s.DeleteFavoritesByUser(ctx, userID); err != nil {
		return err
	}
	for _, fav := range favs {
		if fav.UserID != userID {
			continue
		}
		if err := s.UpsertFavorite(ctx, fav); err != nil {
			return err
		}
	}
	return nil
}

// FavoritesByUser returns the station ids one user marked as favorite.
func (s *Store) FavoritesByUser(ctx context.Context, userID int64) ([]int64, error) {
	const query = `SELECT station_id FROM favorite_stations WHERE user_id = ? ORDER BY station_id`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
