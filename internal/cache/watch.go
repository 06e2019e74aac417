package cache

import (
	"context"

	"chargist/internal/models"
)

// watchQuery runs query once, then again on every change signal for the given
// tables, emitting each result. The channel closes when ctx ends. A query
// error skips the emission; the next change signal retries.
func watchQuery[T any](ctx context.Context, s *Store, tables []string, query func(context.Context) (T, error)) <-chan T {
	out := make(chan T, 1)
	signals := s.hub.watch(ctx, tables...)

	go func() {
		defer close(out)
		emit := func() {
			value, err := query(ctx)
			if err != nil {
				return
			}
			// Conflate: replace an unconsumed value with the fresh one.
			select {
			case <-out:
			default:
			}
			select {
			case out <- value:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				emit()
			}
		}
	}()

	return out
}

// WatchStationFull emits the station aggregate on every relevant change.
// Emits nothing until the station exists locally.
func (s *Store) WatchStationFull(ctx context.Context, id int64) <-chan models.StationFull {
	tables := []string{tableStations, tableChargers, tableReviews, tableUsers}
	return watchQuery(ctx, s, tables, func(ctx context.Context) (models.StationFull, error) {
		return s.StationFull(ctx, id)
	})
}

// WatchAllStationsFull emits the full station list on every relevant change.
func (s *Store) WatchAllStationsFull(ctx context.Context) <-chan []models.StationFull {
	tables := []string{tableStations, tableChargers, tableReviews}
	return watchQuery(ctx, s, tables, s.AllStationsFull)
}

// WatchFavoritesByUser emits the user's favorite station ids on every change.
func (s *Store) WatchFavoritesByUser(ctx context.Context, userID int64) <-chan []int64 {
	return watchQuery(ctx, s, []string{tableFavorites}, func(ctx context.Context) ([]int64, error) {
		return s.FavoritesByUser(ctx, userID)
	})
}

// WatchUser emits the cached profile on every users table change.
func (s *Store) WatchUser(ctx context.Context, id int64) <-chan models.User {
	return watchQuery(ctx, s, []string{tableUsers}, func(ctx context.Context) (models.User, error) {
		return s.GetUser(ctx, id)
	})
}

// WatchReviewsWithAuthors emits a station's reviews joined with authors.
func (s *Store) WatchReviewsWithAuthors(ctx context.Context, stationID int64) <-chan []models.ReviewWithAuthor {
	tables := []string{tableReviews, tableUsers}
	return watchQuery(ctx, s, tables, func(ctx context.Context) ([]models.ReviewWithAuthor, error) {
		return s.ReviewsWithAuthors(ctx, stationID)
	})
}
