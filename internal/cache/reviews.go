package cache

import (
	"context"
	"time"

	"chargist/internal/models"
)

// UpsertReview inserts or replaces a review by its (station, user) key.
func (s *Store) UpsertReview(ctx context.Context, review models.Review) error {
	const query = `
		INSERT INTO reviews (station_id, user_id, rating, comment, date_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (station_id, user_id) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			date_ms = excluded.date_ms
	`
	_, err := s.db.ExecContext(ctx, query,
		review.StationID, review.UserID, review.Rating, review.Comment,
		review.Date.UnixMilli())
	if err != nil {
		return err
	}
	s.hub.notify(tableReviews)
	return nil
}

// DeleteReviewsByStation removes all reviews of one station.
func (s *Store) DeleteReviewsByStation(ctx context.Context, stationID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE station_id = ?`, stationID); err != nil {
		return err
	}
	s.hub.notify(tableReviews)
	return nil
}

// ReviewsByStation returns a station's reviews ordered by ascending date.
func (s *Store) ReviewsByStation(ctx context.Context, stationID int64) ([]models.Review, error) {
	const query = `
		SELECT station_id, user_id, rating, comment, date_ms
		FROM reviews WHERE station_id = ? ORDER BY date_ms ASC
	`
	rows, err := s.db.QueryContext(ctx, query, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		var dateMS int64
		if err := rows.Scan(&r.StationID, &r.UserID, &r.Rating, &r.Comment, &dateMS); err != nil {
			return nil, err
		}
		r.Date = time.UnixMilli(dateMS)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ReviewsWithAuthors joins each review of a station with its cached author.
// Reviews whose author is not cached yet come back with a zero user.
func (s *Store) ReviewsWithAuthors(ctx context.Context, stationID int64) ([]models.ReviewWithAuthor, error) {
	const query = `
		SELECT r.station_id, r.user_id, r.rating, r.comment, r.date_ms,
			COALESCE(u.id, 0), COALESCE(u.username, ''), COALESCE(u.name, ''), COALESCE(u.picture_url, '')
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.station_id = ?
		ORDER BY r.date_ms ASC
	`
	rows, err := s.db.QueryContext(ctx, query, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReviewWithAuthor
	for rows.Next() {
		var item models.ReviewWithAuthor
		var dateMS int64
		err := rows.Scan(&item.Review.StationID, &item.Review.UserID, &item.Review.Rating,
			&item.Review.Comment, &dateMS,
			&item.Author.ID, &item.Author.Username, &item.Author.Name, &item.Author.PictureURL)
		if err != nil {
			return nil, err
		}
		item.Review.Date = time.UnixMilli(dateMS)
		out = append(out, item)
	}
	return out, rows.Err()
}

// CountCommentedReviews returns how many cached reviews of a station carry a
// non-empty comment. Drives the backfill termination condition.
func (s *Store) CountCommentedReviews(ctx context.Context, stationID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM reviews WHERE station_id = ? AND comment != ''`
	var count int
	err := s.db.QueryRowContext(ctx, query, stationID).Scan(&count)
	return count, err
}
