package cache

import (
	"context"
	"database/sql"
	"errors"

	"chargist/internal/models"
)

// ErrNotFound is returned by point reads when the row is absent.
var ErrNotFound = errors.New("cache: not found")

// UpsertStation inserts or replaces a station by id.
func (s *Store) UpsertStation(ctx context.Context, station models.Station) error {
	const query = `
		INSERT INTO stations (id, name, latitude, longitude, image_url, avg_rating, payment_methods, nearby_services)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			image_url = excluded.image_url,
			avg_rating = excluded.avg_rating,
			payment_methods = excluded.payment_methods,
			nearby_services = excluded.nearby_services
	`
	_, err := s.db.ExecContext(ctx, query,
		station.ID, station.Name, station.Latitude, station.Longitude,
		station.ImageURL, station.AvgRating,
		models.JoinSet(station.PaymentMethods), models.JoinSet(station.NearbyServices))
	if err != nil {
		return err
	}
	s.hub.notify(tableStations)
	return nil
}

// UpdateStationDisplay updates only the mutable display fields, leaving
// payment methods, services and the image reference untouched. Used by the
// bounding-box reconcile so detail-sync owned fields are not clobbered.
func (s *Store) UpdateStationDisplay(ctx context.Context, id int64, name string, lat, lon, avgRating float64) error {
	const query = `
		UPDATE stations SET name = ?, latitude = ?, longitude = ?, avg_rating = ?
		WHERE id = ?
	`
	_, err := s.db.ExecContext(ctx, query, name, lat, lon, avgRating, id)
	if err != nil {
		return err
	}
	s.hub.notify(tableStations)
	return nil
}

// GetStation returns one station or ErrNotFound.
func (s *Store) GetStation(ctx context.Context, id int64) (models.Station, error) {
	const query = `
		SELECT id, name, latitude, longitude, image_url, avg_rating, payment_methods, nearby_services
		FROM stations WHERE id = ?
	`
	station, err := scanStation(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Station{}, ErrNotFound
	}
	return station, err
}

// AllStations returns every cached station record.
func (s *Store) AllStations(ctx context.Context) ([]models.Station, error) {
	const query = `
		SELECT id, name, latitude, longitude, image_url, avg_rating, payment_methods, nearby_services
		FROM stations ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, rows.Err()
}

// AllStationIDs returns the ids of every cached station.
func (s *Store) AllStationIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM stations ORDER BY id`)
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

// DeleteStation removes a station and its children.
func (s *Store) DeleteStation(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chargers WHERE station_id = ?`, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE station_id = ?`, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stations WHERE id = ?`, id); err != nil {
		return err
	}
	s.hub.notify(tableStations, tableChargers, tableReviews)
	return nil
}

// StationFull returns the station aggregate with chargers and reviews.
func (s *Store) StationFull(ctx context.Context, id int64) (models.StationFull, error) {
	station, err := s.GetStation(ctx, id)
	if err != nil {
		return models.StationFull{}, err
	}
	chargers, err := s.ChargersByStation(ctx, id)
	if err != nil {
		return models.StationFull{}, err
	}
	reviews, err := s.ReviewsByStation(ctx, id)
	if err != nil {
		return models.StationFull{}, err
	}
	return models.StationFull{Station: station, Chargers: chargers, Reviews: reviews}, nil
}

// AllStationsFull returns every station aggregate.
func (s *Store) AllStationsFull(ctx context.Context) ([]models.StationFull, error) {
	stations, err := s.AllStations(ctx)
	if err != nil {
		return nil, err
	}
	full := make([]models.StationFull, 0, len(stations))
	for _, station := range stations {
		chargers, err := s.ChargersByStation(ctx, station.ID)
		if err != nil {
			return nil, err
		}
		reviews, err := s.ReviewsByStation(ctx, station.ID)
		if err != nil {
			return nil, err
		}
		full = append(full, models.StationFull{Station: station, Chargers: chargers, Reviews: reviews})
	}
	return full, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (models.Station, error) {
	var station models.Station
	var payments, services string
	err := row.Scan(&station.ID, &station.Name, &station.Latitude, &station.Longitude,
		&station.ImageURL, &station.AvgRating, &payments, &services)
	if err != nil {
		return models.Station{}, err
	}
	station.PaymentMethods = models.SplitSet(payments)
	station.NearbyServices = models.SplitSet(services)
	return station, nil
}
