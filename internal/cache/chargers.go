package cache

import (
	"context"

	"chargist/internal/models"
)

// UpsertCharger inserts or replaces a charger by id. The row is normalized
// first so a reported issue always forces BROKEN status.
func (s *Store) UpsertCharger(ctx context.Context, charger models.Charger) error {
	charger = charger.Normalize()
	if err := charger.Validate(); err != nil {
		return err
	}

	const query = `
		INSERT INTO chargers (id, station_id, type, power, price, status, issue)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			station_id = excluded.station_id,
			type = excluded.type,
			power = excluded.power,
			price = excluded.price,
			status = excluded.status,
			issue = excluded.issue
	`
	_, err := s.db.ExecContext(ctx, query,
		charger.ID, charger.StationID, charger.Type, charger.Power,
		charger.Price, charger.Status, charger.Issue)
	if err != nil {
		return err
	}
	s.hub.notify(tableChargers)
	return nil
}

// DeleteChargersByStation removes all chargers of one station.
func (s *Store) DeleteChargersByStation(ctx context.Context, stationID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chargers WHERE station_id = ?`, stationID); err != nil {
		return err
	}
	s.hub.notify(tableChargers)
	return nil
}

// ReplaceChargers swaps the full charger set of a station. Readers may observe
// an empty set between the delete and the inserts; the store does not diff.
func (s *Store) ReplaceChargers(ctx context.Context, stationID int64, chargers []models.Charger) error {
	if err := s.DeleteChargersByStation(ctx, stationID); err != nil {
		return err
	}
	for _, charger := range chargers {
		if err := s.UpsertCharger(ctx, charger); err != nil {
			return err
		}
	}
	return nil
}

// ChargersByStation returns all chargers of one station.
func (s *Store) ChargersByStation(ctx context.Context, stationID int64) ([]models.Charger, error) {
	const query = `
		SELECT id, station_id, type, power, price, status, issue
		FROM chargers WHERE station_id = ? ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chargers []models.Charger
	for rows.Next() {
		var c models.Charger
		if err := rows.Scan(&c.ID, &c.StationID, &c.Type, &c.Power, &c.Price, &c.Status, &c.Issue); err != nil {
			return nil, err
		}
		chargers = append(chargers, c)
	}
	return chargers, rows.Err()
}
