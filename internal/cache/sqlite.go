package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the on-device cache. It owns the local copies of every entity; the
// remote backend stays the owner of canonical identity. All writes go through
// idempotent upserts keyed by primary key.
type Store struct {
	db  *sql.DB
	hub *hub
}

// Open creates a sqlite backed store at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA foreign_keys=ON")

	s := &Store{db: db, hub: newHub()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			avg_rating REAL NOT NULL DEFAULT 0,
			payment_methods TEXT NOT NULL DEFAULT '',
			nearby_services TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS chargers (
			id INTEGER PRIMARY KEY,
			station_id INTEGER NOT NULL,
			type TEXT NOT NULL,
			power TEXT NOT NULL,
			price REAL NOT NULL,
			status TEXT NOT NULL,
			issue TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chargers_station ON chargers(station_id)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			station_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			rating INTEGER NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			date_ms INTEGER NOT NULL,
			PRIMARY KEY (station_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			name TEXT NOT NULL,
			picture_url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS favorite_stations (
			station_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			PRIMARY KEY (station_id, user_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("cache: migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
