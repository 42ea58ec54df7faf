// Package store is the serving layer's data access: a SQLite warehouse
// of pre-shaped forecast records plus conversation-state persistence.
// The answer engine never imports this package; it receives records as
// plain values and hands back an updated context for the caller to
// persist here.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with venue-scout helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS venue_contexts (
    venue_id TEXT PRIMARY KEY,
    location_type TEXT NOT NULL DEFAULT '',
    activity_type TEXT NOT NULL DEFAULT '',
    audiences TEXT NOT NULL DEFAULT '[]',
    time_profile TEXT NOT NULL DEFAULT '',
    catchment TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS day_records (
    venue_id TEXT NOT NULL,
    date TEXT NOT NULL,
    score REAL,
    regime TEXT,
    weather_alert INTEGER,
    precip_prob REAL,
    wind_speed_kmh REAL,
    events_500m INTEGER,
    events_5km INTEGER,
    events_10km INTEGER,
    events_50km INTEGER,
    is_weekend INTEGER,
    is_public_holiday INTEGER,
    is_school_holiday INTEGER,
    has_commercial_event INTEGER,
    commercial_events TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY(venue_id, date)
);

CREATE INDEX IF NOT EXISTS idx_day_records_date ON day_records(date);

CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    venue_id TEXT NOT NULL DEFAULT '',
    context TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);
`
