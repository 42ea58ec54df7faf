package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/venue-scout/internal/forecast"
)

// Warehouse reads and writes the pre-shaped forecast records the engine
// consumes. Null columns become nil pointers, never zero values.
type Warehouse struct {
	db *DB
}

// NewWarehouse creates a warehouse over the given database.
func NewWarehouse(db *DB) *Warehouse {
	return &Warehouse{db: db}
}

// UpsertVenue inserts or replaces a venue context.
func (w *Warehouse) UpsertVenue(ctx context.Context, v forecast.VenueContext) error {
	audiences, err := json.Marshal(v.Audiences)
	if err != nil {
		return fmt.Errorf("encoding audiences: %w", err)
	}
	_, err = w.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO venue_contexts
		 (venue_id, location_type, activity_type, audiences, time_profile, catchment, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.VenueID, v.LocationType, v.ActivityType, string(audiences), v.TimeProfile, v.Catchment, v.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting venue %s: %w", v.VenueID, err)
	}
	return nil
}

// Venue returns the venue context, or nil when unknown.
func (w *Warehouse) Venue(ctx context.Context, venueID string) (*forecast.VenueContext, error) {
	var v forecast.VenueContext
	var audiences string
	err := w.db.QueryRowContext(ctx,
		`SELECT venue_id, location_type, activity_type, audiences, time_profile, catchment, description
		 FROM venue_contexts WHERE venue_id = ?`, venueID,
	).Scan(&v.VenueID, &v.LocationType, &v.ActivityType, &audiences, &v.TimeProfile, &v.Catchment, &v.Description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting venue %s: %w", venueID, err)
	}
	if err := json.Unmarshal([]byte(audiences), &v.Audiences); err != nil {
		return nil, fmt.Errorf("decoding audiences for %s: %w", venueID, err)
	}
	return &v, nil
}

// UpsertDay inserts or replaces one day record.
func (w *Warehouse) UpsertDay(ctx context.Context, rec forecast.DayRecord) error {
	events, err := json.Marshal(rec.CommercialEvents)
	if err != nil {
		return fmt.Errorf("encoding commercial events: %w", err)
	}
	regime := sql.NullString{String: string(rec.Regime), Valid: rec.Regime != forecast.RegimeUnknown}

	_, err = w.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO day_records
		 (venue_id, date, score, regime, weather_alert, precip_prob, wind_speed_kmh,
		  events_500m, events_5km, events_10km, events_50km,
		  is_weekend, is_public_holiday, is_school_holiday, has_commercial_event, commercial_events)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VenueID, rec.Date, rec.Score, regime, rec.WeatherAlert, rec.PrecipProb, rec.WindSpeedKmh,
		rec.Events500m, rec.Events5km, rec.Events10km, rec.Events50km,
		nullBool(rec.IsWeekend), nullBool(rec.IsPublicHoliday), nullBool(rec.IsSchoolHoliday),
		nullBool(rec.HasCommercialEvent), string(events),
	)
	if err != nil {
		return fmt.Errorf("upserting day %s/%s: %w", rec.VenueID, rec.Date, err)
	}
	return nil
}

// Window returns the venue's records in [from, to], both ISO dates
// inclusive, ordered by date.
func (w *Warehouse) Window(ctx context.Context, venueID, from, to string) (forecast.Window, error) {
	win := forecast.Window{VenueID: venueID}

	rows, err := w.db.QueryContext(ctx,
		`SELECT venue_id, date, score, regime, weather_alert, precip_prob, wind_speed_kmh,
		        events_500m, events_5km, events_10km, events_50km,
		        is_weekend, is_public_holiday, is_school_holiday, has_commercial_event, commercial_events
		 FROM day_records WHERE venue_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		venueID, from, to,
	)
	if err != nil {
		return win, fmt.Errorf("querying window %s [%s, %s]: %w", venueID, from, to, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanDay(rows)
		if err != nil {
			return win, err
		}
		win.Days = append(win.Days, rec)
	}
	return win, rows.Err()
}

// Day returns a single record, or nil when absent.
func (w *Warehouse) Day(ctx context.Context, venueID, date string) (*forecast.DayRecord, error) {
	win, err := w.Window(ctx, venueID, date, date)
	if err != nil {
		return nil, err
	}
	if len(win.Days) == 0 {
		return nil, nil
	}
	return &win.Days[0], nil
}

func scanDay(rows *sql.Rows) (forecast.DayRecord, error) {
	var rec forecast.DayRecord
	var (
		score, precip, wind        sql.NullFloat64
		regime                     sql.NullString
		alert, e500, e5, e10, e50  sql.NullInt64
		weekend, pubHol, schoolHol sql.NullInt64
		hasEvent                   sql.NullInt64
		events                     string
	)
	if err := rows.Scan(&rec.VenueID, &rec.Date, &score, &regime, &alert, &precip, &wind,
		&e500, &e5, &e10, &e50, &weekend, &pubHol, &schoolHol, &hasEvent, &events); err != nil {
		return rec, fmt.Errorf("scanning day record: %w", err)
	}

	if score.Valid {
		rec.Score = forecast.Float(score.Float64)
	}
	if regime.Valid {
		rec.Regime = forecast.Regime(regime.String)
	}
	if alert.Valid {
		rec.WeatherAlert = forecast.Int(int(alert.Int64))
	}
	if precip.Valid {
		rec.PrecipProb = forecast.Float(precip.Float64)
	}
	if wind.Valid {
		rec.WindSpeedKmh = forecast.Float(wind.Float64)
	}
	if e500.Valid {
		rec.Events500m = forecast.Int(int(e500.Int64))
	}
	if e5.Valid {
		rec.Events5km = forecast.Int(int(e5.Int64))
	}
	if e10.Valid {
		rec.Events10km = forecast.Int(int(e10.Int64))
	}
	if e50.Valid {
		rec.Events50km = forecast.Int(int(e50.Int64))
	}
	if weekend.Valid {
		rec.IsWeekend = forecast.Bool(weekend.Int64 != 0)
	}
	if pubHol.Valid {
		rec.IsPublicHoliday = forecast.Bool(pubHol.Int64 != 0)
	}
	if schoolHol.Valid {
		rec.IsSchoolHoliday = forecast.Bool(schoolHol.Int64 != 0)
	}
	if hasEvent.Valid {
		rec.HasCommercialEvent = forecast.Bool(hasEvent.Int64 != 0)
	}
	if err := json.Unmarshal([]byte(events), &rec.CommercialEvents); err != nil {
		return rec, fmt.Errorf("decoding commercial events: %w", err)
	}
	return rec, nil
}

func nullBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	v := int64(0)
	if *b {
		v = 1
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

// Fixture is the YAML shape `venue-scout serve --fixture` loads: one
// venue plus its forecast days.
type Fixture struct {
	Venue forecast.VenueContext `yaml:"venue"`
	Days  []forecast.DayRecord  `yaml:"days"`
}

// LoadFixture reads a fixture file and upserts its contents.
func (w *Warehouse) LoadFixture(ctx context.Context, path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	if fx.Venue.VenueID == "" {
		return nil, fmt.Errorf("fixture %s: venue.venue_id is required", path)
	}

	if err := w.UpsertVenue(ctx, fx.Venue); err != nil {
		return nil, err
	}
	for i := range fx.Days {
		if fx.Days[i].VenueID == "" {
			fx.Days[i].VenueID = fx.Venue.VenueID
		}
		if err := w.UpsertDay(ctx, fx.Days[i]); err != nil {
			return nil, err
		}
	}
	return &fx, nil
}
