package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/intent"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesDirectoryAndSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "venue-scout.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('venue_contexts', 'day_records', 'conversations')`).Scan(&count)
	if err != nil {
		t.Fatalf("querying schema: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 tables, found %d", count)
	}
}

func TestVenueRoundTrip(t *testing.T) {
	db := openTestDB(t)
	w := NewWarehouse(db)
	ctx := context.Background()

	venue := forecast.VenueContext{
		VenueID:      "venue-1",
		LocationType: "outdoor",
		ActivityType: "food_truck",
		Audiences:    []string{"familles", "bureaux"},
		TimeProfile:  "midi",
		Catchment:    "quartier",
		Description:  "Camion au bord du canal",
	}
	if err := w.UpsertVenue(ctx, venue); err != nil {
		t.Fatalf("UpsertVenue: %v", err)
	}

	got, err := w.Venue(ctx, "venue-1")
	if err != nil {
		t.Fatalf("Venue: %v", err)
	}
	if got == nil {
		t.Fatal("expected venue, got nil")
	}
	if got.LocationType != "outdoor" || got.Description != venue.Description {
		t.Errorf("venue fields lost: %+v", got)
	}
	if len(got.Audiences) != 2 || got.Audiences[0] != "familles" {
		t.Errorf("audiences = %v, want %v", got.Audiences, venue.Audiences)
	}

	missing, err := w.Venue(ctx, "no-such-venue")
	if err != nil {
		t.Fatalf("Venue(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown venue, got %+v", missing)
	}
}

func TestDayRoundTripPreservesNilFields(t *testing.T) {
	db := openTestDB(t)
	w := NewWarehouse(db)
	ctx := context.Background()

	full := forecast.DayRecord{
		VenueID:            "venue-1",
		Date:               "2026-06-05",
		Score:              forecast.Float(82.5),
		Regime:             forecast.RegimeA,
		WeatherAlert:       forecast.Int(0),
		PrecipProb:         forecast.Float(0.1),
		WindSpeedKmh:       forecast.Float(12),
		Events500m:         forecast.Int(1),
		Events5km:          forecast.Int(4),
		IsWeekend:          forecast.Bool(false),
		HasCommercialEvent: forecast.Bool(true),
		CommercialEvents:   []string{"Foire de Paris"},
	}
	sparse := forecast.DayRecord{
		VenueID: "venue-1",
		Date:    "2026-06-06",
	}
	for _, rec := range []forecast.DayRecord{full, sparse} {
		if err := w.UpsertDay(ctx, rec); err != nil {
			t.Fatalf("UpsertDay(%s): %v", rec.Date, err)
		}
	}

	got, err := w.Day(ctx, "venue-1", "2026-06-05")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.Score == nil || *got.Score != 82.5 {
		t.Errorf("score = %v, want 82.5", got.Score)
	}
	if got.Regime != forecast.RegimeA {
		t.Errorf("regime = %q, want A", got.Regime)
	}
	if got.WeatherAlert == nil || *got.WeatherAlert != 0 {
		t.Errorf("weather_alert = %v, want 0", got.WeatherAlert)
	}
	if got.IsWeekend == nil || *got.IsWeekend {
		t.Errorf("is_weekend = %v, want false", got.IsWeekend)
	}
	if got.HasCommercialEvent == nil || !*got.HasCommercialEvent {
		t.Errorf("has_commercial_event = %v, want true", got.HasCommercialEvent)
	}
	if len(got.CommercialEvents) != 1 || got.CommercialEvents[0] != "Foire de Paris" {
		t.Errorf("commercial_events = %v", got.CommercialEvents)
	}

	got, err = w.Day(ctx, "venue-1", "2026-06-06")
	if err != nil {
		t.Fatalf("Day(sparse): %v", err)
	}
	if got == nil {
		t.Fatal("expected sparse record, got nil")
	}
	if got.Score != nil || got.Regime != forecast.RegimeUnknown || got.WeatherAlert != nil ||
		got.PrecipProb != nil || got.Events500m != nil || got.IsWeekend != nil || got.HasCommercialEvent != nil {
		t.Errorf("absent columns must come back as nil: %+v", got)
	}
	if len(got.CommercialEvents) != 0 {
		t.Errorf("commercial_events = %v, want empty", got.CommercialEvents)
	}
}

func TestDayMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	w := NewWarehouse(db)

	got, err := w.Day(context.Background(), "venue-1", "2026-06-05")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing day, got %+v", got)
	}
}

func TestWindowRangeAndOrder(t *testing.T) {
	db := openTestDB(t)
	w := NewWarehouse(db)
	ctx := context.Background()

	// Inserted out of order on purpose.
	for _, date := range []string{"2026-06-08", "2026-06-05", "2026-06-07", "2026-06-10"} {
		if err := w.UpsertDay(ctx, forecast.DayRecord{VenueID: "venue-1", Date: date}); err != nil {
			t.Fatalf("UpsertDay(%s): %v", date, err)
		}
	}
	if err := w.UpsertDay(ctx, forecast.DayRecord{VenueID: "venue-2", Date: "2026-06-06"}); err != nil {
		t.Fatalf("UpsertDay(other venue): %v", err)
	}

	win, err := w.Window(ctx, "venue-1", "2026-06-05", "2026-06-08")
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	want := []string{"2026-06-05", "2026-06-07", "2026-06-08"}
	if len(win.Days) != len(want) {
		t.Fatalf("got %d days, want %d", len(win.Days), len(want))
	}
	for i, rec := range win.Days {
		if rec.Date != want[i] {
			t.Errorf("day %d = %s, want %s", i, rec.Date, want[i])
		}
		if rec.VenueID != "venue-1" {
			t.Errorf("day %s belongs to %s", rec.Date, rec.VenueID)
		}
	}
}

func TestUpsertDayReplaces(t *testing.T) {
	db := openTestDB(t)
	w := NewWarehouse(db)
	ctx := context.Background()

	rec := forecast.DayRecord{VenueID: "venue-1", Date: "2026-06-05", Score: forecast.Float(40), Regime: forecast.RegimeB}
	if err := w.UpsertDay(ctx, rec); err != nil {
		t.Fatalf("UpsertDay: %v", err)
	}
	rec.Score = forecast.Float(90)
	rec.Regime = forecast.RegimeA
	if err := w.UpsertDay(ctx, rec); err != nil {
		t.Fatalf("UpsertDay(again): %v", err)
	}

	got, err := w.Day(ctx, "venue-1", "2026-06-05")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if got.Score == nil || *got.Score != 90 || got.Regime != forecast.RegimeA {
		t.Errorf("replace lost: score=%v regime=%q", got.Score, got.Regime)
	}

	win, err := w.Window(ctx, "venue-1", "2026-06-05", "2026-06-05")
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(win.Days) != 1 {
		t.Errorf("upsert duplicated the row: %d days", len(win.Days))
	}
}

func TestLoadFixture(t *testing.T) {
	db := openTestDB(t)
	w := NewWarehouse(db)
	ctx := context.Background()

	fixture := `venue:
  venue_id: venue-1
  location_type: outdoor
  activity_type: food_truck
  audiences: [familles]
days:
  - date: "2026-06-05"
    score: 90
    regime: A
    weather_alert: 0
  - date: "2026-06-06"
    score: 20
    regime: C
    weather_alert: 3
    commercial_events: [Foire de Paris]
`
	path := filepath.Join(t.TempDir(), "fixture.yml")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	fx, err := w.LoadFixture(ctx, path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if fx.Venue.VenueID != "venue-1" || len(fx.Days) != 2 {
		t.Fatalf("fixture parsed oddly: %+v", fx)
	}

	venue, err := w.Venue(ctx, "venue-1")
	if err != nil || venue == nil {
		t.Fatalf("Venue after fixture: %v %v", venue, err)
	}
	win, err := w.Window(ctx, "venue-1", "2026-06-01", "2026-06-30")
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(win.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(win.Days))
	}
	first := win.Days[0]
	if first.Score == nil || *first.Score != 90 || first.Regime != forecast.RegimeA {
		t.Errorf("first day = %+v", first)
	}
	second := win.Days[1]
	if second.WeatherAlert == nil || *second.WeatherAlert != 3 {
		t.Errorf("second day alert = %v, want 3", second.WeatherAlert)
	}
	if len(second.CommercialEvents) != 1 {
		t.Errorf("second day events = %v", second.CommercialEvents)
	}
}

func TestLoadFixtureRejectsMissingVenueID(t *testing.T) {
	db := openTestDB(t)
	w := NewWarehouse(db)

	path := filepath.Join(t.TempDir(), "fixture.yml")
	if err := os.WriteFile(path, []byte("days:\n  - date: \"2026-06-05\"\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := w.LoadFixture(context.Background(), path); err == nil {
		t.Error("expected error for fixture without venue_id")
	}
}

func TestConversationLifecycle(t *testing.T) {
	db := openTestDB(t)
	c := NewConversations(db)
	ctx := context.Background()

	id, err := c.Create(ctx, "venue-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("empty conversation id")
	}

	cc, ok, err := c.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("freshly created conversation not found")
	}
	if cc.Turn != 0 {
		t.Errorf("fresh context turn = %d, want 0", cc.Turn)
	}

	cc.Version = intent.ContextVersion
	cc.Turn = 3
	cc.Last = &intent.LastTurn{
		Horizon:   intent.HorizonMonth,
		Intent:    intent.IntentTopDays,
		UsedDates: []string{"2026-06-05", "2026-06-06"},
		TopDates:  []string{"2026-06-05"},
	}
	if err := c.Save(ctx, id, cc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := c.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load(after save): %v", err)
	}
	if !ok {
		t.Fatal("saved conversation not found")
	}
	if got.Turn != 3 || got.Last == nil {
		t.Fatalf("context lost on round trip: %+v", got)
	}
	if got.Last.Intent != intent.IntentTopDays || len(got.Last.UsedDates) != 2 {
		t.Errorf("last turn = %+v", got.Last)
	}

	venueID, err := c.VenueFor(ctx, id)
	if err != nil {
		t.Fatalf("VenueFor: %v", err)
	}
	if venueID != "venue-1" {
		t.Errorf("venue = %q, want venue-1", venueID)
	}
}

func TestConversationUnknownID(t *testing.T) {
	db := openTestDB(t)
	c := NewConversations(db)
	ctx := context.Background()

	cc, ok, err := c.Load(ctx, "nope")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("unknown id reported as found")
	}
	if cc.Version != intent.ContextVersion {
		t.Errorf("zero context version = %d", cc.Version)
	}

	if err := c.Save(ctx, "nope", intent.NewContext()); err == nil {
		t.Error("Save on unknown id should fail")
	}
	if _, err := c.VenueFor(ctx, "nope"); err == nil {
		t.Error("VenueFor on unknown id should fail")
	}
}
