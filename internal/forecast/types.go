// Package forecast defines the day-level opportunity records the engine
// consumes. Records are shaped by the calling layer (the analytics
// warehouse reader) and are read-only to every engine package: absent
// upstream values are encoded as nil pointers, never as zero values.
package forecast

// Regime is the categorical opportunity verdict assigned upstream to a day.
type Regime string

const (
	RegimeA       Regime = "A"
	RegimeB       Regime = "B"
	RegimeC       Regime = "C"
	RegimeUnknown Regime = ""
)

// Rank returns the comparator rank of the regime (lower is better).
func (r Regime) Rank() int {
	switch r {
	case RegimeA:
		return 0
	case RegimeB:
		return 1
	case RegimeC:
		return 2
	default:
		return 9
	}
}

// DayRecord is one calendar day of the opportunity forecast for one venue.
// Date is an ISO calendar day (YYYY-MM-DD) and, together with the venue,
// uniquely identifies the record.
type DayRecord struct {
	VenueID string   `json:"venue_id" yaml:"venue_id"`
	Date    string   `json:"date" yaml:"date"`
	Score   *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Regime  Regime   `json:"regime,omitempty" yaml:"regime,omitempty"`

	// Weather.
	WeatherAlert *int     `json:"weather_alert,omitempty" yaml:"weather_alert,omitempty"`
	PrecipProb   *float64 `json:"precip_prob,omitempty" yaml:"precip_prob,omitempty"`
	WindSpeedKmh *float64 `json:"wind_speed_kmh,omitempty" yaml:"wind_speed_kmh,omitempty"`

	// Nearby-event counts at fixed radii.
	Events500m *int `json:"events_500m,omitempty" yaml:"events_500m,omitempty"`
	Events5km  *int `json:"events_5km,omitempty" yaml:"events_5km,omitempty"`
	Events10km *int `json:"events_10km,omitempty" yaml:"events_10km,omitempty"`
	Events50km *int `json:"events_50km,omitempty" yaml:"events_50km,omitempty"`

	// Calendar flags.
	IsWeekend          *bool    `json:"is_weekend,omitempty" yaml:"is_weekend,omitempty"`
	IsPublicHoliday    *bool    `json:"is_public_holiday,omitempty" yaml:"is_public_holiday,omitempty"`
	IsSchoolHoliday    *bool    `json:"is_school_holiday,omitempty" yaml:"is_school_holiday,omitempty"`
	HasCommercialEvent *bool    `json:"has_commercial_event,omitempty" yaml:"has_commercial_event,omitempty"`
	CommercialEvents   []string `json:"commercial_events,omitempty" yaml:"commercial_events,omitempty"`
}

// VenueContext holds the descriptive attributes of the venue. All fields
// are optional; a missing context degrades signals to "unknown", it never
// invents one.
type VenueContext struct {
	VenueID      string   `json:"venue_id" yaml:"venue_id"`
	LocationType string   `json:"location_type,omitempty" yaml:"location_type,omitempty"` // indoor / outdoor / free text
	ActivityType string   `json:"activity_type,omitempty" yaml:"activity_type,omitempty"`
	Audiences    []string `json:"audiences,omitempty" yaml:"audiences,omitempty"`
	TimeProfile  string   `json:"time_profile,omitempty" yaml:"time_profile,omitempty"`
	Catchment    string   `json:"catchment,omitempty" yaml:"catchment,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Window is a contiguous slice of the forecast for one venue, as fetched
// by the calling layer.
type Window struct {
	VenueID string      `json:"venue_id" yaml:"venue_id"`
	Days    []DayRecord `json:"days" yaml:"days"`
}

// ByDate indexes the window's records by ISO date.
func (w Window) ByDate() map[string]DayRecord {
	m := make(map[string]DayRecord, len(w.Days))
	for _, d := range w.Days {
		m[d.Date] = d
	}
	return m
}

// Float returns a pointer to v. Convenience for building records in
// fixtures and tests.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
