package signal

import (
	"strings"
	"testing"

	"github.com/ziadkadry99/venue-scout/internal/forecast"
)

func outdoorVenue() *forecast.VenueContext {
	return &forecast.VenueContext{LocationType: "plein air", ActivityType: "guinguette"}
}

func indoorVenue() *forecast.VenueContext {
	return &forecast.VenueContext{LocationType: "salle couverte"}
}

func TestInferExposure(t *testing.T) {
	tests := []struct {
		name  string
		venue *forecast.VenueContext
		want  Exposure
	}{
		{"nil venue", nil, ExposureUnknown},
		{"outdoor marker", outdoorVenue(), ExposureOutdoor},
		{"indoor marker", indoorVenue(), ExposureIndoor},
		{"accented marker", &forecast.VenueContext{LocationType: "Extérieur"}, ExposureOutdoor},
		{"no marker", &forecast.VenueContext{ActivityType: "concerts"}, ExposureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferExposure(tt.venue); got != tt.want {
				t.Errorf("InferExposure = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWeather(t *testing.T) {
	tests := []struct {
		name           string
		rec            forecast.DayRecord
		venue          *forecast.VenueContext
		wantApplicable bool
		wantImpact     Impact
	}{
		{
			name:           "alert three blocks regardless of venue",
			rec:            forecast.DayRecord{WeatherAlert: forecast.Int(3)},
			venue:          indoorVenue(),
			wantApplicable: true,
			wantImpact:     ImpactBlocking,
		},
		{
			name:           "rain is a risk outdoors",
			rec:            forecast.DayRecord{WeatherAlert: forecast.Int(0), PrecipProb: forecast.Float(0.6)},
			venue:          outdoorVenue(),
			wantApplicable: true,
			wantImpact:     ImpactRisk,
		},
		{
			name:           "rain is a risk when exposure unknown",
			rec:            forecast.DayRecord{PrecipProb: forecast.Float(0.3)},
			venue:          nil,
			wantApplicable: true,
			wantImpact:     ImpactRisk,
		},
		{
			name:           "rain is neutral for a confirmed indoor venue",
			rec:            forecast.DayRecord{PrecipProb: forecast.Float(0.6), WindSpeedKmh: forecast.Float(20)},
			venue:          indoorVenue(),
			wantApplicable: true,
			wantImpact:     ImpactNeutral,
		},
		{
			name:           "calm day is neutral",
			rec:            forecast.DayRecord{WeatherAlert: forecast.Int(0), PrecipProb: forecast.Float(0), WindSpeedKmh: forecast.Float(0)},
			venue:          outdoorVenue(),
			wantApplicable: true,
			wantImpact:     ImpactNeutral,
		},
		{
			name:           "all fields absent degrades to inapplicable",
			rec:            forecast.DayRecord{},
			venue:          outdoorVenue(),
			wantApplicable: false,
			wantImpact:     ImpactNeutral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Weather(tt.rec, tt.venue)
			if got.Applicable != tt.wantApplicable {
				t.Errorf("Applicable = %v, want %v", got.Applicable, tt.wantApplicable)
			}
			if got.Impact != tt.wantImpact {
				t.Errorf("Impact = %s, want %s", got.Impact, tt.wantImpact)
			}
			if got.Explanation == "" {
				t.Error("Explanation must never be empty")
			}
		})
	}
}

// The explanation may only mention values present on the record.
func TestWeatherNoFabricatedFields(t *testing.T) {
	got := Weather(forecast.DayRecord{PrecipProb: forecast.Float(0.6)}, nil)

	if got.Facts["alert_level"] != nil {
		t.Errorf("alert_level fact = %v, want nil for absent field", got.Facts["alert_level"])
	}
	if got.Facts["wind_speed_kmh"] != nil {
		t.Errorf("wind fact = %v, want nil for absent field", got.Facts["wind_speed_kmh"])
	}
	if strings.Contains(got.Explanation, "alerte") || strings.Contains(got.Explanation, "vent") {
		t.Errorf("explanation mentions absent fields: %q", got.Explanation)
	}
	if !strings.Contains(got.Explanation, "60%") {
		t.Errorf("explanation should cite the present probability: %q", got.Explanation)
	}
	for key, fields := range got.SourceFields {
		if len(fields) == 0 {
			t.Errorf("fact %s has no source fields", key)
		}
	}
}

func TestCompetition(t *testing.T) {
	tests := []struct {
		name           string
		rec            forecast.DayRecord
		wantApplicable bool
		wantImpact     Impact
		wantScope      Scope
	}{
		{
			name:           "events at five km are local risk",
			rec:            forecast.DayRecord{Events5km: forecast.Int(2), Events50km: forecast.Int(1)},
			wantApplicable: true,
			wantImpact:     ImpactRisk,
			wantScope:      ScopeLocal,
		},
		{
			name:           "events at ten km are local risk",
			rec:            forecast.DayRecord{Events10km: forecast.Int(1)},
			wantApplicable: true,
			wantImpact:     ImpactRisk,
			wantScope:      ScopeLocal,
		},
		{
			name:           "only fifty km is regional",
			rec:            forecast.DayRecord{Events5km: forecast.Int(0), Events10km: forecast.Int(0), Events50km: forecast.Int(4)},
			wantApplicable: true,
			wantImpact:     ImpactRisk,
			wantScope:      ScopeRegional,
		},
		{
			name:           "all zero is none and neutral",
			rec:            forecast.DayRecord{Events500m: forecast.Int(0), Events5km: forecast.Int(0), Events10km: forecast.Int(0), Events50km: forecast.Int(0)},
			wantApplicable: true,
			wantImpact:     ImpactNeutral,
			wantScope:      ScopeNone,
		},
		{
			name:           "all absent degrades to inapplicable",
			rec:            forecast.DayRecord{},
			wantApplicable: false,
			wantImpact:     ImpactNeutral,
			wantScope:      ScopeNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Competition(tt.rec)
			if got.Applicable != tt.wantApplicable {
				t.Errorf("Applicable = %v, want %v", got.Applicable, tt.wantApplicable)
			}
			if got.Impact != tt.wantImpact {
				t.Errorf("Impact = %s, want %s", got.Impact, tt.wantImpact)
			}
			if got.Applicable {
				if scope := got.Facts["scope"]; scope != string(tt.wantScope) {
					t.Errorf("scope = %v, want %s", scope, tt.wantScope)
				}
			}
		})
	}
}

func TestCalendar(t *testing.T) {
	tests := []struct {
		name           string
		rec            forecast.DayRecord
		wantApplicable bool
		wantImpact     Impact
	}{
		{
			name:           "weekend is a risk",
			rec:            forecast.DayRecord{IsWeekend: forecast.Bool(true)},
			wantApplicable: true,
			wantImpact:     ImpactRisk,
		},
		{
			name: "all flags false is applicable and neutral",
			rec: forecast.DayRecord{
				IsWeekend: forecast.Bool(false), IsPublicHoliday: forecast.Bool(false),
				IsSchoolHoliday: forecast.Bool(false), HasCommercialEvent: forecast.Bool(false),
			},
			wantApplicable: true,
			wantImpact:     ImpactNeutral,
		},
		{
			name:           "all flags absent is inapplicable",
			rec:            forecast.DayRecord{},
			wantApplicable: false,
			wantImpact:     ImpactNeutral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calendar(tt.rec)
			if got.Applicable != tt.wantApplicable {
				t.Errorf("Applicable = %v, want %v", got.Applicable, tt.wantApplicable)
			}
			if got.Impact != tt.wantImpact {
				t.Errorf("Impact = %s, want %s", got.Impact, tt.wantImpact)
			}
		})
	}
}

func TestCalendarCommercialEventNames(t *testing.T) {
	rec := forecast.DayRecord{
		HasCommercialEvent: forecast.Bool(true),
		CommercialEvents:   []string{"Salon du vin"},
	}
	got := Calendar(rec)
	if !strings.Contains(got.Explanation, "Salon du vin") {
		t.Errorf("explanation should name the event: %q", got.Explanation)
	}

	// Names without the flag must not be cited.
	rec = forecast.DayRecord{
		HasCommercialEvent: forecast.Bool(false),
		CommercialEvents:   []string{"Salon du vin"},
	}
	got = Calendar(rec)
	if strings.Contains(got.Explanation, "Salon du vin") {
		t.Errorf("explanation cites an event the flag denies: %q", got.Explanation)
	}
	if _, ok := got.Facts["commercial_events"]; ok {
		t.Error("commercial_events fact present despite flag false")
	}
}

func TestLocalCount(t *testing.T) {
	if got := LocalCount(forecast.DayRecord{}); got != nil {
		t.Errorf("LocalCount = %v, want nil", got)
	}
	rec := forecast.DayRecord{Events5km: forecast.Int(1), Events10km: forecast.Int(4)}
	if got := LocalCount(rec); got == nil || *got != 4 {
		t.Errorf("LocalCount = %v, want 4", got)
	}
}
