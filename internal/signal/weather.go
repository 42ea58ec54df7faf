package signal

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/textnorm"
)

// BlockingAlertLevel is the weather-alert level at or above which a day
// is unconditionally blocking.
const BlockingAlertLevel = 3

var (
	outdoorMarkers = []string{"outdoor", "exterieur", "plein air", "terrasse", "en plein air"}
	indoorMarkers  = []string{"indoor", "interieur", "couvert", "salle", "en salle"}
)

// InferExposure derives the venue's weather exposure from its free-text
// attributes. A nil or silent context is unknown, never defaulted.
func InferExposure(venue *forecast.VenueContext) Exposure {
	if venue == nil {
		return ExposureUnknown
	}
	text := textnorm.Fold(strings.Join([]string{venue.LocationType, venue.ActivityType, venue.Description}, " "))
	for _, m := range outdoorMarkers {
		if strings.Contains(text, m) {
			return ExposureOutdoor
		}
	}
	for _, m := range indoorMarkers {
		if strings.Contains(text, m) {
			return ExposureIndoor
		}
	}
	return ExposureUnknown
}

// Weather computes the weather signal for one day.
//
// Impact rule: alert level >= BlockingAlertLevel is blocking; otherwise
// any non-zero precipitation probability or wind speed is a risk unless
// the venue is confirmed indoor; everything else is neutral. The signal
// is inapplicable only when all three weather fields are absent.
func Weather(rec forecast.DayRecord, venue *forecast.VenueContext) Signal {
	s := Signal{
		Dimension:    DimWeather,
		Impact:       ImpactNeutral,
		Facts:        map[string]any{"alert_level": nil, "precip_prob": nil, "wind_speed_kmh": nil},
		SourceFields: map[string][]string{},
	}

	exposure := InferExposure(venue)

	if rec.WeatherAlert != nil {
		s.Facts["alert_level"] = *rec.WeatherAlert
		s.SourceFields["alert_level"] = []string{"weather_alert"}
	}
	if rec.PrecipProb != nil {
		s.Facts["precip_prob"] = *rec.PrecipProb
		s.SourceFields["precip_prob"] = []string{"precip_prob"}
	}
	if rec.WindSpeedKmh != nil {
		s.Facts["wind_speed_kmh"] = *rec.WindSpeedKmh
		s.SourceFields["wind_speed_kmh"] = []string{"wind_speed_kmh"}
	}

	if rec.WeatherAlert == nil && rec.PrecipProb == nil && rec.WindSpeedKmh == nil {
		s.Explanation = "Données météo indisponibles pour cette date."
		return s
	}
	s.Applicable = true

	wet := rec.PrecipProb != nil && *rec.PrecipProb > 0
	windy := rec.WindSpeedKmh != nil && *rec.WindSpeedKmh > 0

	switch {
	case rec.WeatherAlert != nil && *rec.WeatherAlert >= BlockingAlertLevel:
		s.Impact = ImpactBlocking
		s.PrimaryDrivers = append(s.PrimaryDrivers, "alert_level")
	case (wet || windy) && exposure != ExposureIndoor:
		s.Impact = ImpactRisk
		if wet {
			s.PrimaryDrivers = append(s.PrimaryDrivers, "precip_prob")
		}
		if windy {
			s.PrimaryDrivers = append(s.PrimaryDrivers, "wind_speed_kmh")
		}
	}

	s.Explanation = weatherExplanation(rec, exposure, s.Impact)
	return s
}

// weatherExplanation builds the French explanation from present fields
// only.
func weatherExplanation(rec forecast.DayRecord, exposure Exposure, impact Impact) string {
	var parts []string
	if rec.WeatherAlert != nil {
		parts = append(parts, fmt.Sprintf("alerte météo de niveau %d", *rec.WeatherAlert))
	}
	if rec.PrecipProb != nil {
		parts = append(parts, fmt.Sprintf("probabilité de pluie de %.0f%%", *rec.PrecipProb*100))
	}
	if rec.WindSpeedKmh != nil {
		parts = append(parts, fmt.Sprintf("vent à %.0f km/h", *rec.WindSpeedKmh))
	}

	text := "Météo : " + strings.Join(parts, ", ") + "."
	switch {
	case impact == ImpactBlocking:
		text += " Niveau d'alerte rédhibitoire pour un événement."
	case impact == ImpactRisk && exposure == ExposureOutdoor:
		text += " Risque sensible pour un lieu en plein air."
	case impact == ImpactNeutral && exposure == ExposureIndoor:
		text += " Sans incidence pour un lieu couvert."
	}
	return text
}
