package signal

import (
	"strings"

	"github.com/ziadkadry99/venue-scout/internal/forecast"
)

// Calendar computes the calendar signal for one day. Any raised flag
// (weekend, public holiday, school holiday, commercial event) is a risk:
// the venue competes for the same audiences. The signal is inapplicable
// only when every flag is absent; an explicit false is real knowledge.
func Calendar(rec forecast.DayRecord) Signal {
	s := Signal{
		Dimension: DimCalendar,
		Impact:    ImpactNeutral,
		Facts: map[string]any{
			"is_weekend": nil, "is_public_holiday": nil,
			"is_school_holiday": nil, "has_commercial_event": nil,
		},
		SourceFields: map[string][]string{},
	}

	flags := []struct {
		key   string
		value *bool
		label string
	}{
		{"is_weekend", rec.IsWeekend, "week-end"},
		{"is_public_holiday", rec.IsPublicHoliday, "jour férié"},
		{"is_school_holiday", rec.IsSchoolHoliday, "vacances scolaires"},
		{"has_commercial_event", rec.HasCommercialEvent, "événement commercial"},
	}

	present := false
	var raised []string
	for _, f := range flags {
		if f.value == nil {
			continue
		}
		present = true
		s.Facts[f.key] = *f.value
		s.SourceFields[f.key] = []string{f.key}
		if *f.value {
			raised = append(raised, f.label)
			s.PrimaryDrivers = append(s.PrimaryDrivers, f.key)
		}
	}
	if !present {
		s.Explanation = "Données calendaires indisponibles pour cette date."
		return s
	}
	s.Applicable = true

	if len(raised) > 0 {
		s.Impact = ImpactRisk
	}

	// Commercial event names are only cited when the flag says one
	// exists; names without the flag would be an invented claim.
	if rec.HasCommercialEvent != nil && *rec.HasCommercialEvent && len(rec.CommercialEvents) > 0 {
		s.Facts["commercial_events"] = rec.CommercialEvents
		s.SourceFields["commercial_events"] = []string{"commercial_events", "has_commercial_event"}
	}

	s.Explanation = calendarExplanation(raised, rec)
	return s
}

func calendarExplanation(raised []string, rec forecast.DayRecord) string {
	if len(raised) == 0 {
		return "Calendrier : jour ordinaire, sans particularité connue."
	}
	text := "Calendrier : " + strings.Join(raised, ", ") + "."
	if rec.HasCommercialEvent != nil && *rec.HasCommercialEvent && len(rec.CommercialEvents) > 0 {
		text += " Notamment : " + strings.Join(rec.CommercialEvents, ", ") + "."
	}
	return text
}

// All evaluates every dimension for one day, in the fixed order.
func All(rec forecast.DayRecord, venue *forecast.VenueContext) map[Dimension]Signal {
	return map[Dimension]Signal{
		DimWeather:     Weather(rec, venue),
		DimCompetition: Competition(rec),
		DimCalendar:    Calendar(rec),
	}
}
