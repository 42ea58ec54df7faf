package signal

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/venue-scout/internal/forecast"
)

// Competition computes the competitive-pressure signal for one day.
//
// Scope is local when anything happens within 5 or 10 km, regional when
// only the 50 km radius is busy, none otherwise. Any positive count is a
// risk. The signal is inapplicable only when all counts are absent.
func Competition(rec forecast.DayRecord) Signal {
	s := Signal{
		Dimension: DimCompetition,
		Impact:    ImpactNeutral,
		Facts: map[string]any{
			"events_500m": nil, "events_5km": nil,
			"events_10km": nil, "events_50km": nil,
		},
		SourceFields: map[string][]string{},
	}

	counts := []struct {
		key   string
		value *int
	}{
		{"events_500m", rec.Events500m},
		{"events_5km", rec.Events5km},
		{"events_10km", rec.Events10km},
		{"events_50km", rec.Events50km},
	}

	present := false
	anyPositive := false
	for _, c := range counts {
		if c.value == nil {
			continue
		}
		present = true
		s.Facts[c.key] = *c.value
		s.SourceFields[c.key] = []string{c.key}
		if *c.value > 0 {
			anyPositive = true
		}
	}
	if !present {
		s.Explanation = "Données de concurrence indisponibles pour cette date."
		return s
	}
	s.Applicable = true

	scope := CompetitionScope(rec)
	s.Facts["scope"] = string(scope)
	s.SourceFields["scope"] = []string{"events_5km", "events_10km", "events_50km"}

	if anyPositive {
		s.Impact = ImpactRisk
		for _, c := range counts {
			if c.value != nil && *c.value > 0 {
				s.PrimaryDrivers = append(s.PrimaryDrivers, c.key)
			}
		}
	}

	s.Explanation = competitionExplanation(rec, scope)
	return s
}

// CompetitionScope classifies where the pressure comes from.
func CompetitionScope(rec forecast.DayRecord) Scope {
	near := (rec.Events5km != nil && *rec.Events5km > 0) || (rec.Events10km != nil && *rec.Events10km > 0)
	far := rec.Events50km != nil && *rec.Events50km > 0
	switch {
	case near:
		return ScopeLocal
	case far:
		return ScopeRegional
	default:
		return ScopeNone
	}
}

// LocalCount is the comparator's "local competition" figure: the busier
// of the 5 and 10 km counts. Returns nil when both are absent.
func LocalCount(rec forecast.DayRecord) *int {
	var out *int
	for _, v := range []*int{rec.Events5km, rec.Events10km} {
		if v == nil {
			continue
		}
		if out == nil || *v > *out {
			out = v
		}
	}
	return out
}

func competitionExplanation(rec forecast.DayRecord, scope Scope) string {
	var parts []string
	add := func(v *int, label string) {
		if v != nil && *v > 0 {
			parts = append(parts, fmt.Sprintf("%d événement(s) à moins de %s", *v, label))
		}
	}
	add(rec.Events500m, "500 m")
	add(rec.Events5km, "5 km")
	add(rec.Events10km, "10 km")
	add(rec.Events50km, "50 km")

	if len(parts) == 0 {
		return "Concurrence : aucun événement recensé à proximité."
	}
	text := "Concurrence : " + strings.Join(parts, ", ") + "."
	if scope == ScopeRegional {
		text = strings.TrimSuffix(text, ".") + " (pression régionale uniquement)."
	}
	return text
}
