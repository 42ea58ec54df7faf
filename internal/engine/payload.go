package engine

import (
	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/intent"
	"github.com/ziadkadry99/venue-scout/internal/ranking"
	"github.com/ziadkadry99/venue-scout/internal/signal"
)

// windowPayload builds the full narration input for list answers. The
// narration layer filters it down per mode; keys here may safely exceed
// any single mode's allow-list.
func windowPayload(res *intent.Resolution, rk ranking.Result, venue *forecast.VenueContext) map[string]any {
	ds := make([]string, 0, len(rk.Days))
	days := make([]map[string]any, 0, len(rk.Days))
	special := 0
	for _, rec := range rk.Days {
		sigs := signal.All(rec, venue)
		ds = append(ds, rec.Date)
		days = append(days, dayPayload(rec, sigs))
		cal := sigs[signal.DimCalendar]
		if cal.Applicable && cal.Impact != signal.ImpactNeutral {
			special++
		}
	}
	return map[string]any{
		"dates":             ds,
		"top_k":             res.TopK,
		"mode":              string(res.Intent),
		"days":              days,
		"tie":               rk.Tie,
		"excluded_count":    len(rk.ExcludedDates),
		"special_day_count": special,
	}
}

// dayPayload flattens one day and its computed signals into the shape
// the narration prompts describe. Absent fields are omitted, not
// zeroed, so the model never sees an invented value.
func dayPayload(rec forecast.DayRecord, sigs map[signal.Dimension]signal.Signal) map[string]any {
	day := map[string]any{"date": rec.Date}
	if rec.Score != nil {
		day["score"] = *rec.Score
	}
	if rec.Regime != forecast.RegimeUnknown {
		day["regime"] = string(rec.Regime)
	}
	for _, dim := range signal.Dimensions {
		sig, ok := sigs[dim]
		if !ok {
			continue
		}
		day[string(dim)] = map[string]any{
			"applicable":  sig.Applicable,
			"impact":      string(sig.Impact),
			"explanation": sig.Explanation,
		}
	}
	return day
}
