package engine

import (
	"fmt"
	"sort"

	"github.com/ziadkadry99/venue-scout/internal/dates"
	"github.com/ziadkadry99/venue-scout/internal/facts"
	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/intent"
	"github.com/ziadkadry99/venue-scout/internal/narrate"
	"github.com/ziadkadry99/venue-scout/internal/ranking"
	"github.com/ziadkadry99/venue-scout/internal/signal"
)

// compare answers "X ou Y ?" questions. The line sequence is fixed:
// headline naming the winner, the winner's weather and competition
// facts, an optional deciding-factor implication, an optional
// incomplete-data caveat, then one summary line per runner-up. A tie
// adds the equivalence implication.
func (e *Engine) compare(res *intent.Resolution, byDate map[string]forecast.DayRecord, venue *forecast.VenueContext) *draft {
	d := &draft{ledger: facts.NewLedger(), kind: KindScoring}

	seen := make(map[string]bool, len(res.Dates))
	uniq := make([]string, 0, len(res.Dates))
	for _, date := range res.Dates {
		if !seen[date] {
			seen[date] = true
			uniq = append(uniq, date)
		}
	}

	if len(uniq) < 2 {
		txt := "Il faut au moins deux dates valides pour comparer."
		id := e.queryFact(d.ledger, txt)
		d.items = append(d.items, facts.LineItem{
			Kind:       facts.KindHeadline,
			TemplateID: "caveat.no_compare",
			FactIDs:    []string{id},
		})
		return d
	}

	recs := make([]forecast.DayRecord, 0, len(uniq))
	for _, date := range uniq {
		rec, ok := byDate[date]
		if !ok {
			rec = forecast.DayRecord{Date: date}
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return ranking.Compare(recs[i], recs[j], ranking.BestFirst) < 0
	})
	winner := recs[0]
	d.tie = ranking.Equivalent(recs[0], recs[1])

	for _, rec := range recs {
		d.usedDates = append(d.usedDates, rec.Date)
	}
	d.topDates = []string{winner.Date}
	d.selected = winner.Date

	winnerIDs := e.compareDayFacts(d.ledger, winner)
	d.items = append(d.items, facts.LineItem{
		Kind:       facts.KindHeadline,
		TemplateID: "headline.compare",
		FactIDs:    winnerIDs,
		Params: map[string]any{
			"dates":  dates.FormatCompactList(uniq),
			"winner": dates.FormatDay(winner.Date),
		},
	})

	winnerSigs := signal.All(winner, venue)
	incomplete := false
	for _, dim := range []signal.Dimension{signal.DimWeather, signal.DimCompetition} {
		sig := winnerSigs[dim]
		if !sig.Applicable {
			incomplete = true
		}
		id := e.signalFactID(d.ledger, winner.Date, sig)
		d.items = append(d.items, facts.LineItem{
			Kind:         facts.KindFact,
			FactIDs:      []string{id},
			TextOverride: sig.Explanation,
		})
	}

	// Deciding factor: the first dimension flagged on a runner-up but
	// clean on the winner.
	if !d.tie {
		if dim, rec, sig, ok := e.decidingFactor(winner, recs[1:], venue); ok {
			id := e.signalFactID(d.ledger, rec.Date, sig)
			d.items = append(d.items, facts.LineItem{
				Kind:       facts.KindImplication,
				TemplateID: "implication.driver",
				FactIDs:    []string{id},
				Params: map[string]any{
					"driver": fmt.Sprintf("%s le %s", dimensionFrench(dim), dates.FormatDay(rec.Date)),
				},
			})
		}
	}

	for _, rec := range recs {
		if len(presentFields(rec)) == 0 {
			incomplete = true
		}
	}
	if incomplete {
		d.items = append(d.items, facts.LineItem{
			Kind:       facts.KindCaveat,
			TemplateID: "caveat.incomplete",
			FactIDs:    winnerIDs,
			Params:     map[string]any{"date": dates.FormatCompactList(uniq)},
		})
	}

	for _, rec := range recs[1:] {
		ids := e.compareDayFacts(d.ledger, rec)
		d.items = append(d.items, facts.LineItem{
			Kind:         facts.KindFact,
			FactIDs:      ids,
			TextOverride: fmt.Sprintf("Le %s reste une option : %s.", dates.FormatDay(rec.Date), dayVerdict(rec)),
		})
	}

	if d.tie {
		bothIDs := append(append([]string(nil), winnerIDs...), e.compareDayFacts(d.ledger, recs[1])...)
		d.items = append(d.items, facts.LineItem{
			Kind:       facts.KindImplication,
			TemplateID: "implication.tie",
			FactIDs:    bothIDs,
		})
	}

	if len(uniq) == 2 {
		d.mode = narrate.ModeCompareTwo
		days := make([]map[string]any, 0, 2)
		for _, rec := range recs {
			days = append(days, dayPayload(rec, signal.All(rec, venue)))
		}
		d.payload = map[string]any{
			"dates": d.usedDates,
			"days":  days,
			"tie":   d.tie,
		}
	}
	return d
}

// compareDayFacts anchors one compared day: its score fact when scored,
// otherwise a coverage fact. Idempotent per date.
func (e *Engine) compareDayFacts(l *facts.Ledger, rec forecast.DayRecord) []string {
	if rec.Score != nil || rec.Regime != forecast.RegimeUnknown {
		id := facts.FactID(rec.Date, "score", "value")
		if _, ok := l.Resolve(id); ok {
			return []string{id}
		}
		return []string{e.scoreFactID(l, rec)}
	}
	id := facts.FactID(rec.Date, "coverage", "missing")
	if _, ok := l.Resolve(id); !ok {
		label := fmt.Sprintf("Aucune donnée de prévision pour le %s.", dates.FormatDay(rec.Date))
		l.MustAdd(facts.BuildFact(rec.Date, "coverage", "missing", label, []string{"date"}))
	}
	return []string{id}
}

// decidingFactor finds a dimension flagged on a runner-up while clean
// on the winner.
func (e *Engine) decidingFactor(winner forecast.DayRecord, others []forecast.DayRecord, venue *forecast.VenueContext) (signal.Dimension, forecast.DayRecord, signal.Signal, bool) {
	winnerSigs := signal.All(winner, venue)
	for _, rec := range others {
		sigs := signal.All(rec, venue)
		for _, dim := range signal.Dimensions {
			w, o := winnerSigs[dim], sigs[dim]
			if o.Applicable && o.Impact != signal.ImpactNeutral &&
				(!w.Applicable || w.Impact == signal.ImpactNeutral) {
				return dim, rec, o, true
			}
		}
	}
	return "", forecast.DayRecord{}, signal.Signal{}, false
}
