package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/venue-scout/internal/dates"
	"github.com/ziadkadry99/venue-scout/internal/facts"
	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/intent"
	"github.com/ziadkadry99/venue-scout/internal/narrate"
	"github.com/ziadkadry99/venue-scout/internal/ranking"
	"github.com/ziadkadry99/venue-scout/internal/signal"
	"github.com/ziadkadry99/venue-scout/internal/textnorm"
)

// Engine answers questions over a forecast window.
type Engine struct {
	resolver  *intent.Resolver
	narrator  *narrate.Narrator
	templates facts.TemplateTable
	log       *zap.Logger
}

// Options configures an Engine. Zero values are usable: no narrator
// means every answer takes the deterministic path.
type Options struct {
	Keywords *intent.Keywords
	Narrator *narrate.Narrator
	// TopK is the configured shortlist size for questions that do not
	// ask for a count; zero keeps intent.DefaultTopK.
	TopK      int
	Templates facts.TemplateTable
	Logger    *zap.Logger
}

func New(opts Options) *Engine {
	kw := intent.DefaultKeywords()
	if opts.Keywords != nil {
		kw = *opts.Keywords
	}
	tpl := opts.Templates
	if tpl == nil {
		tpl = facts.FrenchTemplates
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		resolver:  intent.NewResolver(kw, opts.TopK),
		narrator:  opts.Narrator,
		templates: tpl,
		log:       log,
	}
}

// draft accumulates one answer before rendering.
type draft struct {
	ledger    *facts.Ledger
	items     []facts.LineItem
	usedDates []string
	topDates  []string
	tie       bool
	selected  string
	kind      QueryKind
	// mode empty means deterministic only for this intent.
	mode    narrate.Mode
	payload map[string]any
}

// Answer runs one turn. A clarification need surfaces as
// intent.ErrNeedClarification wrapped with the reason; the caller turns
// that into a question back to the user rather than an answer.
func (e *Engine) Answer(ctx context.Context, q Query) (*Response, error) {
	anchor := q.Anchor
	if anchor.IsZero() {
		anchor = time.Now().UTC()
	}

	ext := dates.Extract(q.Question, anchor)
	res, err := e.resolver.Resolve(intent.Request{
		Question:         q.Question,
		ExtractedDates:   ext.Dates,
		ExtractionFailed: ext.UnparsedDateToken,
		HintDates:        q.HintDates,
		Context:          q.Context,
	})
	if err != nil {
		return nil, err
	}

	byDate := q.Window.ByDate()

	var d *draft
	switch res.Intent {
	case intent.IntentCompareDates:
		d = e.compare(res, byDate, q.Venue)
	case intent.IntentDayWhy, intent.IntentDayDimensionDetail:
		d = e.dayDetail(res, byDate, q.Venue)
	case intent.IntentEventLookup:
		d = e.lookup(res, q.Window)
	default:
		d = e.monthList(res, q.Window, q.Venue)
	}

	if err := e.verifyGrounding(d.ledger, byDate); err != nil {
		return nil, fmt.Errorf("assembling answer: %w", err)
	}
	lines, err := facts.Render(d.items, d.ledger, e.templates)
	if err != nil {
		return nil, fmt.Errorf("rendering answer: %w", err)
	}

	resp := &Response{
		Decision: DecisionPayload{
			Kind:      d.kind,
			Horizon:   res.Horizon,
			Intent:    res.Intent,
			UsedDates: capDates(d.usedDates, ranking.MaxShortlist),
			Signals:   e.primarySignals(d.usedDates, byDate, q.Venue),
			TopDates:  d.topDates,
			Tie:       d.tie,
		},
		Lines: lines,
		Context: intent.Context{
			Version: intent.ContextVersion,
			Turn:    q.Context.Turn + 1,
			Last: &intent.LastTurn{
				Horizon:      res.Horizon,
				Intent:       res.Intent,
				UsedDates:    capDates(d.usedDates, ranking.MaxShortlist),
				TopDates:     d.topDates,
				SelectedDate: d.selected,
			},
		},
	}
	fillText(resp, lines)

	if e.narrator != nil && d.mode != "" {
		reply, nerr := e.narrator.Narrate(ctx, d.mode, d.payload)
		if nerr != nil {
			e.log.Warn("narration discarded, deterministic fallback",
				zap.String("mode", string(d.mode)), zap.Error(nerr))
		} else {
			applyNarration(resp, d.mode, reply)
		}
	}
	return resp, nil
}

// applyNarration folds an already-validated model reply into the
// response. Each mode has its own reply shape; the fact, caveat and
// action lines always stay ledger-backed regardless.
func applyNarration(resp *Response, mode narrate.Mode, reply narrate.Reply) {
	str := func(key string) string { s, _ := reply[key].(string); return s }
	switch mode {
	case narrate.ModeWindowSummary:
		if h := str("headline"); h != "" {
			resp.Headline = h
		}
		if b := str("body"); b != "" {
			resp.Body = b
		}
	case narrate.ModeSpecialDays:
		if s := str("summary"); s != "" {
			resp.Body = s
		}
	case narrate.ModeCompareTwo:
		if v := str("verdict"); v != "" {
			resp.Body = v
		}
	case narrate.ModeDayWhy:
		if h := str("headline"); h != "" {
			resp.Headline = h
		}
		if raw, ok := reply["reasons"].([]any); ok {
			var reasons []string
			for _, r := range raw {
				if s, ok := r.(string); ok && s != "" {
					reasons = append(reasons, s)
				}
			}
			if len(reasons) > 0 {
				resp.Body = strings.Join(reasons, " ")
			}
		}
	}
	resp.Narrated = true
}

// fillText derives the flat text fields from the rendered lines. The
// narrator may later overwrite headline and body; facts, caveats and
// actions always come from the ledger-backed lines.
func fillText(resp *Response, lines []facts.RenderedLine) {
	var body []string
	for _, ln := range lines {
		switch ln.Kind {
		case facts.KindHeadline:
			if resp.Headline == "" {
				resp.Headline = ln.Text
			}
		case facts.KindFact:
			resp.Facts = append(resp.Facts, ln.Text)
		case facts.KindImplication:
			body = append(body, ln.Text)
		case facts.KindCaveat:
			resp.Caveats = append(resp.Caveats, ln.Text)
		case facts.KindAction:
			resp.Actions = append(resp.Actions, ln.Text)
		}
	}
	// No implication lines means the facts already carry the whole
	// answer; repeating them as a body would duplicate the output.
	if len(body) > 0 {
		resp.Body = strings.Join(body, " ")
	}
}

// monthList answers the month-horizon intents. Shortlists, worst days,
// hard filtering, tradeoffs, patterns and dominant drivers share the
// ranked-list skeleton and differ in ordering, filtering and the
// implication lines layered on top.
func (e *Engine) monthList(res *intent.Resolution, w forecast.Window, venue *forecast.VenueContext) *draft {
	mode := ranking.BestFirst
	if res.Intent == intent.IntentWorstDays {
		mode = ranking.WorstFirst
	}
	hardOnly := res.Intent == intent.IntentFilterDays

	rk := ranking.Rank(w.Days, mode, hardOnly, res.TopK)

	d := &draft{ledger: facts.NewLedger(), kind: KindScoring}
	byDate := w.ByDate()

	var headIDs []string
	for _, rec := range rk.Days {
		ids := e.dayFacts(d.ledger, rec, venue)
		d.usedDates = append(d.usedDates, rec.Date)
		headIDs = append(headIDs, ids[0])
		d.items = append(d.items, e.dayItems(d.ledger, rec, ids)...)
	}
	d.topDates = capDates(d.usedDates, ranking.MaxShortlist)
	d.tie = rk.Tie

	if len(headIDs) == 0 {
		txt := "Aucune journée exploitable dans la fenêtre demandée."
		id := e.queryFact(d.ledger, txt)
		d.items = append(d.items, facts.LineItem{
			Kind:         facts.KindHeadline,
			FactIDs:      []string{id},
			TextOverride: txt,
		})
		return d
	}

	headTpl := "headline.top_days"
	if res.Intent == intent.IntentWorstDays {
		headTpl = "headline.worst_days"
	}
	head := facts.LineItem{
		Kind:       facts.KindHeadline,
		TemplateID: headTpl,
		FactIDs:    headIDs,
		Params:     map[string]any{"dates": dates.FormatCompactList(d.usedDates)},
	}
	d.items = append([]facts.LineItem{head}, d.items...)

	if rk.Tie && len(headIDs) >= 2 {
		d.items = append(d.items, facts.LineItem{
			Kind:       facts.KindImplication,
			TemplateID: "implication.tie",
			FactIDs:    headIDs[:2],
		})
	}
	if hardOnly && len(rk.ExcludedDates) > 0 {
		ids, reason := e.exclusionFacts(d.ledger, rk.ExcludedDates, byDate)
		d.items = append(d.items, facts.LineItem{
			Kind:       facts.KindCaveat,
			TemplateID: "caveat.excluded",
			FactIDs:    ids,
			Params: map[string]any{
				"count":  len(rk.ExcludedDates),
				"reason": reason,
			},
		})
	}

	switch res.Intent {
	case intent.IntentPrimaryDriver, intent.IntentCombinedTradeoff, intent.IntentPatterns:
		e.addDriverImplication(d, w, venue)
	}

	d.mode = narrate.ModeWindowSummary
	if res.Intent == intent.IntentPatterns {
		d.mode = narrate.ModeSpecialDays
	}
	d.payload = windowPayload(res, rk, venue)
	return d
}

// dayDetail answers the single-day intents. A date outside the window
// still gets an answer: one unavailability line, nothing invented.
func (e *Engine) dayDetail(res *intent.Resolution, byDate map[string]forecast.DayRecord, venue *forecast.VenueContext) *draft {
	date := res.Dates[0]
	d := &draft{ledger: facts.NewLedger(), kind: KindScoring, selected: date}
	d.usedDates = []string{date}

	rec, ok := byDate[date]
	if !ok {
		f := d.ledger.MustAdd(facts.BuildFact(date, "coverage", "missing",
			fmt.Sprintf("Aucune donnée de prévision pour le %s.", dates.FormatDay(date)),
			[]string{"date"}))
		d.items = append(d.items, facts.LineItem{
			Kind:       facts.KindHeadline,
			TemplateID: "fact.unavailable",
			FactIDs:    []string{f.ID},
			Params:     map[string]any{"date": dates.FormatDay(date)},
		})
		return d
	}

	sigs := signal.All(rec, venue)
	anchorID := e.scoreFactID(d.ledger, rec)

	head := facts.LineItem{
		Kind:       facts.KindHeadline,
		TemplateID: "headline.day",
		Params: map[string]any{
			"date":    dates.FormatDay(date),
			"verdict": dayVerdict(rec),
		},
	}

	dims := signal.Dimensions
	if res.Intent == intent.IntentDayDimensionDetail && res.Dimension != "" {
		dims = []signal.Dimension{signal.Dimension(res.Dimension)}
	}
	incomplete := false
	var sigIDs []string
	for _, dim := range dims {
		sig := sigs[dim]
		if !sig.Applicable {
			incomplete = true
		}
		id := e.signalFactID(d.ledger, rec.Date, sig)
		sigIDs = append(sigIDs, id)
		d.items = append(d.items, facts.LineItem{
			Kind:         facts.KindFact,
			FactIDs:      []string{id},
			TextOverride: sig.Explanation,
		})
	}

	if anchorID != "" {
		head.FactIDs = []string{anchorID}
	} else {
		head.FactIDs = sigIDs[:1]
	}
	d.items = append([]facts.LineItem{head}, d.items...)

	if incomplete {
		d.items = append(d.items, facts.LineItem{
			Kind:       facts.KindCaveat,
			TemplateID: "caveat.incomplete",
			FactIDs:    head.FactIDs,
			Params:     map[string]any{"date": dates.FormatDay(date)},
		})
	}

	if res.Intent == intent.IntentDayWhy {
		d.mode = narrate.ModeDayWhy
		d.payload = map[string]any{
			"dates": []string{date},
			"days":  []map[string]any{dayPayload(rec, sigs)},
		}
	}
	return d
}

// lookup searches the window's commercial events by name. Lookups are
// deterministic only; there is nothing for a narrator to add.
func (e *Engine) lookup(res *intent.Resolution, w forecast.Window) *draft {
	d := &draft{ledger: facts.NewLedger(), kind: KindLookup}
	term := textnorm.Fold(res.LookupTerm)

	var ids []string
	var matchDates []string
	name := res.LookupTerm
	for _, rec := range w.Days {
		if rec.HasCommercialEvent == nil || !*rec.HasCommercialEvent {
			continue
		}
		for _, ev := range rec.CommercialEvents {
			if term != "" && !strings.Contains(textnorm.Fold(ev), term) {
				continue
			}
			name = ev
			f := d.ledger.MustAdd(facts.BuildFact(rec.Date, "calendar", "event",
				fmt.Sprintf("« %s » le %s", ev, dates.FormatDay(rec.Date)),
				[]string{"commercial_events", "has_commercial_event"}))
			ids = append(ids, f.ID)
			matchDates = append(matchDates, rec.Date)
			break
		}
	}

	if len(ids) == 0 {
		txt := fmt.Sprintf("Aucun événement correspondant à « %s » dans la fenêtre.", res.LookupTerm)
		id := e.queryFact(d.ledger, txt)
		d.items = append(d.items, facts.LineItem{
			Kind:         facts.KindHeadline,
			FactIDs:      []string{id},
			TextOverride: txt,
		})
		return d
	}

	d.usedDates = matchDates
	d.items = append(d.items, facts.LineItem{
		Kind:       facts.KindHeadline,
		TemplateID: "headline.lookup",
		FactIDs:    ids,
		Params: map[string]any{
			"event": name,
			"dates": dates.FormatCompactList(matchDates),
		},
	})
	return d
}

// dayFacts records the per-day facts for one ranked record and returns
// their IDs. The first returned ID anchors the day's list line.
func (e *Engine) dayFacts(l *facts.Ledger, rec forecast.DayRecord, venue *forecast.VenueContext) []string {
	var ids []string
	if id := e.scoreFactID(l, rec); id != "" {
		ids = append(ids, id)
	}
	sigs := signal.All(rec, venue)
	for _, dim := range signal.Dimensions {
		sig := sigs[dim]
		if sig.Applicable && sig.Impact != signal.ImpactNeutral {
			ids = append(ids, e.signalFactID(l, rec.Date, sig))
		}
	}
	if len(ids) == 0 {
		// Nothing scored and nothing flagged: the date itself is the fact.
		f := l.MustAdd(facts.BuildFact(rec.Date, "coverage", "present",
			fmt.Sprintf("Journée du %s sans signal particulier.", dates.FormatDay(rec.Date)),
			[]string{"date"}))
		ids = append(ids, f.ID)
	}
	return ids
}

// dayItems renders one ranked day: its score line, then one line per
// flagged signal.
func (e *Engine) dayItems(l *facts.Ledger, rec forecast.DayRecord, ids []string) []facts.LineItem {
	var items []facts.LineItem
	if rec.Score != nil && rec.Regime != forecast.RegimeUnknown {
		items = append(items, facts.LineItem{
			Kind:       facts.KindFact,
			TemplateID: "fact.score",
			FactIDs:    ids[:1],
			Params: map[string]any{
				"date":   dates.FormatDay(rec.Date),
				"score":  fmt.Sprintf("%.0f", *rec.Score),
				"regime": string(rec.Regime),
			},
		})
	} else {
		f, _ := l.Resolve(ids[0])
		items = append(items, facts.LineItem{
			Kind:         facts.KindFact,
			FactIDs:      ids[:1],
			TextOverride: f.Label,
		})
	}
	for _, id := range ids[1:] {
		f, _ := l.Resolve(id)
		items = append(items, facts.LineItem{
			Kind:         facts.KindFact,
			FactIDs:      []string{id},
			TextOverride: f.Label,
		})
	}
	return items
}

// scoreFactID records the score/regime fact for a day, if either field
// is present, and returns its ID ("" otherwise).
func (e *Engine) scoreFactID(l *facts.Ledger, rec forecast.DayRecord) string {
	var parts []string
	var src []string
	if rec.Score != nil {
		parts = append(parts, fmt.Sprintf("score d'opportunité %.0f", *rec.Score))
		src = append(src, "score")
	}
	if rec.Regime != forecast.RegimeUnknown {
		parts = append(parts, fmt.Sprintf("régime %s", rec.Regime))
		src = append(src, "regime")
	}
	if len(src) == 0 {
		return ""
	}
	label := fmt.Sprintf("Le %s : %s.", dates.FormatDay(rec.Date), strings.Join(parts, ", "))
	f := l.MustAdd(facts.BuildFact(rec.Date, "score", "value", label, src))
	return f.ID
}

// signalFactID records a signal's explanation as a fact, deduplicating
// on the canonical ID.
func (e *Engine) signalFactID(l *facts.Ledger, date string, sig signal.Signal) string {
	src := flattenSources(sig)
	if len(src) == 0 {
		// Inapplicable signals state an absence; the record's own date
		// grounds that statement.
		src = []string{"date"}
	}
	f := facts.BuildFact(date, string(sig.Dimension), "summary", sig.Explanation, src)
	if _, ok := l.Resolve(f.ID); !ok {
		l.MustAdd(f)
	}
	return f.ID
}

// queryFact grounds statements that describe the query itself rather
// than any day record, such as empty-result notices.
func (e *Engine) queryFact(l *facts.Ledger, label string) string {
	f := l.MustAdd(facts.BuildFact("none", "query", "scope", label, []string{"question"}))
	return f.ID
}

// exclusionFacts records one fact per hard-excluded date and summarizes
// the dominant reason for the caveat line.
func (e *Engine) exclusionFacts(l *facts.Ledger, excluded []string, byDate map[string]forecast.DayRecord) ([]string, string) {
	var ids []string
	alerts, regimes := 0, 0
	for _, date := range excluded {
		rec := byDate[date]
		var label string
		var src []string
		switch {
		case rec.WeatherAlert != nil && *rec.WeatherAlert >= signal.BlockingAlertLevel:
			label = fmt.Sprintf("Le %s : alerte météo de niveau %d.", dates.FormatDay(date), *rec.WeatherAlert)
			src = []string{"weather_alert"}
			alerts++
		case rec.Regime == forecast.RegimeC:
			label = fmt.Sprintf("Le %s : régime C.", dates.FormatDay(date))
			src = []string{"regime"}
			regimes++
		default:
			label = fmt.Sprintf("Le %s : journée écartée.", dates.FormatDay(date))
			src = []string{"date"}
		}
		f := l.MustAdd(facts.BuildFact(date, "exclusion", "reason", label, src))
		ids = append(ids, f.ID)
	}
	var reasons []string
	if regimes > 0 {
		reasons = append(reasons, "régime C")
	}
	if alerts > 0 {
		reasons = append(reasons, "alerte météo bloquante")
	}
	return ids, strings.Join(reasons, ", ")
}

// addDriverImplication names the dimension that most often turns days
// risky across the whole window.
func (e *Engine) addDriverImplication(d *draft, w forecast.Window, venue *forecast.VenueContext) {
	counts := map[signal.Dimension]int{}
	sample := map[signal.Dimension]forecast.DayRecord{}
	for _, rec := range w.Days {
		for dim, sig := range signal.All(rec, venue) {
			if sig.Applicable && sig.Impact != signal.ImpactNeutral {
				if counts[dim] == 0 {
					sample[dim] = rec
				}
				counts[dim]++
			}
		}
	}
	var top signal.Dimension
	best := 0
	for _, dim := range signal.Dimensions {
		if counts[dim] > best {
			best = counts[dim]
			top = dim
		}
	}
	if best == 0 {
		return
	}
	rec := sample[top]
	sig := signal.All(rec, venue)[top]
	id := e.signalFactID(d.ledger, rec.Date, sig)
	d.items = append(d.items, facts.LineItem{
		Kind:       facts.KindImplication,
		TemplateID: "implication.driver",
		FactIDs:    []string{id},
		Params: map[string]any{
			"driver": fmt.Sprintf("%s (%d jour(s) concerné(s))", dimensionFrench(top), best),
		},
	})
}

func dayVerdict(rec forecast.DayRecord) string {
	if ranking.HardExcluded(rec) {
		return "à éviter"
	}
	var parts []string
	if rec.Score != nil {
		parts = append(parts, fmt.Sprintf("score %.0f", *rec.Score))
	}
	if rec.Regime != forecast.RegimeUnknown {
		parts = append(parts, fmt.Sprintf("régime %s", rec.Regime))
	}
	if len(parts) == 0 {
		return "données partielles"
	}
	return strings.Join(parts, ", ")
}

func dimensionFrench(d signal.Dimension) string {
	switch d {
	case signal.DimWeather:
		return "la météo"
	case signal.DimCompetition:
		return "la concurrence"
	case signal.DimCalendar:
		return "le calendrier"
	}
	return string(d)
}

// primarySignals computes the signal block for the decision payload
// from the first used date that has a record.
func (e *Engine) primarySignals(used []string, byDate map[string]forecast.DayRecord, venue *forecast.VenueContext) map[signal.Dimension]signal.Signal {
	for _, date := range used {
		if rec, ok := byDate[date]; ok {
			return signal.All(rec, venue)
		}
	}
	if len(used) > 0 {
		return signal.All(forecast.DayRecord{Date: used[0]}, venue)
	}
	return nil
}

// verifyGrounding checks every fact against the record of its own date:
// a fact may only cite fields actually present there. Query-level facts
// ground on the question itself.
func (e *Engine) verifyGrounding(l *facts.Ledger, byDate map[string]forecast.DayRecord) error {
	for _, f := range l.Facts() {
		present := map[string]bool{"question": true, "date": true}
		if rec, ok := byDate[f.Date]; ok {
			for _, fld := range presentFields(rec) {
				present[fld] = true
			}
		}
		for _, src := range f.SourceFields {
			if !present[src] {
				return fmt.Errorf("%w: fact %s cites absent field %q", facts.ErrLedgerViolation, f.ID, src)
			}
		}
	}
	return nil
}

func flattenSources(sig signal.Signal) []string {
	seen := map[string]bool{}
	var out []string
	for _, fields := range sig.SourceFields {
		for _, f := range fields {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func presentFields(rec forecast.DayRecord) []string {
	var out []string
	if rec.Score != nil {
		out = append(out, "score")
	}
	if rec.Regime != forecast.RegimeUnknown {
		out = append(out, "regime")
	}
	if rec.WeatherAlert != nil {
		out = append(out, "weather_alert")
	}
	if rec.PrecipProb != nil {
		out = append(out, "precip_prob")
	}
	if rec.WindSpeedKmh != nil {
		out = append(out, "wind_speed_kmh")
	}
	if rec.Events500m != nil {
		out = append(out, "events_500m")
	}
	if rec.Events5km != nil {
		out = append(out, "events_5km")
	}
	if rec.Events10km != nil {
		out = append(out, "events_10km")
	}
	if rec.Events50km != nil {
		out = append(out, "events_50km")
	}
	if rec.IsWeekend != nil {
		out = append(out, "is_weekend")
	}
	if rec.IsPublicHoliday != nil {
		out = append(out, "is_public_holiday")
	}
	if rec.IsSchoolHoliday != nil {
		out = append(out, "is_school_holiday")
	}
	if rec.HasCommercialEvent != nil {
		out = append(out, "has_commercial_event")
	}
	if len(rec.CommercialEvents) > 0 {
		out = append(out, "commercial_events")
	}
	return out
}

func capDates(ds []string, n int) []string {
	if len(ds) <= n {
		return ds
	}
	return ds[:n]
}
