package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ziadkadry99/venue-scout/internal/dates"
	"github.com/ziadkadry99/venue-scout/internal/textnorm"
)

// Resolver classifies questions. It is stateless and safe for concurrent
// use; all per-turn state travels in the Request.
type Resolver struct {
	kw   Keywords
	topK int
}

// NewResolver creates a resolver over the given keyword configuration.
// defaultTopK is the shortlist size used when the question does not ask
// for a count; values outside 1..MaxTopK fall back to DefaultTopK.
func NewResolver(kw Keywords, defaultTopK int) *Resolver {
	if defaultTopK < 1 || defaultTopK > MaxTopK {
		defaultTopK = DefaultTopK
	}
	return &Resolver{kw: kw, topK: defaultTopK}
}

// resolveState is the normalized view of one request the rules run over.
type resolveState struct {
	norm  string
	dates []string
	ctx   Context
	topK  int
}

// rule is one classification step. Rules run in order; the first non-nil
// resolution wins. A rule may instead return an error to force
// clarification.
type rule struct {
	name  string
	apply func(*Resolver, *resolveState) (*Resolution, error)
}

// rules is the fixed priority order of the classifier. Explicit dates
// beat lookups, lookups beat anaphora, anaphora beats month-level
// keyword families, and top_days is the catch-all.
var rules = []rule{
	{"multi-date", (*Resolver).ruleMultiDate},
	{"single-date", (*Resolver).ruleSingleDate},
	{"event-lookup", (*Resolver).ruleEventLookup},
	{"anaphora-best", (*Resolver).ruleAnaphoraBest},
	{"anaphora-next-day", (*Resolver).ruleAnaphoraNextDay},
	{"keyword-families", (*Resolver).ruleKeywordFamilies},
	{"default-top-days", (*Resolver).ruleDefault},
}

// Resolve turns a question plus hints and prior-turn context into a
// (horizon, intent) resolution. A detected-but-unparseable date token is
// an error, never a silent fallback.
func (r *Resolver) Resolve(req Request) (*Resolution, error) {
	if req.ExtractionFailed {
		return nil, fmt.Errorf("%w: a token in %q looks like a date but could not be read", ErrNeedClarification, req.Question)
	}

	st := &resolveState{
		norm: textnorm.Canon(req.Question),
		ctx:  req.Context,
	}
	if len(req.HintDates) > 0 {
		st.dates = append(st.dates, req.HintDates...)
	} else {
		st.dates = append(st.dates, req.ExtractedDates...)
	}
	st.topK = extractTopK(st.norm, r.topK)

	for _, rl := range rules {
		res, err := rl.apply(r, st)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	// rules ends with a catch-all; reaching here is a bug.
	return nil, fmt.Errorf("no classification rule matched %q", req.Question)
}

func (r *Resolver) ruleMultiDate(st *resolveState) (*Resolution, error) {
	if len(st.dates) < 2 {
		return nil, nil
	}
	return &Resolution{
		Horizon: HorizonSelectedDays,
		Intent:  IntentCompareDates,
		Dates:   st.dates,
		TopK:    st.topK,
	}, nil
}

func (r *Resolver) ruleSingleDate(st *resolveState) (*Resolution, error) {
	if len(st.dates) != 1 {
		return nil, nil
	}
	res := &Resolution{
		Horizon: HorizonDay,
		Intent:  IntentDayWhy,
		Dates:   st.dates,
		TopK:    st.topK,
	}
	if dim := r.matchDimension(st.norm); dim != "" && !containsAny(st.norm, r.kw.Why) {
		res.Intent = IntentDayDimensionDetail
		res.Dimension = dim
	}
	return res, nil
}

func (r *Resolver) ruleEventLookup(st *resolveState) (*Resolution, error) {
	opener := firstMatch(st.norm, r.kw.Lookup)
	if opener == "" {
		return nil, nil
	}
	// Superlative wording keeps the question in scoring territory even
	// when it opens like a lookup ("quelle date est la meilleure ?").
	if containsAny(st.norm, r.kw.Best) || containsAny(st.norm, r.kw.Worst) {
		return nil, nil
	}
	return &Resolution{
		Horizon:    HorizonLookupEvent,
		Intent:     IntentEventLookup,
		TopK:       st.topK,
		LookupTerm: lookupTerm(st.norm, opener),
	}, nil
}

func (r *Resolver) ruleAnaphoraBest(st *resolveState) (*Resolution, error) {
	if len(st.dates) > 0 || !containsAny(st.norm, r.kw.FirstBest) {
		return nil, nil
	}
	last := st.ctx.Last
	if last == nil || len(last.TopDates) == 0 {
		// Without a previous shortlist the phrasing is just a
		// superlative; let the keyword families classify it.
		return nil, nil
	}
	return &Resolution{
		Horizon: HorizonDay,
		Intent:  IntentDayWhy,
		Dates:   []string{last.TopDates[0]},
		TopK:    st.topK,
	}, nil
}

func (r *Resolver) ruleAnaphoraNextDay(st *resolveState) (*Resolution, error) {
	if len(st.dates) > 0 || !containsAny(st.norm, r.kw.NextDay) {
		return nil, nil
	}
	anchor := ""
	if last := st.ctx.Last; last != nil {
		anchor = last.SelectedDate
		if anchor == "" && len(last.UsedDates) > 0 {
			anchor = last.UsedDates[0]
		}
	}
	if anchor == "" {
		return nil, fmt.Errorf("%w: %q needs a previous date to count from", ErrNeedClarification, st.norm)
	}
	next, err := dates.AddDays(anchor, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: stored date %q is unusable", ErrNeedClarification, anchor)
	}
	return &Resolution{
		Horizon: HorizonDay,
		Intent:  IntentDayWhy,
		Dates:   []string{next},
		TopK:    st.topK,
	}, nil
}

// monthFamilies is the observed priority among month-level keyword
// families. More constrained shapes come before the broad superlative.
var monthFamilies = []struct {
	intent Intent
	pick   func(Keywords) []string
}{
	{IntentWorstDays, func(k Keywords) []string { return k.Worst }},
	{IntentFilterDays, func(k Keywords) []string { return k.Filter }},
	{IntentCombinedTradeoff, func(k Keywords) []string { return k.Tradeoff }},
	{IntentPatterns, func(k Keywords) []string { return k.Patterns }},
	{IntentPrimaryDriver, func(k Keywords) []string { return k.Driver }},
	{IntentTopDays, func(k Keywords) []string { return k.Best }},
}

func (r *Resolver) ruleKeywordFamilies(st *resolveState) (*Resolution, error) {
	for _, fam := range monthFamilies {
		if containsAny(st.norm, fam.pick(r.kw)) {
			return &Resolution{Horizon: HorizonMonth, Intent: fam.intent, TopK: st.topK}, nil
		}
	}
	return nil, nil
}

func (r *Resolver) ruleDefault(st *resolveState) (*Resolution, error) {
	return &Resolution{Horizon: HorizonMonth, Intent: IntentTopDays, TopK: st.topK}, nil
}

func (r *Resolver) matchDimension(norm string) string {
	// Stable probe order so ties resolve the same way every time.
	for _, dim := range []string{"weather", "competition", "calendar"} {
		if containsAny(norm, r.kw.Dimension[dim]) {
			return dim
		}
	}
	return ""
}

var reTopK = regexp.MustCompile(`\b(\d{1,2})\s+(?:meilleur|meilleurs|meilleures|pire|pires|jour|jours|date|dates)\b`)

// extractTopK reads a requested shortlist size ("les 2 meilleurs jours")
// out of the normalized question, clamped to the engine-wide cap. def is
// the configured shortlist size used when the question names none.
func extractTopK(norm string, def int) int {
	m := reTopK.FindStringSubmatch(norm)
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return def
	}
	if n > MaxTopK {
		return MaxTopK
	}
	return n
}

// lookupTerm strips the lookup opener and trailing punctuation to keep a
// searchable remainder ("quand a lieu le salon du vin" -> "salon du vin").
func lookupTerm(norm, opener string) string {
	term := norm
	if i := strings.Index(norm, opener); i >= 0 {
		term = norm[i+len(opener):]
	}
	term = strings.Trim(term, " ?!.")
	for _, article := range []string{"le ", "la ", "les ", "l'", "du ", "de la ", "des "} {
		if strings.HasPrefix(term, article) {
			term = term[len(article):]
			break
		}
	}
	return strings.TrimSpace(term)
}

func containsAny(norm string, phrases []string) bool {
	return firstMatch(norm, phrases) != ""
}

func firstMatch(norm string, phrases []string) string {
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(norm, textnorm.Canon(p)) {
			return textnorm.Canon(p)
		}
	}
	return ""
}
