// Package intent classifies a venue operator's free-text question into a
// (horizon, intent) pair and resolves conversational follow-ups against
// the previous turn. Classification is an ordered list of rules over
// normalized text; the keyword families behind the rules are data and can
// be extended from configuration.
package intent

import "errors"

// Horizon is the time-scope of a query.
type Horizon string

const (
	HorizonDay          Horizon = "day"
	HorizonMonth        Horizon = "month"
	HorizonSelectedDays Horizon = "selected_days"
	HorizonLookupEvent  Horizon = "lookup_event"
)

// Intent is the question shape within a horizon.
type Intent string

const (
	IntentTopDays            Intent = "top_days"
	IntentWorstDays          Intent = "worst_days"
	IntentPatterns           Intent = "patterns"
	IntentFilterDays         Intent = "filter_days"
	IntentCombinedTradeoff   Intent = "combined_tradeoff"
	IntentPrimaryDriver      Intent = "primary_driver"
	IntentDayWhy             Intent = "day_why"
	IntentDayDimensionDetail Intent = "day_dimension_detail"
	IntentCompareDates       Intent = "compare_dates"
	IntentEventLookup        Intent = "event_lookup"
)

// ContextVersion is the current ConversationContext schema version.
const ContextVersion = 1

// LastTurn records what the previous engine turn resolved and used, for
// anaphora ("le meilleur", "le lendemain").
type LastTurn struct {
	Horizon      Horizon  `json:"horizon"`
	Intent       Intent   `json:"intent"`
	UsedDates    []string `json:"used_dates,omitempty"`
	TopDates     []string `json:"top_dates,omitempty"`
	SelectedDate string   `json:"selected_date,omitempty"`
}

// Context is the caller-owned conversation state. The engine reads it,
// returns an updated copy, and holds nothing between calls. Callers
// persist it opaquely; Version lets new fields appear without breaking
// older blobs.
type Context struct {
	Version int       `json:"version"`
	Turn    int       `json:"turn"`
	Last    *LastTurn `json:"last,omitempty"`
}

// NewContext returns the empty first-turn context.
func NewContext() Context {
	return Context{Version: ContextVersion}
}

// ErrNeedClarification is returned when a date-like token was detected
// in the question but could not be resolved. The caller must ask the
// user to restate the date instead of the engine guessing a horizon.
var ErrNeedClarification = errors.New("date mention not understood, clarification needed")

// MaxTopK caps how many days any single answer may use.
const MaxTopK = 7

// DefaultTopK is the shortlist size when the question does not ask for a
// specific count.
const DefaultTopK = 3

// Request carries everything resolution depends on. Resolution is a pure
// function of this struct: no hidden state, same input, same result.
type Request struct {
	// Question is the raw user text.
	Question string
	// ExtractedDates are the ISO dates found in the question text.
	ExtractedDates []string
	// ExtractionFailed mirrors the extractor's unparsed-token report.
	ExtractionFailed bool
	// HintDates are explicit structured dates supplied by the caller;
	// they take precedence over extracted ones.
	HintDates []string
	// Context is the previous turn's conversation state.
	Context Context
}

// Resolution is the resolved query shape.
type Resolution struct {
	Horizon Horizon
	Intent  Intent
	// Dates are the explicit dates the question is about (empty for
	// month-level questions).
	Dates []string
	// TopK is the requested shortlist size for list intents.
	TopK int
	// Dimension is set for day_dimension_detail.
	Dimension string
	// LookupTerm is set for event_lookup.
	LookupTerm string
}
