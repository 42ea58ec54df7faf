// Package engine orchestrates one query turn: resolve what is being
// asked, compute signals, rank candidates, assemble the fact ledger and
// line items, then render, either deterministically or through the narration
// contract with deterministic fallback. The engine holds no state
// between calls; everything it knows travels in the Query and comes
// back in the Response.
package engine

import (
	"time"

	"github.com/ziadkadry99/venue-scout/internal/facts"
	"github.com/ziadkadry99/venue-scout/internal/forecast"
	"github.com/ziadkadry99/venue-scout/internal/intent"
	"github.com/ziadkadry99/venue-scout/internal/signal"
)

// QueryKind separates scoring answers from non-temporal lookups.
type QueryKind string

const (
	KindScoring QueryKind = "scoring"
	KindLookup  QueryKind = "lookup"
)

// Query is one engine turn. The window and venue records are fetched by
// the calling layer; the engine never reaches for data itself.
type Query struct {
	Question  string
	HintDates []string
	Context   intent.Context
	Window    forecast.Window
	Venue     *forecast.VenueContext
	// Anchor drives year inference for partial dates; zero means now.
	Anchor time.Time
}

// DecisionPayload is the canonical, replayable record of what was
// decided and why, independent of how the narration was rendered.
type DecisionPayload struct {
	Kind      QueryKind                          `json:"kind"`
	Horizon   intent.Horizon                     `json:"horizon"`
	Intent    intent.Intent                      `json:"intent"`
	UsedDates []string                           `json:"used_dates"`
	Signals   map[signal.Dimension]signal.Signal `json:"signals"`
	TopDates  []string                           `json:"top_dates,omitempty"`
	Tie       bool                               `json:"tie,omitempty"`
}

// Response is one answered turn.
type Response struct {
	Decision DecisionPayload      `json:"decision"`
	Headline string               `json:"headline"`
	Body     string               `json:"body,omitempty"`
	Facts    []string             `json:"facts,omitempty"`
	Caveats  []string             `json:"caveats,omitempty"`
	Actions  []string             `json:"actions,omitempty"`
	Lines    []facts.RenderedLine `json:"lines"`
	// Narrated is true when the model reply passed validation; false
	// means the deterministic renderer produced the text.
	Narrated bool `json:"narrated"`
	// Context is the updated conversation state for the caller to
	// persist.
	Context intent.Context `json:"context"`
}
