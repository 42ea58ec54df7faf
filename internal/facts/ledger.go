// Package facts is the traceability substrate of the engine: every
// sentence that leaves the system is a line item citing fact identifiers
// that must resolve in the response's ledger. The assertions here are
// contracts, not warnings; an orphaned citation aborts the response.
package facts

import (
	"errors"
	"fmt"
)

// ErrLedgerViolation marks a traceability contract breach. Responses
// failing it are discarded rather than emitted (fail closed).
var ErrLedgerViolation = errors.New("fact ledger violation")

// Fact is one atomic, source-grounded claim.
type Fact struct {
	// ID is stable and deterministic, shaped F.<dimension>.<field>.<date>.
	ID string `json:"id"`
	// Date is the ISO day the claim is about.
	Date string `json:"date"`
	// Dimension groups the claim (weather, competition, calendar, score...).
	Dimension string `json:"dimension"`
	// Label is the human-readable rendering of the claim.
	Label string `json:"label"`
	// SourceFields are the record fields the label was built from.
	SourceFields []string `json:"source_fields"`
}

// FactID returns the canonical identifier a fact for the given
// coordinates would carry, without building the fact. Useful for ledger
// lookups when only the identifier is needed.
func FactID(date, dimension, field string) string {
	return fmt.Sprintf("F.%s.%s.%s", dimension, field, date)
}

// BuildFact constructs a fact with its canonical identifier. The caller
// guarantees that sourceFields genuinely produced the label.
func BuildFact(date, dimension, field, label string, sourceFields []string) Fact {
	return Fact{
		ID:           FactID(date, dimension, field),
		Date:         date,
		Dimension:    dimension,
		Label:        label,
		SourceFields: sourceFields,
	}
}

// Ledger is the append-only set of valid facts for one response.
type Ledger struct {
	order []string
	byID  map[string]Fact
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]Fact)}
}

// Add appends a fact. Duplicate identifiers and facts without source
// fields are contract violations.
func (l *Ledger) Add(f Fact) error {
	if f.ID == "" {
		return fmt.Errorf("%w: fact with empty id", ErrLedgerViolation)
	}
	if len(f.SourceFields) == 0 {
		return fmt.Errorf("%w: fact %s has no source fields", ErrLedgerViolation, f.ID)
	}
	if _, dup := l.byID[f.ID]; dup {
		return fmt.Errorf("%w: duplicate fact id %s", ErrLedgerViolation, f.ID)
	}
	l.byID[f.ID] = f
	l.order = append(l.order, f.ID)
	return nil
}

// MustAdd is Add for facts built from already-validated signal output;
// it panics on a violation because that is a programming error, not an
// input condition.
func (l *Ledger) MustAdd(f Fact) Fact {
	if err := l.Add(f); err != nil {
		panic(err)
	}
	return f
}

// Resolve looks a fact up by identifier.
func (l *Ledger) Resolve(id string) (Fact, bool) {
	f, ok := l.byID[id]
	return f, ok
}

// Facts returns the facts in insertion order.
func (l *Ledger) Facts() []Fact {
	out := make([]Fact, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

// Len reports how many facts the ledger holds.
func (l *Ledger) Len() int { return len(l.order) }

// Kind classifies a line item's role in the answer.
type Kind string

const (
	KindHeadline    Kind = "headline"
	KindFact        Kind = "fact"
	KindImplication Kind = "implication"
	KindCaveat      Kind = "caveat"
	KindAction      Kind = "action"
)

// LineItem is one planned unit of output prior to rendering. FactIDs
// must be non-empty and every id must resolve in the response ledger.
type LineItem struct {
	Kind       Kind           `json:"kind"`
	TemplateID string         `json:"template_id"`
	FactIDs    []string       `json:"fact_ids"`
	Params     map[string]any `json:"params,omitempty"`
	// TextOverride carries a pre-rendered deterministic sentence; the
	// fact id requirement still applies to it.
	TextOverride string `json:"text_override,omitempty"`
}

// AssertWellFormed verifies every line item cites at least one fact and
// that every cited fact resolves in the ledger. It runs before any text
// reaches a caller, on every code path.
func AssertWellFormed(items []LineItem, ledger *Ledger) error {
	for i, item := range items {
		if len(item.FactIDs) == 0 {
			return fmt.Errorf("%w: line item %d (%s) cites no facts", ErrLedgerViolation, i, item.TemplateID)
		}
		for _, id := range item.FactIDs {
			if _, ok := ledger.Resolve(id); !ok {
				return fmt.Errorf("%w: line item %d cites unknown fact %s", ErrLedgerViolation, i, id)
			}
		}
	}
	return nil
}
