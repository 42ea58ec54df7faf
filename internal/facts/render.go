package facts

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/ziadkadry99/venue-scout/internal/textnorm"
)

// RenderedLine is one localized output sentence and its citations.
type RenderedLine struct {
	Kind    Kind     `json:"kind"`
	Text    string   `json:"text"`
	FactIDs []string `json:"fact_ids"`
}

// TemplateTable maps template identifiers to locale-specific
// text/template sources. Templates see {{.Params.x}} and {{.Facts}}
// (the resolved facts, in citation order).
type TemplateTable map[string]string

// templateData is what each template executes against.
type templateData struct {
	Params map[string]any
	Facts  []Fact
}

// Render maps line items through the template table. It asserts ledger
// integrity itself, so no caller can skip the check, then renders,
// deduplicates by normalized text (merging citations), and orders
// action-kind lines last. An unknown fact anywhere aborts the whole
// response; a missing template only degrades to the first fact's label.
func Render(items []LineItem, ledger *Ledger, table TemplateTable) ([]RenderedLine, error) {
	if err := AssertWellFormed(items, ledger); err != nil {
		return nil, err
	}

	lines := make([]RenderedLine, 0, len(items))
	seen := make(map[string]int) // canon text -> index in lines

	for _, item := range items {
		resolved := make([]Fact, 0, len(item.FactIDs))
		for _, id := range item.FactIDs {
			f, _ := ledger.Resolve(id) // existence asserted above
			resolved = append(resolved, f)
		}

		text := item.TextOverride
		if text == "" {
			text = renderTemplate(item, resolved, table)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		canon := textnorm.Canon(text)
		if at, dup := seen[canon]; dup {
			lines[at].FactIDs = mergeIDs(lines[at].FactIDs, item.FactIDs)
			continue
		}
		seen[canon] = len(lines)
		lines = append(lines, RenderedLine{Kind: item.Kind, Text: text, FactIDs: append([]string(nil), item.FactIDs...)})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Kind != KindAction && lines[j].Kind == KindAction
	})
	return lines, nil
}

// renderTemplate executes the item's template, falling back to the first
// fact's label when the template is missing or broken.
func renderTemplate(item LineItem, resolved []Fact, table TemplateTable) string {
	src, ok := table[item.TemplateID]
	if !ok {
		return resolved[0].Label
	}
	tmpl, err := template.New(item.TemplateID).Parse(src)
	if err != nil {
		return resolved[0].Label
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, templateData{Params: item.Params, Facts: resolved}); err != nil {
		return resolved[0].Label
	}
	return sb.String()
}

func mergeIDs(existing, incoming []string) []string {
	have := make(map[string]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}
	for _, id := range incoming {
		if !have[id] {
			have[id] = true
			existing = append(existing, id)
		}
	}
	return existing
}

// Verify double-checks a built ledger against the record fields that
// were actually present, enforcing the no-invention rule end to end:
// every fact must claim at least one source field the record carries.
func Verify(ledger *Ledger, presentFields map[string]bool) error {
	for _, f := range ledger.Facts() {
		grounded := false
		for _, sf := range f.SourceFields {
			if presentFields[sf] {
				grounded = true
				break
			}
		}
		if !grounded {
			return fmt.Errorf("%w: fact %s claims only absent source fields %v", ErrLedgerViolation, f.ID, f.SourceFields)
		}
	}
	return nil
}
