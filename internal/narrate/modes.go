// Package narrate is the contract layer between the engine and the
// hosted language model. Each output mode owns its frozen instruction
// template, its payload allow-list and its validator, collected in one
// dispatch table. Validation is binary: a reply is accepted verbatim or
// discarded entirely; nothing is repaired, trimmed or partially kept.
package narrate

import (
	"fmt"
	"strings"
)

// Mode names one narration shape.
type Mode string

const (
	ModeWindowSummary Mode = "window_summary"
	ModeSpecialDays   Mode = "special_days"
	ModeCompareTwo    Mode = "compare_two"
	ModeDayWhy        Mode = "day_why"
)

// Payload is the allow-listed data sent to the model.
type Payload map[string]any

// Reply is a parsed, not-yet-validated model response.
type Reply map[string]any

// modeSpec bundles everything one mode owns.
type modeSpec struct {
	instruction string
	allow       []string
	validate    func(p Payload, r Reply) []string
}

var modeSpecs = map[Mode]modeSpec{
	ModeWindowSummary: {
		instruction: windowSummaryInstruction,
		allow:       []string{"dates", "top_k", "mode", "days", "tie", "excluded_count"},
		validate:    validateWindowSummary,
	},
	ModeSpecialDays: {
		instruction: specialDaysInstruction,
		allow:       []string{"dates", "days", "special_day_count"},
		validate:    validateSpecialDays,
	},
	ModeCompareTwo: {
		instruction: compareTwoInstruction,
		allow:       []string{"dates", "days", "tie"},
		validate:    validateCompareTwo,
	},
	ModeDayWhy: {
		instruction: dayWhyInstruction,
		allow:       []string{"dates", "days"},
		validate:    validateDayWhy,
	},
}

// BuildPayload drops every field not on the mode's allow-list. Unknown
// modes are an error, not a permissive default.
func BuildPayload(mode Mode, full map[string]any) (Payload, error) {
	spec, ok := modeSpecs[mode]
	if !ok {
		return nil, fmt.Errorf("unknown narration mode %q", mode)
	}
	p := make(Payload, len(spec.allow))
	for _, key := range spec.allow {
		if v, present := full[key]; present {
			p[key] = v
		}
	}
	return p, nil
}

// ValidationError carries the reasons a reply was discarded. It is for
// internal diagnostics only and never reaches user-facing output.
type ValidationError struct {
	Mode       Mode
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mode %s: reply rejected: %s", e.Mode, strings.Join(e.Violations, "; "))
}

// --- per-mode validators ---
//
// Validators return the full list of violations rather than stopping at
// the first, so diagnostics show everything wrong with a reply.

func validateWindowSummary(p Payload, r Reply) []string {
	v := closedKeys(r, "headline", "body", "cited_dates")
	v = append(v, checkString(r, "headline", true, 120)...)
	v = append(v, checkString(r, "body", true, 600)...)

	cited, errs := stringArray(r, "cited_dates", true)
	v = append(v, errs...)
	if cited != nil {
		expected := expectedCitations(p)
		if expected > 0 && len(cited) != expected {
			v = append(v, fmt.Sprintf("cited_dates has %d entries, question asked for %d", len(cited), expected))
		}
		v = append(v, citedSubset(p, cited)...)
	}
	return v
}

func validateSpecialDays(p Payload, r Reply) []string {
	v := closedKeys(r, "summary", "special_days")
	v = append(v, checkString(r, "summary", true, 400)...)

	raw, present := r["special_days"]
	if !present {
		return append(v, "missing key special_days")
	}
	entries, ok := raw.([]any)
	if !ok {
		return append(v, "special_days is not an array")
	}

	count := intField(p, "special_day_count")
	if count == 0 && len(entries) > 0 {
		v = append(v, fmt.Sprintf("special_days has %d entries but the row reports zero special days", len(entries)))
	}
	if len(entries) > count {
		v = append(v, fmt.Sprintf("special_days has %d entries, row reports only %d", len(entries), count))
	}

	for i, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			v = append(v, fmt.Sprintf("special_days[%d] is not an object", i))
			continue
		}
		v = append(v, closedKeysAt(entry, fmt.Sprintf("special_days[%d]", i), "date", "reason")...)
		date, _ := entry["date"].(string)
		if date == "" {
			v = append(v, fmt.Sprintf("special_days[%d] missing date", i))
		} else {
			v = append(v, citedSubset(p, []string{date})...)
		}
		if reason, _ := entry["reason"].(string); reason == "" {
			v = append(v, fmt.Sprintf("special_days[%d] missing reason", i))
		}
	}
	return v
}

func validateCompareTwo(p Payload, r Reply) []string {
	v := closedKeys(r, "verdict", "cited_dates")
	v = append(v, checkString(r, "verdict", true, 300)...)

	cited, errs := stringArray(r, "cited_dates", true)
	v = append(v, errs...)
	if cited != nil {
		if len(cited) != 2 {
			v = append(v, fmt.Sprintf("cited_dates has %d entries, a comparison cites exactly 2", len(cited)))
		}
		v = append(v, citedSubset(p, cited)...)
	}
	return v
}

func validateDayWhy(p Payload, r Reply) []string {
	v := closedKeys(r, "headline", "reasons")
	v = append(v, checkString(r, "headline", true, 120)...)

	reasons, errs := stringArray(r, "reasons", true)
	v = append(v, errs...)
	if reasons != nil && (len(reasons) < 1 || len(reasons) > 4) {
		v = append(v, fmt.Sprintf("reasons has %d entries, want 1 to 4", len(reasons)))
	}
	return v
}

// --- validation helpers ---

func closedKeys(r Reply, permitted ...string) []string {
	return closedKeysAt(map[string]any(r), "reply", permitted...)
}

func closedKeysAt(obj map[string]any, where string, permitted ...string) []string {
	allowed := make(map[string]bool, len(permitted))
	for _, k := range permitted {
		allowed[k] = true
	}
	var v []string
	for k := range obj {
		if !allowed[k] {
			v = append(v, fmt.Sprintf("%s has unexpected key %q", where, k))
		}
	}
	return v
}

func checkString(r Reply, key string, required bool, maxLen int) []string {
	raw, present := r[key]
	if !present {
		if required {
			return []string{"missing key " + key}
		}
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return []string{key + " is not a string"}
	}
	if s == "" {
		return []string{key + " is empty"}
	}
	if len([]rune(s)) > maxLen {
		return []string{fmt.Sprintf("%s exceeds %d characters", key, maxLen)}
	}
	return nil
}

func stringArray(r Reply, key string, required bool) ([]string, []string) {
	raw, present := r[key]
	if !present {
		if required {
			return nil, []string{"missing key " + key}
		}
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, []string{key + " is not an array"}
	}
	out := make([]string, 0, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, []string{fmt.Sprintf("%s[%d] is not a string", key, i)}
		}
		out = append(out, s)
	}
	return out, nil
}

// citedSubset checks that every cited date exists in the payload's date
// list; the model may not cite days it was never shown.
func citedSubset(p Payload, cited []string) []string {
	known := make(map[string]bool)
	if dates, ok := p["dates"].([]string); ok {
		for _, d := range dates {
			known[d] = true
		}
	}
	if dates, ok := p["dates"].([]any); ok {
		for _, d := range dates {
			if s, ok := d.(string); ok {
				known[s] = true
			}
		}
	}
	var v []string
	for _, d := range cited {
		if !known[d] {
			v = append(v, fmt.Sprintf("cited date %s is not in the payload", d))
		}
	}
	return v
}

func expectedCitations(p Payload) int {
	topK := intField(p, "top_k")
	var total int
	switch dates := p["dates"].(type) {
	case []string:
		total = len(dates)
	case []any:
		total = len(dates)
	}
	if topK == 0 || total == 0 {
		return 0
	}
	if topK < total {
		return topK
	}
	return total
}

func intField(p Payload, key string) int {
	switch n := p[key].(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
