package narrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ziadkadry99/venue-scout/internal/llm"
)

type mockProvider struct {
	content string
	err     error
	lastReq llm.CompletionRequest
	calls   int
}

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.content}, nil
}

func (m *mockProvider) Name() string { return "mock" }

func windowPayload() map[string]any {
	return map[string]any{
		"dates":    []string{"2026-06-02", "2026-06-05"},
		"top_k":    2,
		"mode":     "best_first",
		"days":     []map[string]any{{"date": "2026-06-02"}, {"date": "2026-06-05"}},
		"secret":   "must never leave the process",
		"internal": 42,
	}
}

func TestBuildPayloadAllowList(t *testing.T) {
	p, err := BuildPayload(ModeWindowSummary, windowPayload())
	if err != nil {
		t.Fatal(err)
	}
	if _, leaked := p["secret"]; leaked {
		t.Error("field outside the allow-list leaked into payload")
	}
	if _, leaked := p["internal"]; leaked {
		t.Error("field outside the allow-list leaked into payload")
	}
	if _, ok := p["dates"]; !ok {
		t.Error("allow-listed field missing from payload")
	}
}

func TestBuildPayloadUnknownMode(t *testing.T) {
	if _, err := BuildPayload(Mode("poetry"), windowPayload()); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStrictObject(t *testing.T) {
	if _, err := ParseStrictObject(`{"a": 1}`); err != nil {
		t.Errorf("valid object rejected: %v", err)
	}
	for name, raw := range map[string]string{
		"trailing text": `{"a":1} merci !`,
		"second object": `{"a":1}{"b":2}`,
		"array":         `[{"a":1}]`,
		"bare string":   `"bonjour"`,
		"broken":        `{"a":`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseStrictObject(raw); err == nil {
				t.Errorf("accepted %q", raw)
			}
		})
	}
}

func TestNarrateAcceptsValidReply(t *testing.T) {
	mock := &mockProvider{content: `{"headline":"Deux belles dates en juin","body":"Le 2 et le 5 juin sortent du lot.","cited_dates":["2026-06-02","2026-06-05"]}`}
	n := New(mock, "test-model")

	reply, err := n.Narrate(context.Background(), ModeWindowSummary, windowPayload())
	if err != nil {
		t.Fatal(err)
	}
	if reply["headline"] == "" {
		t.Error("reply lost its headline")
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retries)", mock.calls)
	}
	if mock.lastReq.Temperature != 0 {
		t.Errorf("temperature = %v, want pinned 0", mock.lastReq.Temperature)
	}
	if !mock.lastReq.JSONMode {
		t.Error("JSONMode must be required")
	}
	if strings.Contains(mock.lastReq.Prompt, "must never leave the process") {
		t.Error("non-allow-listed data reached the prompt")
	}
}

func TestNarrateRejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			"extra key",
			`{"headline":"ok","body":"ok","cited_dates":["2026-06-02","2026-06-05"],"mood":"upbeat"}`,
		},
		{
			"wrong citation count",
			`{"headline":"ok","body":"ok","cited_dates":["2026-06-02"]}`,
		},
		{
			"date not shown to the model",
			`{"headline":"ok","body":"ok","cited_dates":["2026-06-02","2026-07-14"]}`,
		},
		{
			"missing body",
			`{"headline":"ok","cited_dates":["2026-06-02","2026-06-05"]}`,
		},
		{
			"body wrong type",
			`{"headline":"ok","body":7,"cited_dates":["2026-06-02","2026-06-05"]}`,
		},
		{
			"prose around the object",
			"Voici la réponse : {\"headline\":\"ok\",\"body\":\"ok\",\"cited_dates\":[\"2026-06-02\",\"2026-06-05\"]}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockProvider{content: tt.content}
			n := New(mock, "test-model")
			if _, err := n.Narrate(context.Background(), ModeWindowSummary, windowPayload()); err == nil {
				t.Error("out-of-contract reply was accepted")
			}
			if mock.calls != 1 {
				t.Errorf("calls = %d, want exactly 1", mock.calls)
			}
		})
	}
}

func TestNarrateProviderErrorIsSingleAttempt(t *testing.T) {
	mock := &mockProvider{err: errors.New("upstream 500")}
	n := New(mock, "test-model")
	if _, err := n.Narrate(context.Background(), ModeWindowSummary, windowPayload()); err == nil {
		t.Fatal("expected error")
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retries)", mock.calls)
	}
}

func TestValidateSpecialDaysCrossCheck(t *testing.T) {
	payload := Payload{
		"dates":             []string{"2026-06-02", "2026-06-05"},
		"special_day_count": 0,
	}
	reply := Reply{
		"summary":      "Un jour férié à signaler.",
		"special_days": []any{map[string]any{"date": "2026-06-05", "reason": "férié"}},
	}
	violations := validateSpecialDays(payload, reply)
	if len(violations) == 0 {
		t.Fatal("populated special_days against a zero count must be rejected")
	}

	// With a matching count the same reply passes.
	payload["special_day_count"] = 1
	if violations := validateSpecialDays(payload, reply); len(violations) != 0 {
		t.Errorf("unexpected violations: %v", violations)
	}
}

func TestValidateCompareTwoExactlyTwoDates(t *testing.T) {
	payload := Payload{"dates": []string{"2026-06-02", "2026-06-05"}}
	reply := Reply{"verdict": "Le 2 juin est préférable.", "cited_dates": []any{"2026-06-02"}}
	if v := validateCompareTwo(payload, reply); len(v) == 0 {
		t.Error("single citation must be rejected")
	}
	reply["cited_dates"] = []any{"2026-06-02", "2026-06-05"}
	if v := validateCompareTwo(payload, reply); len(v) != 0 {
		t.Errorf("unexpected violations: %v", v)
	}
}

func TestValidateDayWhyReasonsCardinality(t *testing.T) {
	reply := Reply{"headline": "Bon jour", "reasons": []any{}}
	if v := validateDayWhy(Payload{}, reply); len(v) == 0 {
		t.Error("empty reasons must be rejected")
	}
	reply["reasons"] = []any{"a", "b", "c", "d", "e"}
	if v := validateDayWhy(Payload{}, reply); len(v) == 0 {
		t.Error("five reasons must be rejected")
	}
	reply["reasons"] = []any{"score élevé", "pas de concurrence"}
	if v := validateDayWhy(Payload{}, reply); len(v) != 0 {
		t.Errorf("unexpected violations: %v", v)
	}
}
