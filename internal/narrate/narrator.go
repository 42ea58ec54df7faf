package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/venue-scout/internal/llm"
)

// DefaultTimeout bounds the single model attempt per query.
const DefaultTimeout = 30 * time.Second

// Narrator runs the full contract pipeline: allow-list the payload,
// make exactly one model call, strip fence markup, require one strict
// JSON object, validate against the mode's contract. Any failure, from
// timeout to a single out-of-contract key, yields an error and the caller
// falls back to the deterministic renderer. No retries, ever.
type Narrator struct {
	provider  llm.Provider
	model     string
	maxTokens int
	timeout   time.Duration
	log       *zap.Logger
}

// Option tweaks a Narrator.
type Option func(*Narrator)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Narrator) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithMaxTokens overrides the reply budget.
func WithMaxTokens(tokens int) Option {
	return func(n *Narrator) {
		if tokens > 0 {
			n.maxTokens = tokens
		}
	}
}

// WithLogger attaches a diagnostics logger. Rejection reasons are only
// ever logged here, never surfaced to users.
func WithLogger(log *zap.Logger) Option {
	return func(n *Narrator) {
		if log != nil {
			n.log = log
		}
	}
}

// New creates a Narrator over the given provider and model.
func New(provider llm.Provider, model string, opts ...Option) *Narrator {
	n := &Narrator{
		provider:  provider,
		model:     model,
		maxTokens: 1024,
		timeout:   DefaultTimeout,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Narrate produces a validated reply for the mode, or an error meaning
// "use the deterministic fallback". The full map is allow-listed before
// anything leaves the process.
func (n *Narrator) Narrate(ctx context.Context, mode Mode, full map[string]any) (Reply, error) {
	spec, ok := modeSpecs[mode]
	if !ok {
		return nil, fmt.Errorf("unknown narration mode %q", mode)
	}

	payload, err := BuildPayload(mode, full)
	if err != nil {
		return nil, err
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	resp, err := n.provider.Complete(callCtx, llm.CompletionRequest{
		Model:       n.model,
		System:      systemInstruction,
		Prompt:      spec.instruction + "\n\nDonnées :\n" + string(payloadJSON),
		MaxTokens:   n.maxTokens,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		n.log.Warn("narration call failed, falling back",
			zap.String("mode", string(mode)),
			zap.String("provider", n.provider.Name()),
			zap.Error(err))
		return nil, fmt.Errorf("model call: %w", err)
	}

	reply, err := ParseStrictObject(StripFences(resp.Content))
	if err != nil {
		n.log.Warn("narration reply unparseable, falling back",
			zap.String("mode", string(mode)),
			zap.Error(err))
		return nil, err
	}

	if violations := spec.validate(payload, reply); len(violations) > 0 {
		vErr := &ValidationError{Mode: mode, Violations: violations}
		n.log.Warn("narration reply rejected, falling back",
			zap.String("mode", string(mode)),
			zap.Strings("violations", violations))
		return nil, vErr
	}
	return reply, nil
}

// StripFences removes surrounding markdown code-fence markup, which some
// models insist on despite instructions.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return raw
	}
	lines = lines[1:] // drop ```json (or bare ```)
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ParseStrictObject requires raw to be exactly one JSON object, with no
// text before or after. Arrays, scalars and trailing content all fail.
func ParseStrictObject(raw string) (Reply, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("reply is not a JSON object: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("reply has trailing content after the JSON object")
	}
	return Reply(obj), nil
}
