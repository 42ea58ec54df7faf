// Package llm wraps the hosted language model behind a single-call
// Provider interface. The narration engine makes exactly one attempt per
// query: timeouts and cancellation come from the caller's context, and
// any failure is just another reason to fall back to the deterministic
// renderer. No retries happen at this layer.
package llm

// CompletionRequest is one narration call. The engine always pins the
// temperature to zero and requires a JSON object reply; the fields exist
// so tests and tooling can relax them.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse is the raw model reply plus accounting.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
