package llm

import "context"

// Provider is a hosted language model. Implementations must honor
// context cancellation and must not retry on their own.
type Provider interface {
	// Complete sends one completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the provider's name for diagnostics.
	Name() string
}
