package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider wraps a Provider with a token bucket, for server
// deployments where many conversations share one upstream account. It
// waits rather than erroring, so a saturated bucket shows up as latency
// and, past the caller's deadline, as the usual fallback path.
type RateLimitedProvider struct {
	provider Provider
	rpm      int

	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimitedProvider allows at most rpm requests per minute through
// to the wrapped provider.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string { return r.provider.Name() }

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

func (r *RateLimitedProvider) acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

// refill adds tokens proportionally to elapsed time. Callers hold mu.
func (r *RateLimitedProvider) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastFill)
	added := int(elapsed.Minutes() * float64(r.rpm))
	if added > 0 {
		r.tokens += added
		if r.tokens > r.rpm {
			r.tokens = r.rpm
		}
		r.lastFill = now
	}
}
