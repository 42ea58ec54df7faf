package llm

import (
	"context"
	"testing"
	"time"
)

type countingProvider struct {
	calls int
}

func (c *countingProvider) Complete(_ context.Context, _ CompletionRequest) (*CompletionResponse, error) {
	c.calls++
	return &CompletionResponse{Content: "{}"}, nil
}

func (c *countingProvider) Name() string { return "counting" }

func TestNewProviderUnknownType(t *testing.T) {
	if _, err := NewProvider("nope", "model"); err == nil {
		t.Error("expected error for unknown provider type")
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewProvider("openai", "gpt-4o-mini"); err == nil {
		t.Error("expected error when API key is missing")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test")
	p, err := NewProvider("openai", "gpt-4o-mini")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name = %q", p.Name())
	}
}

func TestNewProviderGoogle(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := NewProvider("google", "gemini-3-flash-preview"); err == nil {
		t.Error("expected error when API key is missing")
	}

	t.Setenv("GOOGLE_API_KEY", "key-test")
	p, err := NewProvider("google", "gemini-3-flash-preview")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "google" {
		t.Errorf("Name = %q", p.Name())
	}
}

func TestRateLimiterPassthroughWhenDisabled(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, 0)
	if p != Provider(inner) {
		t.Error("rpm<=0 should return the provider unchanged")
	}
}

func TestRateLimiterAllowsBurstUpToRPM(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	for i := 0; i < 3; i++ {
		if _, err := p.Complete(ctx, CompletionRequest{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}

	// The bucket is empty; the fourth call must block until the context
	// gives up.
	if _, err := p.Complete(ctx, CompletionRequest{}); err == nil {
		t.Error("expected context deadline error on exhausted bucket")
	}
}
