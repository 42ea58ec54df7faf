package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "grok" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"unknown quality", func(c *Config) { c.Quality = "turbo" }},
		{"empty locale", func(c *Config) { c.Locale = "" }},
		{"top_k zero", func(c *Config) { c.Engine.TopK = 0 }},
		{"top_k above cap", func(c *Config) { c.Engine.TopK = 12 }},
		{"timeout zero", func(c *Config) { c.Engine.LLMTimeoutSeconds = 0 }},
		{"max_tokens zero", func(c *Config) { c.Engine.MaxTokens = 0 }},
		{"negative rate limit", func(c *Config) { c.Engine.RateLimitRPM = -1 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := DefaultConfig()
	if cfg.Provider != want.Provider || cfg.Engine.TopK != want.Engine.TopK {
		t.Errorf("missing file must yield defaults, got %+v", cfg)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".venue-scout.yml")
	yaml := `provider: openai
model: gpt-4o
locale: fr
engine:
  top_k: 5
  llm_timeout_seconds: 10
nlu:
  keyword_overrides:
    worst:
      - "jours pourris"
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %s, want openai", cfg.Provider)
	}
	if cfg.Engine.TopK != 5 {
		t.Errorf("engine.top_k = %d, want 5", cfg.Engine.TopK)
	}
	if cfg.Engine.LLMTimeoutSeconds != 10 {
		t.Errorf("engine.llm_timeout_seconds = %d, want 10", cfg.Engine.LLMTimeoutSeconds)
	}
	if cfg.Engine.MaxTokens != DefaultConfig().Engine.MaxTokens {
		t.Errorf("untouched field lost its default: max_tokens = %d", cfg.Engine.MaxTokens)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d, want 9000", cfg.Server.Port)
	}
	if got := cfg.NLU.KeywordOverrides["worst"]; len(got) != 1 || got[0] != "jours pourris" {
		t.Errorf("keyword_overrides[worst] = %v", got)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VENUESCOUT_MODEL", "gpt-4o-mini")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model = %s, want the env override", cfg.Model)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".venue-scout.yml")
	orig := DefaultConfig()
	orig.Provider = ProviderOllama
	orig.Model = "llama3"
	orig.Engine.TopK = 4
	orig.NLU.KeywordOverrides = map[string][]string{"best": {"jours en or"}}

	if err := orig.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Provider != orig.Provider || got.Model != orig.Model || got.Engine.TopK != orig.Engine.TopK {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if kw := got.NLU.KeywordOverrides["best"]; len(kw) != 1 || kw[0] != "jours en or" {
		t.Errorf("keyword overrides lost: %v", kw)
	}
}

func TestKeywordsMergeOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NLU.KeywordOverrides = map[string][]string{
		"worst":   {"jours pourris"},
		"unknown": {"ignored"},
	}
	kw := cfg.Keywords()

	found := false
	for _, p := range kw.Worst {
		if p == "jours pourris" {
			found = true
		}
	}
	if !found {
		t.Error("override phrase missing from the worst family")
	}
	if len(kw.Best) == 0 {
		t.Error("built-in families must survive the merge")
	}
}

func TestValidateAcceptsEveryProvider(t *testing.T) {
	for _, p := range []ProviderType{ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama} {
		cfg := DefaultConfig()
		cfg.Provider = p
		cfg.Model = GetPreset(p, QualityNormal)
		if err := cfg.Validate(); err != nil {
			t.Errorf("provider %s rejected: %v", p, err)
		}
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	cases := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tc := range cases {
		if got := APIKeyEnvVar(tc.provider); got != tc.want {
			t.Errorf("APIKeyEnvVar(%s) = %q, want %q", tc.provider, got, tc.want)
		}
	}
}

func TestGetPresetFallback(t *testing.T) {
	if got := GetPreset(ProviderOpenAI, QualityLite); got != "gpt-4o-mini" {
		t.Errorf("preset = %s, want gpt-4o-mini", got)
	}
	if got := GetPreset(ProviderGoogle, QualityLite); got != "gemini-3-flash-preview" {
		t.Errorf("preset = %s, want gemini-3-flash-preview", got)
	}
	if got := GetPreset("grok", QualityMax); got != qualityPresets[ProviderAnthropic][QualityNormal] {
		t.Errorf("unknown combination must fall back, got %s", got)
	}
}
