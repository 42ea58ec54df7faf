package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/venue-scout/internal/intent"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = ".venue-scout.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (VENUESCOUT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: VENUESCOUT_PROVIDER -> provider, etc.
	if err := k.Load(env.Provider("VENUESCOUT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "VENUESCOUT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic: true,
	ProviderOpenAI:    true,
	ProviderGoogle:    true,
	ProviderOllama:    true,
}

// validQualityTiers is the set of recognized quality tier values.
var validQualityTiers = map[QualityTier]bool{
	QualityLite:   true,
	QualityNormal: true,
	QualityMax:    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of anthropic, openai, google, ollama", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.Quality != "" && !validQualityTiers[c.Quality] {
		return fmt.Errorf("invalid quality %q: must be one of lite, normal, max", c.Quality)
	}

	if c.Locale == "" {
		return fmt.Errorf("locale is required")
	}

	if c.Engine.TopK < 1 || c.Engine.TopK > intent.MaxTopK {
		return fmt.Errorf("engine.top_k must be between 1 and %d", intent.MaxTopK)
	}
	if c.Engine.LLMTimeoutSeconds < 1 {
		return fmt.Errorf("engine.llm_timeout_seconds must be positive")
	}
	if c.Engine.MaxTokens < 1 {
		return fmt.Errorf("engine.max_tokens must be positive")
	}
	if c.Engine.RateLimitRPM < 0 {
		return fmt.Errorf("engine.rate_limit_rpm must be non-negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port")
	}

	return nil
}

// Keywords builds the classifier keyword configuration: the built-in
// French families extended by the YAML overrides.
func (c *Config) Keywords() intent.Keywords {
	return intent.DefaultKeywords().Merge(c.NLU.KeywordOverrides)
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
