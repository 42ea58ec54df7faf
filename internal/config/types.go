package config

// QualityTier trades answer latency and cost against model quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level venue-scout configuration, corresponding to
// .venue-scout.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	Quality  QualityTier  `yaml:"quality" koanf:"quality"`
	// Locale selects the renderer's template table. Only "fr" ships
	// built in; other locales need a template file.
	Locale string       `yaml:"locale" koanf:"locale"`
	Engine EngineConfig `yaml:"engine" koanf:"engine"`
	NLU    NLUConfig    `yaml:"nlu" koanf:"nlu"`
	Server ServerConfig `yaml:"server" koanf:"server"`
}

// EngineConfig tunes the answer engine.
type EngineConfig struct {
	// TopK is the default shortlist size when the question does not
	// ask for a specific count.
	TopK int `yaml:"top_k" koanf:"top_k"`
	// LLMTimeoutSeconds bounds the single narration attempt.
	LLMTimeoutSeconds int `yaml:"llm_timeout_seconds" koanf:"llm_timeout_seconds"`
	// MaxTokens caps the narration reply length.
	MaxTokens int `yaml:"max_tokens" koanf:"max_tokens"`
	// RateLimitRPM throttles narration calls; zero disables throttling.
	RateLimitRPM int `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	// NarrationDisabled forces the deterministic renderer everywhere.
	NarrationDisabled bool `yaml:"narration_disabled" koanf:"narration_disabled"`
}

// NLUConfig carries the tunable classifier data. Keyword families are
// heuristics, not a grammar; deployments extend them here rather than
// patching code.
type NLUConfig struct {
	// KeywordOverrides appends phrases to a keyword family, keyed by
	// family name (best, worst, filter, patterns, tradeoff, driver,
	// lookup, why, weather, competition, calendar, first_best, next_day).
	KeywordOverrides map[string][]string `yaml:"keyword_overrides" koanf:"keyword_overrides"`
}

// ServerConfig holds the serving-layer settings.
type ServerConfig struct {
	Port int `yaml:"port" koanf:"port"`
	// DataDir holds the sqlite warehouse file and conversation state.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
}
