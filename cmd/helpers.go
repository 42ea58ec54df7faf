package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/venue-scout/internal/config"
	"github.com/ziadkadry99/venue-scout/internal/engine"
	"github.com/ziadkadry99/venue-scout/internal/facts"
	"github.com/ziadkadry99/venue-scout/internal/llm"
	"github.com/ziadkadry99/venue-scout/internal/narrate"
	"github.com/ziadkadry99/venue-scout/internal/store"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openDatabase(cfg *config.Config) (*store.DB, error) {
	path := filepath.Join(cfg.Server.DataDir, "venue-scout.db")
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	return db, nil
}

// buildEngine wires the engine from config: keyword overrides always,
// a narrator only when narration is enabled and the provider can be
// constructed.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*engine.Engine, error) {
	tpl, err := facts.TemplatesFor(cfg.Locale)
	if err != nil {
		return nil, err
	}
	kw := cfg.Keywords()
	opts := engine.Options{
		Keywords:  &kw,
		TopK:      cfg.Engine.TopK,
		Templates: tpl,
		Logger:    logger,
	}

	if !cfg.Engine.NarrationDisabled {
		provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
		if err != nil {
			// Missing API key degrades to the deterministic renderer
			// instead of refusing to answer at all.
			fmt.Fprintf(os.Stderr, "Warning: %v; answers will use the deterministic renderer.\n", err)
			return engine.New(opts), nil
		}
		if cfg.Engine.RateLimitRPM > 0 {
			provider = llm.NewRateLimitedProvider(provider, cfg.Engine.RateLimitRPM)
		}
		opts.Narrator = narrate.New(provider, cfg.Model,
			narrate.WithTimeout(time.Duration(cfg.Engine.LLMTimeoutSeconds)*time.Second),
			narrate.WithMaxTokens(cfg.Engine.MaxTokens),
			narrate.WithLogger(logger),
		)
	}

	return engine.New(opts), nil
}
