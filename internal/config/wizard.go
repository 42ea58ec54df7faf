package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/venue-scout/internal/intent"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .venue-scout.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to venue-scout! Let's configure your assistant.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider for narration",
		Items: []string{"anthropic", "openai", "google", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   — fast & cheap (haiku / gpt-4o-mini)",
			"normal — balanced (sonnet / gpt-4o)",
			"max    — highest quality (opus / gpt-4)",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]

	// 3. Default shortlist size.
	topKPrompt := promptui.Prompt{
		Label:   fmt.Sprintf("Default shortlist size (1-%d)", intent.MaxTopK),
		Default: "3",
		Validate: func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < 1 || n > intent.MaxTopK {
				return fmt.Errorf("enter a number between 1 and %d", intent.MaxTopK)
			}
			return nil
		},
	}
	topKStr, err := topKPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("shortlist size: %w", err)
	}
	topK, _ := strconv.Atoi(strings.TrimSpace(topKStr))

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: "8765",
		Validate: func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a valid TCP port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	port, _ := strconv.Atoi(strings.TrimSpace(portStr))

	// Build the config.
	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = GetPreset(provider, quality)
	cfg.Quality = quality
	cfg.Engine.TopK = topK
	cfg.Server.Port = port

	// Check for API key.
	if envVar := APIKeyEnvVar(provider); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running venue-scout ask.\n", envVar)
		}
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
