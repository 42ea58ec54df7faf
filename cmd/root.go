package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/venue-scout/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "venue-scout",
	Short: "Fact-grounded event-opportunity answers for a venue",
	Long: `Venue Scout answers natural-language questions about the best days to
run a venue: which days of a month look strongest, why a given day
scores the way it does, and how two dates compare. Every sentence in an
answer is backed by a fact from the forecast warehouse; the optional
LLM narration is validated against those facts and falls back to a
deterministic rendering when it cannot be trusted.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
