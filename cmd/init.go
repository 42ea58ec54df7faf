package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/venue-scout/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize venue-scout configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose a provider and quality tier and generates a .venue-scout.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
