package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/venue-scout/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [fixture.yml]",
	Short: "Import a venue and its forecast days from a YAML file",
	Long: `Loads a YAML file describing one venue and its day records into the
local database. Existing rows for the same venue and dates are
replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		fx, err := store.NewWarehouse(db).LoadFixture(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported venue %q with %d day(s).\n", fx.Venue.VenueID, len(fx.Days))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
