package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/venue-scout/internal/engine"
	"github.com/ziadkadry99/venue-scout/internal/intent"
	"github.com/ziadkadry99/venue-scout/internal/store"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question about a venue's forecast",
	Long: `Answers a single French question against the venue's stored forecast,
for example "Quels sont les meilleurs jours en juin ?" or
"Plutôt le 12/06 ou le 13/06 ?".`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("venue", "", "venue id to answer for (required)")
	askCmd.Flags().String("anchor", "", "pin today's date (YYYY-MM-DD), for replays")
	askCmd.Flags().Int("days", 60, "forecast horizon to load, in days")
	askCmd.Flags().Bool("json", false, "output the full response as JSON")
	askCmd.MarkFlagRequired("venue")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	venueID, _ := cmd.Flags().GetString("venue")
	anchorFlag, _ := cmd.Flags().GetString("anchor")
	horizonDays, _ := cmd.Flags().GetInt("days")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	warehouse := store.NewWarehouse(db)

	venue, err := warehouse.Venue(ctx, venueID)
	if err != nil {
		return err
	}
	if venue == nil {
		return fmt.Errorf("venue %q not found; run `venue-scout import` first", venueID)
	}

	anchor := time.Now().UTC()
	if anchorFlag != "" {
		anchor, err = time.Parse("2006-01-02", anchorFlag)
		if err != nil {
			return fmt.Errorf("anchor must be YYYY-MM-DD: %w", err)
		}
	}

	from := anchor.Format("2006-01-02")
	to := anchor.AddDate(0, 0, horizonDays).Format("2006-01-02")
	win, err := warehouse.Window(ctx, venueID, from, to)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	resp, err := eng.Answer(ctx, engine.Query{
		Question: question,
		Context:  intent.NewContext(),
		Window:   win,
		Venue:    venue,
		Anchor:   anchor,
	})
	if errors.Is(err, intent.ErrNeedClarification) {
		fmt.Println("Je n'ai pas compris la date mentionnée. Pouvez-vous la reformuler ?")
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printAnswer(resp)
	return nil
}

func printAnswer(resp *engine.Response) {
	fmt.Println(resp.Headline)
	if resp.Body != "" {
		fmt.Println()
		fmt.Println(resp.Body)
	}
	if len(resp.Facts) > 0 {
		fmt.Println()
		for _, f := range resp.Facts {
			fmt.Printf("  • %s\n", f)
		}
	}
	for _, c := range resp.Caveats {
		fmt.Printf("  ⚠ %s\n", c)
	}
	for _, a := range resp.Actions {
		fmt.Printf("  → %s\n", a)
	}
}
