package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

func newStatsCmd(cfg *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print item counts from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("database %s does not exist", cfg.DBPath)
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			items, err := store.ListItems(cmd.Context(), database)
			if err != nil {
				return err
			}

			m := matching.ComputeMetrics(items)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			}
			printMetrics(cmd.OutOrStdout(), m)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printMetrics(w io.Writer, m model.Metrics) {
	fmt.Fprintf(w, "Total:     %d\n", m.Total)
	fmt.Fprintf(w, "Lost:      %d\n", m.LostCount)
	fmt.Fprintf(w, "Found:     %d\n", m.FoundCount)
	fmt.Fprintf(w, "Matched:   %d\n", m.MatchedCount)
	fmt.Fprintf(w, "Unclaimed: %d\n", m.UnclaimedCount)
}
