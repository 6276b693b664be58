// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-pdf/internal/history"
	"github.com/pdiddy/deck-pdf/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent export runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.History.DBPath == "" {
			return fmt.Errorf("history is disabled: history.db_path is empty")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := history.Open(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if asJSON {
			return writeRunsJSON(cmd.OutOrStdout(), runs)
		}
		return writeRunsTable(cmd.OutOrStdout(), runs)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}

func writeRunsJSON(w io.Writer, runs []types.Run) error {
	if runs == nil {
		runs = []types.Run{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

func writeRunsTable(w io.Writer, runs []types.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tMODE\tSLIDES\tCHARTS\tDURATION\tOUTPUT")
	for _, r := range runs {
		output := r.Output
		if r.Status == types.RunFailed {
			output = r.Error
		}
		charts := "no"
		if r.ChartsReady {
			charts = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status, r.Mode, r.Slides, charts,
			r.Duration().Round(100*time.Millisecond), output)
	}
	return tw.Flush()
}
