// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-pdf/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split <combined-file>",
	Short: "Split a combined deck export into slide fragments",
	Long: `Split reads a text file in which slides are separated by lines such as
"slide - 3" and writes each slide to slide_<n>.html in the slides directory.
A listener script that applies theme updates posted by a hosting page is
injected into every fragment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out-dir")
		if outDir == "" {
			outDir = cfg.Deck.SlidesDir
		}

		_, err = split.File(args[0], split.Options{OutputDir: outDir, Pattern: cfg.Deck.FilePattern}, cmd.OutOrStdout())
		if errors.Is(err, split.ErrNoSlides) {
			fmt.Fprintln(cmd.OutOrStdout(), "No slides found.")
			return nil
		}
		return err
	},
}

func init() {
	splitCmd.Flags().String("out-dir", "", "directory for the fragments (default: the configured slides directory)")

	rootCmd.AddCommand(splitCmd)
}
