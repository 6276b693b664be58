// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default deck-pdf.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")

		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		data, err := yaml.Marshal(types.DefaultConfig())
		if err != nil {
			return fmt.Errorf("encoding default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().String("path", "deck-pdf.yaml", "config file to create")
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	rootCmd.AddCommand(initCmd)
}
