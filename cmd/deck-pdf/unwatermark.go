// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/deck-pdf/internal/watermark"
)

var unwatermarkCmd = &cobra.Command{
	Use:   "unwatermark",
	Short: "Remove corner brand watermarks from slide fragments",
	Long: `Unwatermark removes absolutely positioned corner boxes and footers that
contain the brand text from every slide fragment. Headings and display text
that mention the brand are kept. Only modified files are rewritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("slides-dir")
		if dir == "" {
			dir = cfg.Deck.SlidesDir
		}
		brand, _ := cmd.Flags().GetString("brand")

		changed, err := watermark.Dir(dir, watermark.GlobFromPattern(cfg.Deck.FilePattern), brand, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		logger.Debug("watermarks removed", zap.String("dir", dir), zap.Int("files", len(changed)))
		return nil
	},
}

func init() {
	unwatermarkCmd.Flags().String("slides-dir", "", "directory holding the fragments (default: the configured slides directory)")
	unwatermarkCmd.Flags().String("brand", watermark.DefaultBrand, "watermark text to look for")

	rootCmd.AddCommand(unwatermarkCmd)
}
