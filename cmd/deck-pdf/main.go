// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deck-pdf CLI.
//
// deck-pdf assembles numbered HTML slide fragments into a single print
// document, renders it in headless Chromium, and writes one PDF.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/deck-pdf/internal/logging"
	"github.com/pdiddy/deck-pdf/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from the secrets directory at startup.
	loadedSecrets secrets.Set

	// logger is the diagnostics logger; progress lines go to stdout.
	logger = zap.NewNop()
)

// errReported marks failures whose message was already shown to the user.
var errReported = errors.New("failure already reported")

// rootCmd is the base command for the deck-pdf CLI.
var rootCmd = &cobra.Command{
	Use:   "deck-pdf",
	Short: "Export an HTML slide deck as a single PDF",
	Long: `deck-pdf turns a directory of numbered HTML slide fragments into one PDF.

Each fragment is fetched in order, its relative asset paths are rewritten,
embedded media is stripped, and chart scripts are re-run so charts render in
the static print document. Headless Chromium then renders the deck page by
page.

The split and unwatermark subcommands prepare fragments from a combined deck
export.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Log.Level = "debug"
		}
		logger = logging.New(cfg.Log, os.Stderr)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deck-pdf.yaml or ~/.config/deck-pdf/deck-pdf.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deck-pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deck-pdf"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("DECK_PDF")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
