// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

// envKeyReplacer maps nested keys to env names: pdf.output_dir becomes
// DECK_PDF_PDF_OUTPUT_DIR.
var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers every config key so env vars and flags can override
// values that no config file mentions.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("deck.slides_dir", d.Deck.SlidesDir)
	v.SetDefault("deck.base_url", d.Deck.BaseURL)
	v.SetDefault("deck.total_slides", d.Deck.TotalSlides)
	v.SetDefault("deck.file_pattern", d.Deck.FilePattern)
	v.SetDefault("deck.chart_library_url", d.Deck.ChartLibraryURL)
	v.SetDefault("deck.title", d.Deck.Title)

	v.SetDefault("render.browser_path", d.Render.BrowserPath)
	v.SetDefault("render.remote_url", d.Render.RemoteURL)
	v.SetDefault("render.headless", d.Render.Headless)
	v.SetDefault("render.no_sandbox", d.Render.NoSandbox)
	v.SetDefault("render.use_container", d.Render.UseContainer)
	v.SetDefault("render.container_image", d.Render.ContainerImage)
	v.SetDefault("render.timeout", d.Render.Timeout)
	v.SetDefault("render.chart_poll_attempts", d.Render.ChartPollAttempts)
	v.SetDefault("render.chart_poll_interval", d.Render.ChartPollInterval)
	v.SetDefault("render.settle_delay", d.Render.SettleDelay)

	v.SetDefault("pdf.filename", d.PDF.Filename)
	v.SetDefault("pdf.output_dir", d.PDF.OutputDir)
	v.SetDefault("pdf.mode", string(d.PDF.Mode))
	v.SetDefault("pdf.page_width_px", d.PDF.PageWidthPx)
	v.SetDefault("pdf.page_height_px", d.PDF.PageHeightPx)
	v.SetDefault("pdf.margin", d.PDF.Margin)
	v.SetDefault("pdf.landscape", d.PDF.Landscape)
	v.SetDefault("pdf.scale", d.PDF.Scale)
	v.SetDefault("pdf.image_quality", d.PDF.ImageQuality)
	v.SetDefault("pdf.window_width", d.PDF.WindowWidth)

	v.SetDefault("history.db_path", d.History.DBPath)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig decodes the merged defaults, config file, env, and bound flags.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
