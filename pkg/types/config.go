// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DeckConfig describes where the slide fragments live and how many there are.
type DeckConfig struct {
	// SlidesDir is the directory holding the numbered fragments (default "slides").
	SlidesDir string `json:"slides_dir" yaml:"slides_dir" mapstructure:"slides_dir"`

	// BaseURL, when set, fetches fragments over HTTP instead of from SlidesDir.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// TotalSlides is the number of fragments, numbered 1..TotalSlides (default 14).
	TotalSlides int `json:"total_slides" yaml:"total_slides" mapstructure:"total_slides"`

	// FilePattern formats a slide index into a file name (default "slide_%d.html").
	FilePattern string `json:"file_pattern" yaml:"file_pattern" mapstructure:"file_pattern"`

	// ChartLibraryURL is loaded into the print document before any slide.
	// Leave empty to export without chart support.
	ChartLibraryURL string `json:"chart_library_url" yaml:"chart_library_url" mapstructure:"chart_library_url"`

	// Title is the document title of the assembled deck.
	Title string `json:"title" yaml:"title" mapstructure:"title"`
}

// RenderConfig holds headless browser settings.
type RenderConfig struct {
	// BrowserPath overrides the Chromium binary. Empty means auto-detect.
	BrowserPath string `json:"browser_path,omitempty" yaml:"browser_path,omitempty" mapstructure:"browser_path"`

	// RemoteURL connects to an already running browser (DevTools endpoint).
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty" mapstructure:"remote_url"`

	Headless  bool `json:"headless" yaml:"headless" mapstructure:"headless"`
	NoSandbox bool `json:"no_sandbox" yaml:"no_sandbox" mapstructure:"no_sandbox"`

	// UseContainer starts ContainerImage with docker or podman and renders there.
	UseContainer   bool   `json:"use_container" yaml:"use_container" mapstructure:"use_container"`
	ContainerImage string `json:"container_image" yaml:"container_image" mapstructure:"container_image"`

	// Timeout bounds the whole browser session.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// ChartPollAttempts and ChartPollInterval bound the wait for the chart
	// library global (default 50 x 100ms).
	ChartPollAttempts int           `json:"chart_poll_attempts" yaml:"chart_poll_attempts" mapstructure:"chart_poll_attempts"`
	ChartPollInterval time.Duration `json:"chart_poll_interval" yaml:"chart_poll_interval" mapstructure:"chart_poll_interval"`

	// SettleDelay lets chart animations finish before capture (default 2.5s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay" mapstructure:"settle_delay"`
}

// ExportMode selects how pages are turned into PDF.
type ExportMode string

const (
	// ModeRaster captures every slide as a JPEG and places one per page.
	ModeRaster ExportMode = "raster"
	// ModeVector uses the browser's native print pipeline.
	ModeVector ExportMode = "vector"
)

// PDFConfig holds the fixed page geometry and quality settings of the export.
type PDFConfig struct {
	Filename  string     `json:"filename" yaml:"filename" mapstructure:"filename"`
	OutputDir string     `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
	Mode      ExportMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// PageWidthPx and PageHeightPx are the page format in CSS pixels.
	PageWidthPx  int `json:"page_width_px" yaml:"page_width_px" mapstructure:"page_width_px"`
	PageHeightPx int `json:"page_height_px" yaml:"page_height_px" mapstructure:"page_height_px"`

	// Margin is a CSS length ("0", "10mm", "0.5in").
	Margin    string `json:"margin" yaml:"margin" mapstructure:"margin"`
	Landscape bool   `json:"landscape" yaml:"landscape" mapstructure:"landscape"`

	// Scale is the capture device scale factor for raster mode.
	Scale float64 `json:"scale" yaml:"scale" mapstructure:"scale"`

	// ImageQuality is the JPEG quality in (0, 1].
	ImageQuality float64 `json:"image_quality" yaml:"image_quality" mapstructure:"image_quality"`

	// WindowWidth is the emulated browser window width in CSS pixels.
	WindowWidth int `json:"window_width" yaml:"window_width" mapstructure:"window_width"`
}

// HistoryConfig locates the export run ledger.
type HistoryConfig struct {
	// DBPath is the SQLite file. Empty disables recording.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// LogConfig controls diagnostic logging. Progress lines are not affected.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings of a deck export.
type Config struct {
	Deck    DeckConfig    `json:"deck" yaml:"deck" mapstructure:"deck"`
	Render  RenderConfig  `json:"render" yaml:"render" mapstructure:"render"`
	PDF     PDFConfig     `json:"pdf" yaml:"pdf" mapstructure:"pdf"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultChartLibraryURL is the Chart.js build the slides are written against.
const DefaultChartLibraryURL = "https://cdn.jsdelivr.net/npm/chart.js"

// DefaultConfig returns the configuration of the pitch-deck export.
func DefaultConfig() Config {
	return Config{
		Deck: DeckConfig{
			SlidesDir:       "slides",
			TotalSlides:     14,
			FilePattern:     "slide_%d.html",
			ChartLibraryURL: DefaultChartLibraryURL,
			Title:           "FactorLab x CoKarma",
		},
		Render: RenderConfig{
			Headless:          true,
			ContainerImage:    "chromedp/headless-shell:latest",
			Timeout:           5 * time.Minute,
			ChartPollAttempts: 50,
			ChartPollInterval: 100 * time.Millisecond,
			SettleDelay:       2500 * time.Millisecond,
		},
		PDF: PDFConfig{
			Filename:     "FactorLab_CoKarma_PitchDeck.pdf",
			OutputDir:    ".",
			Mode:         ModeRaster,
			PageWidthPx:  1280,
			PageHeightPx: 720,
			Margin:       "0",
			Landscape:    true,
			Scale:        1.5,
			ImageQuality: 0.98,
			WindowWidth:  1280,
		},
		History: HistoryConfig{
			DBPath: ".deck-pdf/history.db",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
