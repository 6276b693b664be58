// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/deck-pdf/internal/assemble"
	"github.com/pdiddy/deck-pdf/internal/container"
	"github.com/pdiddy/deck-pdf/internal/deck"
	"github.com/pdiddy/deck-pdf/internal/history"
	"github.com/pdiddy/deck-pdf/internal/render"
	"github.com/pdiddy/deck-pdf/internal/secrets"
	"github.com/pdiddy/deck-pdf/internal/source"
	"github.com/pdiddy/deck-pdf/pkg/types"
)

const fetchTimeout = 30 * time.Second

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render all slides into one PDF",
	Long: `Export waits for the chart library, assembles every numbered slide fragment
in order into a print document, waits for fonts and chart animations, and
writes the PDF.

Fragments are read from the slides directory, or fetched over HTTP when a base
URL is configured. Rendering uses a local Chromium, a running browser given by
--remote-url, or a headless-shell container with --container.

The print document is staged next to the slides directory and opened over
file://, so a browser given by --remote-url must run on this host (loopback
address) and see the deck at the same path.`,
	RunE: runExport,
}

// exportFlags maps export flags to config keys.
var exportFlags = map[string]string{
	"slides-dir":   "deck.slides_dir",
	"base-url":     "deck.base_url",
	"total":        "deck.total_slides",
	"chart-url":    "deck.chart_library_url",
	"output":       "pdf.filename",
	"output-dir":   "pdf.output_dir",
	"mode":         "pdf.mode",
	"browser":      "render.browser_path",
	"remote-url":   "render.remote_url",
	"container":    "render.use_container",
	"no-sandbox":   "render.no_sandbox",
	"settle-delay": "render.settle_delay",
	"timeout":      "render.timeout",
}

func init() {
	d := types.DefaultConfig()
	f := exportCmd.Flags()
	f.String("slides-dir", d.Deck.SlidesDir, "directory holding slide_<n>.html fragments")
	f.String("base-url", "", "fetch fragments from this http(s) base URL instead of slides-dir")
	f.Int("total", d.Deck.TotalSlides, "number of slides to export")
	f.String("chart-url", d.Deck.ChartLibraryURL, "chart library script URL (empty disables charts)")
	f.StringP("output", "o", d.PDF.Filename, "PDF file name")
	f.String("output-dir", d.PDF.OutputDir, "directory the PDF is written to")
	f.String("mode", string(d.PDF.Mode), "export mode: raster or vector")
	f.String("browser", "", "path to the Chromium binary")
	f.String("remote-url", "", "DevTools URL of a running browser on this host")
	f.Bool("container", false, "render in a headless-shell container (docker or podman)")
	f.Bool("no-sandbox", false, "disable the Chromium sandbox")
	f.Duration("settle-delay", d.Render.SettleDelay, "wait after fonts load before capture")
	f.Duration("timeout", d.Render.Timeout, "overall export timeout")
	f.String("token", "", "bearer token for a remote base URL (default: secret "+secrets.KeySlidesToken+")")
	f.Bool("no-history", false, "do not record this run in the history database")

	for flag, key := range exportFlags {
		viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	token, _ := cmd.Flags().GetString("token")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Render.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Render.Timeout)
		defer cancel()
	}

	status := cmd.OutOrStdout()
	run := types.Run{StartedAt: time.Now(), Mode: cfg.PDF.Mode, Status: types.RunSucceeded}

	result, err := exportDeck(ctx, cfg, loadedSecrets.Get(secrets.KeySlidesToken, token), status)
	run.FinishedAt = time.Now()
	if result != nil {
		run.Slides = len(result.Slides)
		run.ChartsReady = result.ChartsReady
		run.Output = result.Output
		run.Bytes = result.Bytes
	}
	if err != nil {
		run.Status = types.RunFailed
		run.Error = err.Error()
	}
	if !noHistory {
		recordRun(cfg.History, run)
	}

	if err != nil {
		fmt.Fprintf(status, "Error: %v\n", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "PDF Generation Failed: %v\n", err)
		return errReported
	}
	return nil
}

// exportDeck wires the source, the browser, and the pipeline for one run.
func exportDeck(ctx context.Context, cfg types.Config, token string, status io.Writer) (*deck.Result, error) {
	baseHref, err := assemble.BaseHref(cfg.Deck)
	if err != nil {
		return nil, err
	}
	src := source.New(cfg.Deck, &http.Client{Timeout: fetchTimeout}, token, logger)

	root, err := deckRoot(cfg.Deck)
	if err != nil {
		return nil, err
	}
	opts := render.Options{
		BrowserPath:  cfg.Render.BrowserPath,
		RemoteURL:    cfg.Render.RemoteURL,
		Headless:     cfg.Render.Headless,
		NoSandbox:    cfg.Render.NoSandbox,
		Timeout:      cfg.Render.Timeout,
		WindowWidth:  cfg.PDF.WindowWidth,
		WindowHeight: cfg.PDF.PageHeightPx,
		StageDir:     root,
		Title:        cfg.Deck.Title,
		Logger:       logger,
	}

	if cfg.Render.UseContainer && opts.RemoteURL == "" {
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		sess, err := container.StartSession(ctx, rt, container.SessionOptions{
			Image: cfg.Render.ContainerImage,
			// The staged document and the slide assets resolve under the
			// same path inside the container.
			Mounts: []container.Mount{{Source: root, ReadOnly: true}},
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		defer sess.Close()
		opts.RemoteURL = sess.URL
	}

	browser, err := render.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer browser.Close()

	p := &deck.Pipeline{
		Config: cfg,
		Source: src,
		Page:   browser,
		Shell:  assemble.NewShell(cfg, baseHref),
		Status: status,
		Logger: logger,
	}
	return p.Run(ctx)
}

// deckRoot is the directory containing the slides directory. Relative asset
// paths in the fragments resolve against it.
func deckRoot(cfg types.DeckConfig) (string, error) {
	abs, err := filepath.Abs(cfg.SlidesDir)
	if err != nil {
		return "", fmt.Errorf("resolving slides directory: %w", err)
	}
	return filepath.Dir(abs), nil
}

// recordRun stores run in the history database. Failures are logged only.
func recordRun(cfg types.HistoryConfig, run types.Run) {
	if cfg.DBPath == "" {
		return
	}
	store, err := history.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("opening history", zap.Error(err))
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := store.Record(ctx, run)
	if err != nil {
		logger.Warn("recording run", zap.Error(err))
		return
	}
	logger.Debug("recorded run", zap.String("id", id), zap.String("status", string(run.Status)))
}
