// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck runs the export pipeline: wait for the chart library, assemble
// every slide in order, let the layout settle, and write the PDF.
package deck

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/deck-pdf/internal/assemble"
	"github.com/pdiddy/deck-pdf/internal/render"
	"github.com/pdiddy/deck-pdf/internal/source"
	"github.com/pdiddy/deck-pdf/pkg/types"
)

// Page is the browser document the deck is assembled into.
type Page interface {
	// Load replaces the current document.
	Load(ctx context.Context, document string) error
	// ChartReady reports whether the chart library global exists.
	ChartReady(ctx context.Context) (bool, error)
	// WaitFonts blocks until web fonts have loaded.
	WaitFonts(ctx context.Context) error
	// Export renders the current document as PDF.
	Export(ctx context.Context, cfg types.PDFConfig) ([]byte, error)
}

// Result summarizes a finished export.
type Result struct {
	Slides      []types.Slide
	ChartsReady bool
	Output      string
	Bytes       int64
	Duration    time.Duration
}

// Pipeline holds the collaborators of one export.
type Pipeline struct {
	Config types.Config
	Source source.Source
	Page   Page
	Shell  assemble.Shell
	// Status receives the progress lines shown to the user.
	Status io.Writer
	Logger *zap.Logger
}

// Run executes the export. Any failure aborts the run; nothing is retried
// except the bounded wait for the chart library.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	status := p.Status
	if status == nil {
		status = io.Discard
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := p.Config

	if err := render.Validate(cfg.PDF); err != nil {
		return nil, err
	}
	if cfg.Deck.TotalSlides <= 0 {
		return nil, fmt.Errorf("total slides must be positive, got %d", cfg.Deck.TotalSlides)
	}

	fmt.Fprintln(status, "Initializing...")
	if err := p.Page.Load(ctx, p.Shell.Document()); err != nil {
		return nil, err
	}
	chartsReady, err := render.PollUntil(ctx, cfg.Render.ChartPollAttempts, cfg.Render.ChartPollInterval, p.Page.ChartReady)
	if err != nil {
		return nil, err
	}
	if !chartsReady {
		logger.Warn("chart library failed to load", zap.String("url", cfg.Deck.ChartLibraryURL))
		fmt.Fprintln(status, "Warning: Chart.js missing. Charts may not render.")
	}

	total := cfg.Deck.TotalSlides
	fmt.Fprintf(status, "Fetching %d slides...\n", total)

	var d assemble.Deck
	for i := 1; i <= total; i++ {
		fmt.Fprintf(status, "Preparing Slide %d/%d...\n", i, total)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := p.Source.Fetch(ctx, i)
		if err != nil {
			return nil, err
		}
		page, err := assemble.BuildSlide(i, raw, chartsReady)
		if err != nil {
			return nil, err
		}
		page.Slide.Source = p.Source.Location(i)
		d.Append(page)

		logger.Debug("assembled slide",
			zap.Int("slide", i),
			zap.String("source", page.Slide.Source),
			zap.Int("removed", page.Slide.Removed),
			zap.Int("chart_scripts", page.Slide.ChartScripts))
	}

	fmt.Fprintln(status, "Finalizing Layout...")
	document, err := d.String(p.Shell)
	if err != nil {
		return nil, err
	}
	if err := p.Page.Load(ctx, document); err != nil {
		return nil, err
	}
	if err := p.Page.WaitFonts(ctx); err != nil {
		return nil, err
	}
	// Charts animate after construction.
	if err := sleep(ctx, cfg.Render.SettleDelay); err != nil {
		return nil, err
	}

	fmt.Fprintln(status, "Generating PDF File... (This may take a moment)")
	pdf, err := p.Page.Export(ctx, cfg.PDF)
	if err != nil {
		return nil, err
	}

	out := filepath.Join(cfg.PDF.OutputDir, cfg.PDF.Filename)
	if err := writeFileAtomic(out, pdf); err != nil {
		return nil, err
	}
	fmt.Fprintln(status, "Download Complete!")

	result := &Result{
		Slides:      d.Slides(),
		ChartsReady: chartsReady,
		Output:      out,
		Bytes:       int64(len(pdf)),
		Duration:    time.Since(start),
	}
	logger.Info("deck exported",
		zap.String("output", out),
		zap.Int("slides", len(result.Slides)),
		zap.Int("chart_scripts", d.ChartScripts()),
		zap.Int64("bytes", result.Bytes),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// writeFileAtomic writes data to a temporary file beside path and renames it
// into place, so a failed export never leaves a truncated PDF.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".deck-pdf-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
