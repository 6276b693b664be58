// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deck-pdf/internal/assemble"
	"github.com/pdiddy/deck-pdf/pkg/types"
)

// fakePage records documents and answers probes from configuration.
type fakePage struct {
	readyAfter int // ChartReady call that first reports true, 0 = never
	exportErr  error
	loadErr    error

	probes    int
	documents []string
	fontWaits int
	exported  *types.PDFConfig
}

func (f *fakePage) Load(_ context.Context, document string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.documents = append(f.documents, document)
	return nil
}

func (f *fakePage) ChartReady(context.Context) (bool, error) {
	f.probes++
	return f.readyAfter > 0 && f.probes >= f.readyAfter, nil
}

func (f *fakePage) WaitFonts(context.Context) error {
	f.fontWaits++
	return nil
}

func (f *fakePage) Export(_ context.Context, cfg types.PDFConfig) ([]byte, error) {
	f.exported = &cfg
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return []byte("%PDF-1.4 fake"), nil
}

// fakeSource serves generated fragments and fails on failAt.
type fakeSource struct {
	failAt  int
	fetched []int
}

func (s *fakeSource) Fetch(_ context.Context, index int) ([]byte, error) {
	s.fetched = append(s.fetched, index)
	if index == s.failAt {
		return nil, fmt.Errorf("reading slide %d: file does not exist", index)
	}
	return []byte(fmt.Sprintf(`<html><head><style>.s%d{}</style></head><body>
<h2>Slide %d</h2><iframe></iframe>
<canvas id="c%d"></canvas>
<script>new Chart(document.getElementById('c%d'), {});</script>
</body></html>`, index, index, index, index)), nil
}

func (s *fakeSource) Location(index int) string {
	return fmt.Sprintf("slides/slide_%d.html", index)
}

func testConfig(t *testing.T) types.Config {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.PDF.OutputDir = t.TempDir()
	cfg.Render.ChartPollInterval = time.Millisecond
	cfg.Render.SettleDelay = time.Millisecond
	return cfg
}

// status is an io.Writer so that a nil argument stays a nil interface.
func newPipeline(cfg types.Config, page *fakePage, src *fakeSource, status io.Writer) *Pipeline {
	return &Pipeline{
		Config: cfg,
		Source: src,
		Page:   page,
		Shell:  assemble.NewShell(cfg, "file:///deck/"),
		Status: status,
	}
}

func TestRun_FourteenSlides(t *testing.T) {
	cfg := testConfig(t)
	page := &fakePage{readyAfter: 3}
	src := &fakeSource{}
	var status bytes.Buffer

	result, err := newPipeline(cfg, page, src, &status).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.ChartsReady)
	assert.Equal(t, 3, page.probes)
	require.Len(t, result.Slides, 14)
	for i, s := range result.Slides {
		assert.Equal(t, i+1, s.Index)
		assert.Equal(t, fmt.Sprintf("slides/slide_%d.html", i+1), s.Source)
		assert.Equal(t, 1, s.Removed)
		assert.Equal(t, 1, s.ChartScripts)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}, src.fetched)

	require.Len(t, page.documents, 2, "shell first, then the assembled deck")
	assert.NotContains(t, page.documents[0], "slide-page\"")
	doc := page.documents[1]
	assert.Equal(t, 14, strings.Count(doc, `<div class="slide-page"`))
	last := -1
	for i := 1; i <= 14; i++ {
		at := strings.Index(doc, fmt.Sprintf("<h2>Slide %d</h2>", i))
		require.Greater(t, at, last, "slide %d out of order", i)
		last = at
	}
	assert.Equal(t, 1, page.fontWaits)

	out := filepath.Join(cfg.PDF.OutputDir, "FactorLab_CoKarma_PitchDeck.pdf")
	assert.Equal(t, out, result.Output)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Equal(t, int64(len(data)), result.Bytes)

	lines := strings.Split(strings.TrimSpace(status.String()), "\n")
	assert.Equal(t, "Initializing...", lines[0])
	assert.Equal(t, "Fetching 14 slides...", lines[1])
	assert.Equal(t, "Preparing Slide 1/14...", lines[2])
	assert.Equal(t, "Preparing Slide 14/14...", lines[15])
	assert.Equal(t, []string{
		"Finalizing Layout...",
		"Generating PDF File... (This may take a moment)",
		"Download Complete!",
	}, lines[16:])
}

func TestRun_ChartLibraryMissing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Deck.TotalSlides = 2
	cfg.Render.ChartPollAttempts = 5
	page := &fakePage{}
	var status bytes.Buffer

	result, err := newPipeline(cfg, page, &fakeSource{}, &status).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.ChartsReady)
	assert.Equal(t, 6, page.probes)
	assert.Contains(t, status.String(), "Warning: Chart.js missing. Charts may not render.\n")
	for _, s := range result.Slides {
		assert.Equal(t, 0, s.ChartScripts)
	}
	assert.NotContains(t, page.documents[1], "new Chart")
}

func TestRun_FetchFailureAborts(t *testing.T) {
	cfg := testConfig(t)
	page := &fakePage{readyAfter: 1}
	src := &fakeSource{failAt: 5}
	var status bytes.Buffer

	_, err := newPipeline(cfg, page, src, &status).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading slide 5")

	assert.Equal(t, []int{1, 2, 3, 4, 5}, src.fetched)
	assert.Nil(t, page.exported, "export must not run after a failed fetch")
	assert.True(t, strings.HasSuffix(status.String(), "Preparing Slide 5/14...\n"))
	assertNoOutput(t, cfg)
}

func TestRun_ExportFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Deck.TotalSlides = 1
	page := &fakePage{readyAfter: 1, exportErr: errors.New("capture failed")}
	var status bytes.Buffer

	_, err := newPipeline(cfg, page, &fakeSource{}, &status).Run(context.Background())
	require.ErrorContains(t, err, "capture failed")
	assert.NotContains(t, status.String(), "Download Complete!")
	assertNoOutput(t, cfg)
}

func TestRun_PassesPDFConfigToExport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Deck.TotalSlides = 1
	cfg.PDF.Mode = types.ModeVector
	page := &fakePage{readyAfter: 1}

	_, err := newPipeline(cfg, page, &fakeSource{}, nil).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, page.exported)
	assert.Equal(t, cfg.PDF, *page.exported)
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Config)
		errMsg string
	}{
		{"no slides", func(c *types.Config) { c.Deck.TotalSlides = 0 }, "total slides"},
		{"bad mode", func(c *types.Config) { c.PDF.Mode = "png" }, "unsupported export mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			page := &fakePage{}
			_, err := newPipeline(cfg, page, &fakeSource{}, nil).Run(context.Background())
			require.ErrorContains(t, err, tt.errMsg)
			assert.Empty(t, page.documents, "nothing is loaded for an invalid config")
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{}
	_, err := newPipeline(cfg, &fakePage{readyAfter: 1}, src, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.fetched)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deck.pdf")
	require.NoError(t, writeFileAtomic(path, []byte("v1")))
	require.NoError(t, writeFileAtomic(path, []byte("v2")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func assertNoOutput(t *testing.T, cfg types.Config) {
	t.Helper()
	entries, err := os.ReadDir(cfg.PDF.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
