// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render drives a headless Chromium session that loads the assembled
// deck, waits for charts and fonts, and exports it as PDF.
package render

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/pdiddy/deck-pdf/internal/assemble"
	"github.com/pdiddy/deck-pdf/pkg/types"
)

// Options configures a Browser.
type Options struct {
	// BrowserPath overrides the Chromium binary.
	BrowserPath string
	// RemoteURL attaches to a running browser instead of launching one.
	RemoteURL string
	Headless  bool
	NoSandbox bool
	// Timeout bounds the whole session. Zero means no limit.
	Timeout time.Duration
	// WindowWidth and WindowHeight size the emulated viewport.
	WindowWidth  int
	WindowHeight int
	// StageDir receives the print document. It must be readable by the
	// browser under the same path.
	StageDir string
	// Title is written into raster PDFs.
	Title  string
	Logger *zap.Logger
}

// Browser is one headless tab holding the print document.
type Browser struct {
	opts   Options
	logger *zap.Logger

	allocCancel   context.CancelFunc
	tabCtx        context.Context
	tabCancel     context.CancelFunc
	timeoutCancel context.CancelFunc

	mu     sync.Mutex
	staged []string
}

// Open starts (or attaches to) a browser and prepares a tab with the
// configured viewport.
func Open(ctx context.Context, opts Options) (*Browser, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WindowWidth <= 0 {
		opts.WindowWidth = 1280
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = 720
	}
	if opts.StageDir == "" {
		opts.StageDir = os.TempDir()
	}

	if opts.RemoteURL != "" {
		if err := CheckRemoteURL(opts.RemoteURL); err != nil {
			return nil, err
		}
	}

	b := &Browser{opts: opts, logger: logger}

	var allocCtx context.Context
	if opts.RemoteURL != "" {
		allocCtx, b.allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
	} else {
		allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			logger.Debug("cdp: " + fmt.Sprintf(format, args...))
		}),
	)
	b.tabCtx, b.tabCancel = tabCtx, tabCancel
	if opts.Timeout > 0 {
		b.tabCtx, b.timeoutCancel = context.WithTimeout(tabCtx, opts.Timeout)
	}

	chromedp.ListenTarget(b.tabCtx, b.onEvent)

	// The first Run allocates the browser and binds its lifetime to the
	// context it is given, so it must see the tab context itself.
	if err := ctx.Err(); err != nil {
		b.Close()
		return nil, err
	}
	err := chromedp.Run(b.tabCtx,
		emulation.SetDeviceMetricsOverride(int64(opts.WindowWidth), int64(opts.WindowHeight), 1, false),
	)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	return b, nil
}

// CheckRemoteURL accepts DevTools endpoints on the loopback interface only.
// The print document is staged as a local file, so a browser on another
// host could not open it.
func CheckRemoteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing remote browser URL %q: %w", raw, err)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("remote browser URL %q has no host", raw)
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("remote browser %s is not on this host: the print document is staged as a local file", host)
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	options = append(options,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.Flag("allow-file-access-from-files", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.BrowserPath != "" {
		options = append(options, chromedp.ExecPath(opts.BrowserPath))
	}
	if opts.NoSandbox {
		options = append(options, chromedp.NoSandbox)
	}
	return options
}

// Close shuts the tab and browser down and removes staged documents.
func (b *Browser) Close() error {
	if b == nil {
		return nil
	}
	if b.timeoutCancel != nil {
		b.timeoutCancel()
	}
	if b.tabCancel != nil {
		b.tabCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.staged {
		os.Remove(p)
	}
	b.staged = nil
	return nil
}

// run executes actions on the tab, aborting when ctx is done.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Load navigates the tab to document. The document is staged as a file so
// that file:// assets referenced through its base href stay loadable.
func (b *Browser) Load(ctx context.Context, document string) error {
	f, err := os.CreateTemp(b.opts.StageDir, ".deck-pdf-*.html")
	if err != nil {
		return fmt.Errorf("staging print document: %w", err)
	}
	path := f.Name()
	b.mu.Lock()
	b.staged = append(b.staged, path)
	b.mu.Unlock()

	_, writeErr := f.WriteString(document)
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("staging print document: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("staging print document: %w", closeErr)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	b.logger.Debug("loading print document", zap.String("url", target), zap.Int("bytes", len(document)))

	if err := b.run(ctx, chromedp.Navigate(target), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("loading print document: %w", err)
	}
	return nil
}

// ChartReady probes for the chart library global.
func (b *Browser) ChartReady(ctx context.Context) (bool, error) {
	var ok bool
	if err := b.run(ctx, chromedp.Evaluate(`typeof window.Chart !== 'undefined'`, &ok)); err != nil {
		return false, fmt.Errorf("probing chart library: %w", err)
	}
	return ok, nil
}

// WaitFonts blocks until every web font of the document has loaded.
func (b *Browser) WaitFonts(ctx context.Context) error {
	var done bool
	err := b.run(ctx, chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &done, awaitPromise))
	if err != nil {
		return fmt.Errorf("waiting for fonts: %w", err)
	}
	return nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// Export renders the loaded document as PDF in the configured mode.
func (b *Browser) Export(ctx context.Context, cfg types.PDFConfig) ([]byte, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case types.ModeVector:
		return b.printVector(ctx, cfg)
	default:
		return b.captureRaster(ctx, cfg)
	}
}

// pageRect is the document-relative box of one slide wrapper.
type pageRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var pageRectsJS = fmt.Sprintf(`Array.from(document.querySelectorAll('#%s > .%s')).map(el => {
	const r = el.getBoundingClientRect();
	return { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height };
})`, assemble.ContainerID, assemble.PageClass)

func (b *Browser) captureRaster(ctx context.Context, cfg types.PDFConfig) ([]byte, error) {
	var rects []pageRect
	if err := b.run(ctx, chromedp.Evaluate(pageRectsJS, &rects)); err != nil {
		return nil, fmt.Errorf("locating slides: %w", err)
	}
	if len(rects) == 0 {
		return nil, fmt.Errorf("document has no slides to capture")
	}

	quality := int64(math.Round(cfg.ImageQuality * 100))
	images := make([][]byte, 0, len(rects))
	for i, r := range rects {
		var img []byte
		err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			img, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(quality).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true).
				WithClip(&page.Viewport{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Scale: cfg.Scale}).
				Do(ctx)
			return err
		}))
		if err != nil {
			return nil, fmt.Errorf("capturing slide %d: %w", i+1, err)
		}
		b.logger.Debug("captured slide", zap.Int("slide", i+1), zap.Int("bytes", len(img)))
		images = append(images, img)
	}

	return ComposeImages(images, cfg, b.opts.Title)
}

func (b *Browser) printVector(ctx context.Context, cfg types.PDFConfig) ([]byte, error) {
	params := PrintParams(cfg)
	var pdf []byte
	err := b.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, _, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("printing pdf: %w", err)
	}
	return pdf, nil
}

// PrintParams builds the native print request. Paper size is passed already
// oriented, so the landscape flag stays off.
func PrintParams(cfg types.PDFConfig) *page.PrintToPDFParams {
	w, h := PageSizePx(cfg)
	m := marginInches(cfg)
	return page.PrintToPDF().
		WithPaperWidth(float64(w) / cssPxPerInch).
		WithPaperHeight(float64(h) / cssPxPerInch).
		WithMarginTop(m).
		WithMarginBottom(m).
		WithMarginLeft(m).
		WithMarginRight(m).
		WithPrintBackground(true).
		WithPreferCSSPageSize(false).
		WithLandscape(false).
		WithScale(1)
}

// onEvent forwards page console output and uncaught exceptions to the logger.
func (b *Browser) onEvent(ev interface{}) {
	switch ev := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		msg := consoleText(ev.Args)
		switch ev.Type {
		case runtime.APITypeError:
			b.logger.Error("page console", zap.String("message", msg))
		case runtime.APITypeWarning:
			b.logger.Warn("page console", zap.String("message", msg))
		default:
			b.logger.Debug("page console", zap.String("type", string(ev.Type)), zap.String("message", msg))
		}
	case *runtime.EventExceptionThrown:
		if ev.ExceptionDetails != nil {
			text := ev.ExceptionDetails.Text
			if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
				text = ev.ExceptionDetails.Exception.Description
			}
			b.logger.Warn("page exception", zap.String("message", text))
		}
	}
}

func consoleText(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		switch {
		case len(a.Value) > 0:
			parts = append(parts, strings.Trim(string(a.Value), `"`))
		case a.Description != "":
			parts = append(parts, a.Description)
		default:
			parts = append(parts, string(a.Type))
		}
	}
	return strings.Join(parts, " ")
}
