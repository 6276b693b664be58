// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"html"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

// ContainerID is the id of the element holding every slide wrapper.
const ContainerID = "print-container"

// Shell is the document surrounding the slide wrappers.
type Shell struct {
	Title           string
	BaseHref        string
	ChartLibraryURL string
	PageWidthPx     int
	PageHeightPx    int
}

// NewShell derives the shell from the export configuration.
func NewShell(cfg types.Config, baseHref string) Shell {
	return Shell{
		Title:           cfg.Deck.Title,
		BaseHref:        baseHref,
		ChartLibraryURL: cfg.Deck.ChartLibraryURL,
		PageWidthPx:     cfg.PDF.PageWidthPx,
		PageHeightPx:    cfg.PDF.PageHeightPx,
	}
}

// printCSS sizes each wrapper to exactly one page.
const printCSS = `html, body { margin: 0; padding: 0; background: #fff; }
#%[1]s { width: %[2]dpx; }
.%[4]s { position: relative; width: %[2]dpx; height: %[3]dpx; overflow: hidden; break-after: page; page-break-after: always; }
.%[4]s:last-child { break-after: auto; page-break-after: auto; }
@page { size: %[2]dpx %[3]dpx; margin: 0; }`

func (s Shell) writeHead(w io.Writer) {
	fmt.Fprint(w, "<!DOCTYPE html>\n<html><head>\n<meta charset=\"utf-8\">\n")
	if s.BaseHref != "" {
		fmt.Fprintf(w, "<base href=\"%s\">\n", html.EscapeString(s.BaseHref))
	}
	if s.Title != "" {
		fmt.Fprintf(w, "<title>%s</title>\n", html.EscapeString(s.Title))
	}
	fmt.Fprintf(w, "<style>\n"+printCSS+"\n</style>\n", ContainerID, s.width(), s.height(), PageClass)
	if s.ChartLibraryURL != "" {
		fmt.Fprintf(w, "<script src=\"%s\"></script>\n", html.EscapeString(s.ChartLibraryURL))
	}
	fmt.Fprint(w, "</head>\n")
}

func (s Shell) width() int {
	if s.PageWidthPx <= 0 {
		return 1280
	}
	return s.PageWidthPx
}

func (s Shell) height() int {
	if s.PageHeightPx <= 0 {
		return 720
	}
	return s.PageHeightPx
}

// Document returns the shell with an empty container. Loading it makes the
// chart library available for probing before any slide is assembled.
func (s Shell) Document() string {
	var b strings.Builder
	s.writeHead(&b)
	fmt.Fprintf(&b, "<body><div id=\"%s\"></div></body></html>\n", ContainerID)
	return b.String()
}

// Deck is the ordered output container.
type Deck struct {
	pages []*Page
}

// Append adds p after every page appended before it.
func (d *Deck) Append(p *Page) {
	d.pages = append(d.pages, p)
}

// Len returns the number of wrappers in the deck.
func (d *Deck) Len() int { return len(d.pages) }

// Pages returns the wrappers in order.
func (d *Deck) Pages() []*Page { return d.pages }

// Slides returns the per-slide summaries in order.
func (d *Deck) Slides() []types.Slide {
	out := make([]types.Slide, len(d.pages))
	for i, p := range d.pages {
		out[i] = p.Slide
	}
	return out
}

// ChartScripts sums the chart scripts kept across all slides.
func (d *Deck) ChartScripts() int {
	n := 0
	for _, p := range d.pages {
		n += p.Slide.ChartScripts
	}
	return n
}

// Render writes the single scrollable document holding every wrapper.
func (d *Deck) Render(w io.Writer, shell Shell) error {
	var b strings.Builder
	shell.writeHead(&b)
	fmt.Fprintf(&b, "<body>\n<div id=\"%s\">\n", ContainerID)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, p := range d.pages {
		if err := nethtml.Render(w, p.node); err != nil {
			return fmt.Errorf("rendering slide %d: %w", p.Slide.Index, err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</div>\n</body></html>\n")
	return err
}

// String renders the deck document into memory.
func (d *Deck) String(shell Shell) (string, error) {
	var b strings.Builder
	if err := d.Render(&b, shell); err != nil {
		return "", err
	}
	return b.String(), nil
}
