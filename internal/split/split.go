// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split cuts a combined deck export into numbered slide fragments.
//
// The combined file separates slides with marker lines of the form
// "slide - 3". Everything after a marker up to the next marker is one
// fragment.
package split

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/deck-pdf/internal/source"
)

// ErrNoSlides is returned when the input contains no slide markers.
var ErrNoSlides = errors.New("no slides found")

var (
	markerRe  = regexp.MustCompile(`(?im)^slide - \s*(\d+)`)
	bodyEndRe = regexp.MustCompile(`(?i)</body\s*>`)
)

// ThemeListener lets a hosting page toggle a dark theme stylesheet inside the
// fragment through postMessage.
const ThemeListener = `
    <script>
        window.addEventListener('message', function(event) {
            if (event.data.type === 'theme-update') {
                const isDark = event.data.isDark;
                const css = event.data.css;
                const styleId = 'dark-theme-style';
                let style = document.getElementById(styleId);

                if (isDark) {
                    if (!style) {
                        style = document.createElement('style');
                        style.id = styleId;
                        style.textContent = css;
                        document.head.appendChild(style);
                    }
                } else {
                    if (style) {
                        style.remove();
                    }
                }
            }
        });
    </script>
`

// Chunk is one slide cut from the combined text.
type Chunk struct {
	Number  int
	Content string
}

// Parse returns the slides of text in file order. Content is trimmed.
func Parse(text string) []Chunk {
	matches := markerRe.FindAllStringSubmatchIndex(text, -1)
	chunks := make([]Chunk, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		// The marker only matches digits, so Atoi fails only on overflow.
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		chunks = append(chunks, Chunk{
			Number:  n,
			Content: strings.TrimSpace(text[m[1]:end]),
		})
	}
	return chunks
}

// InjectListener inserts ThemeListener before the last closing body tag, or
// appends it when the fragment has none.
func InjectListener(content string) string {
	locs := bodyEndRe.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return content + ThemeListener
	}
	at := locs[len(locs)-1][0]
	return content[:at] + ThemeListener + content[at:]
}

// Options controls where fragments are written.
type Options struct {
	OutputDir string
	// Pattern formats the slide number into a file name (default "slide_%d.html").
	Pattern string
}

// Write splits text and writes one fragment per slide, reporting each file
// on status. It returns the written paths in file order.
func Write(text string, opts Options, status io.Writer) ([]string, error) {
	if status == nil {
		status = io.Discard
	}
	chunks := Parse(text)
	if len(chunks) == 0 {
		return nil, ErrNoSlides
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(chunks))
	for _, c := range chunks {
		path := filepath.Join(opts.OutputDir, source.FileName(opts.Pattern, c.Number))
		if err := os.WriteFile(path, []byte(InjectListener(c.Content)), 0o644); err != nil {
			return paths, fmt.Errorf("writing slide %d: %w", c.Number, err)
		}
		fmt.Fprintf(status, "Created %s\n", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// File splits the combined file at path.
func File(path string, opts Options, status io.Writer) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Write(string(data), opts, status)
}
