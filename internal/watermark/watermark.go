// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watermark removes brand watermarks that slide generators pin to a
// corner of every slide.
//
// A watermark is a text node containing the brand whose nearest qualifying
// ancestor is either an absolutely positioned corner box or a footer. Headings
// and display-size text that merely mention the brand are left alone.
package watermark

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// DefaultBrand is the watermark text of the pitch deck.
const DefaultBrand = "FactorLab"

var (
	titleTags    = map[string]bool{"h1": true, "h2": true}
	titleClasses = []string{"text-5xl", "text-4xl"}
	cornerClass  = []string{"bottom-4", "bottom-6", "right-6", "right-8", "top-10"}
)

// Clean removes watermarks from the document rooted at doc and returns the
// number of removed containers.
func Clean(doc *html.Node, brand string) int {
	if brand == "" {
		brand = DefaultBrand
	}

	var texts []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type == html.TextNode && strings.Contains(n.Data, brand) {
			texts = append(texts, n)
		}
	})

	removed := 0
	for _, t := range texts {
		// An earlier removal may have detached this text already.
		if !attached(t, doc) {
			continue
		}
		parent := t.Parent
		if parent == nil || parent.Type != html.ElementNode {
			continue
		}
		if titleTags[parent.Data] || hasAnyClass(parent, titleClasses...) {
			continue
		}
		if c := watermarkContainer(parent, brand); c != nil {
			c.Parent.RemoveChild(c)
			removed++
		}
	}
	return removed
}

// watermarkContainer walks up from n to the body and returns the first
// ancestor that looks like a watermark box.
func watermarkContainer(n *html.Node, brand string) *html.Node {
	for c := n; c != nil && c.Type == html.ElementNode; c = c.Parent {
		if c.Data == "body" || c.Data == "html" {
			return nil
		}
		if hasClass(c, "absolute") && hasAnyClass(c, cornerClass...) {
			return c
		}
		if c.Data == "footer" && hasAnyClass(c, "absolute", "text-right") &&
			strings.Contains(textContent(c), brand) {
			return c
		}
	}
	return nil
}

// CleanHTML cleans one serialized document. changed is false when nothing was
// removed, in which case out is nil.
func CleanHTML(in []byte, brand string) (out []byte, changed bool, err error) {
	doc, err := html.Parse(bytes.NewReader(in))
	if err != nil {
		return nil, false, fmt.Errorf("parsing html: %w", err)
	}
	if Clean(doc, brand) == 0 {
		return nil, false, nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, false, fmt.Errorf("rendering html: %w", err)
	}
	return buf.Bytes(), true, nil
}

// Dir cleans every file in dir matching glob. Only modified files are
// rewritten; each one is reported on status. It returns the rewritten paths.
func Dir(dir, glob, brand string, status io.Writer) ([]string, error) {
	if status == nil {
		status = io.Discard
	}
	if glob == "" {
		glob = "slide_*.html"
	}
	files, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", glob, err)
	}
	sort.Strings(files)

	var changed []string
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return changed, fmt.Errorf("reading %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return changed, fmt.Errorf("reading %s: %w", path, err)
		}
		out, ok, err := CleanHTML(data, brand)
		if err != nil {
			return changed, fmt.Errorf("%s: %w", path, err)
		}
		if !ok {
			continue
		}
		fmt.Fprintf(status, "Removing watermark from %s\n", path)
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return changed, fmt.Errorf("writing %s: %w", path, err)
		}
		changed = append(changed, path)
	}
	return changed, nil
}

// GlobFromPattern turns a printf file pattern such as "slide_%d.html" into a
// glob such as "slide_*.html".
func GlobFromPattern(pattern string) string {
	if pattern == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			b.WriteByte(pattern[i])
			continue
		}
		// Skip flags and width up to the verb.
		j := i + 1
		for j < len(pattern) && strings.IndexByte("0123456789+-# ", pattern[j]) >= 0 {
			j++
		}
		if j < len(pattern) && pattern[j] == '%' {
			b.WriteByte('%')
		} else {
			b.WriteByte('*')
		}
		i = j
	}
	return b.String()
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attached(n, root *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

func classes(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

func hasClass(n *html.Node, name string) bool {
	return hasAnyClass(n, name)
}

func hasAnyClass(n *html.Node, names ...string) bool {
	for _, c := range classes(n) {
		for _, name := range names {
			if c == name {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
