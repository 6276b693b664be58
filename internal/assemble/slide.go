// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble turns slide fragments into wrapper nodes of a single
// printable document.
//
// Each fragment is path-patched, parsed, stripped of content that cannot be
// captured statically, and rebuilt as
//
//	<div class="slide-page">
//	  <style>...</style>     copies of every style block of the fragment
//	  <div>...</div>         the fragment body without its scripts
//	  <script>...</script>   chart scripts, each isolated in its own scope
//	</div>
package assemble

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

// PageClass is the class of the per-slide wrapper.
const PageClass = "slide-page"

// chartMarkers identify scripts that construct charts.
var chartMarkers = []string{"new Chart", "getContext"}

// imageFallback hides images that fail to load instead of printing a broken icon.
const imageFallback = `this.style.display='none';console.warn('Image failed:', this.src);`

// Page is one assembled slide wrapper.
type Page struct {
	Slide types.Slide
	node  *html.Node
}

// Node returns the wrapper element.
func (p *Page) Node() *html.Node { return p.node }

// HTML serializes the wrapper element.
func (p *Page) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, p.node); err != nil {
		return "", fmt.Errorf("rendering slide %d: %w", p.Slide.Index, err)
	}
	return buf.String(), nil
}

// BuildSlide assembles fragment raw as slide index. Chart scripts are kept
// only when chartsReady reports that the chart library is loaded.
func BuildSlide(index int, raw []byte, chartsReady bool) (*Page, error) {
	text := RewritePaths(string(raw))

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parsing slide %d: %w", index, err)
	}

	slide := types.Slide{Index: index}
	slide.Removed = Strip(doc)

	page := element(atom.Div, html.Attribute{Key: "class", Val: PageClass})
	setAttr(page, "data-slide", fmt.Sprint(index))

	for _, s := range findAll(doc, "style") {
		page.AppendChild(cloneNode(s))
		slide.Styles++
	}

	content := element(atom.Div)
	if body := findFirst(doc, "body"); body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			content.AppendChild(cloneNode(c))
		}
	}
	// Scripts inserted as markup never run; drop them from the copy so the
	// static document behaves the same way.
	for _, s := range findAll(content, "script") {
		s.Parent.RemoveChild(s)
	}
	for _, img := range findAll(content, "img") {
		setAttr(img, "onerror", imageFallback)
	}
	page.AppendChild(content)

	for _, s := range findAll(doc, "script") {
		code := textContent(s)
		if !chartsReady || !isChartScript(code) {
			slide.DroppedScripts++
			continue
		}
		script := element(atom.Script)
		script.AppendChild(&html.Node{Type: html.TextNode, Data: isolate(index, code)})
		page.AppendChild(script)
		slide.ChartScripts++
	}

	return &Page{Slide: slide, node: page}, nil
}

func isChartScript(code string) bool {
	for _, m := range chartMarkers {
		if strings.Contains(code, m) {
			return true
		}
	}
	return false
}

// scriptClose matches a sequence that would end a script element early when
// the document is serialized and parsed again.
var scriptClose = regexp.MustCompile(`(?i)</(script)`)

// isolate wraps code in its own function scope so that top-level
// declarations of different slides cannot collide and a failing chart
// only warns. Closing script tags in the code are written as <\/script,
// which reads the same in JavaScript strings and regex literals.
func isolate(index int, code string) string {
	code = scriptClose.ReplaceAllString(code, `<\/${1}`)
	return fmt.Sprintf(`(() => {
    try {
        %s
    } catch(e) { console.warn('Script error slide %d', e); }
})();`, code, index)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

// cloneNode deep-copies n without its parent or siblings.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}
