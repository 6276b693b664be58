// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"strings"

	"golang.org/x/net/html"
)

// staticIncompatible are element kinds that cannot be captured in a static page.
var staticIncompatible = map[string]bool{
	"iframe": true,
	"video":  true,
	"object": true,
	"embed":  true,
}

// interactiveOnlyClass marks containers that only make sense on screen.
const interactiveOnlyClass = "interactive-only"

// Strip removes embedded media and interactive-only containers from the tree
// rooted at n. It returns the number of removed elements; descendants of a
// removed element are not counted separately.
func Strip(n *html.Node) int {
	var doomed []*html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type != html.ElementNode {
			return true
		}
		if staticIncompatible[c.Data] || hasClass(c, interactiveOnlyClass) {
			doomed = append(doomed, c)
			return false
		}
		return true
	})
	for _, c := range doomed {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
	}
	return len(doomed)
}

// walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, fn)
		c = next
	}
}

// findAll collects the element nodes named tag below n.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
		return true
	})
	return out
}

// findFirst returns the first element named tag below n, or nil.
func findFirst(n *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if c.Type == html.ElementNode && c.Data == tag {
			found = c
			return false
		}
		return true
	})
	return found
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, name string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}

// textContent concatenates the text below n.
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
