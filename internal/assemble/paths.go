// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

// Fragments live one directory below the print document, so every
// parent-relative reference is re-pointed at the document's own directory.
var (
	srcParent  = regexp.MustCompile(`src="\.\./`)
	hrefParent = regexp.MustCompile(`href="\.\./`)
	urlParent  = regexp.MustCompile(`url\((['"]?)\.\./`)
)

// RewritePaths turns src="../, href="../ and url(../ references into
// their ./ equivalents. CSS url() keeps its original quoting.
func RewritePaths(text string) string {
	text = srcParent.ReplaceAllLiteralString(text, `src="./`)
	text = hrefParent.ReplaceAllLiteralString(text, `href="./`)
	text = urlParent.ReplaceAllString(text, `url(${1}./`)
	return text
}

// BaseHref returns the URL every rewritten ./ path resolves against: the
// parent of the slides directory, or of the remote base URL.
func BaseHref(cfg types.DeckConfig) (string, error) {
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parsing base URL %q: %w", base, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("base URL %q must be absolute", base)
		}
		parent := path.Dir(strings.TrimRight(u.Path, "/"))
		if !strings.HasSuffix(parent, "/") {
			parent += "/"
		}
		u.Path = parent
		u.RawQuery = ""
		u.Fragment = ""
		return u.String(), nil
	}

	dir := cfg.SlidesDir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving slides directory %s: %w", dir, err)
	}
	root := filepath.ToSlash(filepath.Dir(abs))
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	return (&url.URL{Scheme: "file", Path: root}).String(), nil
}
