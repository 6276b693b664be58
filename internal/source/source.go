// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches numbered slide fragments from a directory or a
// remote base URL.
package source

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/deck-pdf/internal/httputil"
	"github.com/pdiddy/deck-pdf/pkg/types"
)

const defaultPattern = "slide_%d.html"

// Source yields the raw HTML of slide fragments by 1-based index.
type Source interface {
	// Fetch returns the fragment for index.
	Fetch(ctx context.Context, index int) ([]byte, error)

	// Location describes where index is read from, for status output.
	Location(index int) string
}

// New returns an HTTPSource when cfg.BaseURL is set and a DirSource otherwise.
// token is sent as a bearer credential to remote hosts.
func New(cfg types.DeckConfig, client *http.Client, token string, logger *zap.Logger) Source {
	pattern := cfg.FilePattern
	if pattern == "" {
		pattern = defaultPattern
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		return &HTTPSource{
			BaseURL: cfg.BaseURL,
			Pattern: pattern,
			Token:   token,
			Client:  httputil.NewClient(client, logger),
		}
	}
	return &DirSource{Dir: cfg.SlidesDir, Pattern: pattern}
}

// FileName formats the fragment file name for index.
func FileName(pattern string, index int) string {
	if pattern == "" {
		pattern = defaultPattern
	}
	return fmt.Sprintf(pattern, index)
}

// DirSource reads fragments from a local directory.
type DirSource struct {
	Dir     string
	Pattern string
}

// Location returns the fragment path for index.
func (d *DirSource) Location(index int) string {
	return filepath.Join(d.Dir, FileName(d.Pattern, index))
}

// Fetch reads the fragment file for index.
func (d *DirSource) Fetch(ctx context.Context, index int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := d.Location(index)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading slide %d: %w", index, err)
	}
	return data, nil
}
