// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/deck-pdf/internal/httputil"
)

// maxFragmentSize caps a single fragment download.
const maxFragmentSize = 32 << 20

// HTTPSource fetches fragments relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Pattern string
	Token   string
	Client  *httputil.Client
}

// Location returns the fragment URL for index.
func (h *HTTPSource) Location(index int) string {
	return strings.TrimRight(h.BaseURL, "/") + "/" + FileName(h.Pattern, index)
}

// Fetch downloads the fragment for index. Any status other than 200 is an error.
func (h *HTTPSource) Fetch(ctx context.Context, index int) ([]byte, error) {
	url := h.Location(index)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching slide %d: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching slide %d: HTTP %d from %s", index, resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentSize))
	if err != nil {
		return nil, fmt.Errorf("reading slide %d: %w", index, err)
	}
	return data, nil
}
