// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

func TestNewSelectsBackend(t *testing.T) {
	dir := New(types.DeckConfig{SlidesDir: "slides"}, nil, "", nil)
	_, ok := dir.(*DirSource)
	assert.True(t, ok, "expected DirSource without base URL")
	assert.Equal(t, filepath.Join("slides", "slide_3.html"), dir.Location(3))

	remote := New(types.DeckConfig{BaseURL: "https://deck.example.com/slides/"}, nil, "tok", nil)
	hs, ok := remote.(*HTTPSource)
	require.True(t, ok, "expected HTTPSource with base URL")
	assert.Equal(t, "https://deck.example.com/slides/slide_12.html", hs.Location(12))
	assert.Equal(t, "tok", hs.Token)
}

func TestDirSourceFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slide_1.html"), []byte("<p>one</p>"), 0o644))

	src := &DirSource{Dir: dir}
	data, err := src.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "<p>one</p>", string(data))

	_, err = src.Fetch(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading slide 2")
}

func TestDirSourceFetch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&DirSource{Dir: t.TempDir()}).Fetch(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirSourceCustomPattern(t *testing.T) {
	src := &DirSource{Dir: "deck", Pattern: "page-%02d.htm"}
	assert.Equal(t, filepath.Join("deck", "page-07.htm"), src.Location(7))
}

func TestHTTPSourceFetch(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/slides/slide_1.html":
			w.Write([]byte("<h1>Intro</h1>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	src := New(types.DeckConfig{BaseURL: ts.URL + "/slides"}, ts.Client(), "secret", nil)

	data, err := src.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Intro</h1>", string(data))
	assert.Equal(t, "Bearer secret", gotAuth)

	_, err = src.Fetch(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
