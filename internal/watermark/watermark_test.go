// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watermark

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		changed bool
		kept    []string
		gone    []string
	}{
		{
			name:    "corner box",
			in:      `<body><p>Body</p><div class="absolute bottom-6 right-8 opacity-50"><span>FactorLab</span></div></body>`,
			changed: true,
			kept:    []string{"<p>Body</p>"},
			gone:    []string{"FactorLab", "absolute"},
		},
		{
			name:    "parent itself is the corner box",
			in:      `<body><span class="absolute top-10">FactorLab</span><p>x</p></body>`,
			changed: true,
			gone:    []string{"FactorLab"},
		},
		{
			name:    "footer watermark",
			in:      `<body><main>m</main><footer class="text-right"><small>Powered by FactorLab</small></footer></body>`,
			changed: true,
			kept:    []string{"<main>m</main>"},
			gone:    []string{"footer"},
		},
		{
			name: "heading mentions brand",
			in:   `<body><div class="absolute bottom-4"><h1>Introduction to FactorLab</h1></div></body>`,
			kept: []string{"Introduction to FactorLab"},
		},
		{
			name: "display text mentions brand",
			in:   `<body><div class="absolute bottom-4"><p class="text-4xl">FactorLab</p></div></body>`,
			kept: []string{"FactorLab"},
		},
		{
			name: "absolute without corner class",
			in:   `<body><div class="absolute left-0">FactorLab</div></body>`,
			kept: []string{"FactorLab"},
		},
		{
			name: "plain footer",
			in:   `<body><footer>FactorLab</footer></body>`,
			kept: []string{"FactorLab"},
		},
		{
			name: "no brand",
			in:   `<body><div class="absolute bottom-4">CoKarma</div></body>`,
			kept: []string{"CoKarma"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed, err := CleanHTML([]byte(tt.in), "")
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			if !changed {
				assert.Nil(t, out)
				return
			}
			for _, s := range tt.kept {
				assert.Contains(t, string(out), s)
			}
			for _, s := range tt.gone {
				assert.NotContains(t, string(out), s)
			}
		})
	}
}

func TestCleanHTML_NestedWatermarksCountOnce(t *testing.T) {
	in := `<body><div class="absolute bottom-4"><span>FactorLab</span><div class="absolute right-6">FactorLab</div></div></body>`
	out, changed, err := CleanHTML([]byte(in), DefaultBrand)
	require.NoError(t, err)
	require.True(t, changed)
	assert.NotContains(t, string(out), "FactorLab")
}

func TestCleanHTML_CustomBrand(t *testing.T) {
	in := `<body><div class="absolute bottom-4">CoKarma</div><div class="absolute bottom-4">FactorLab</div></body>`
	out, changed, err := CleanHTML([]byte(in), "CoKarma")
	require.NoError(t, err)
	require.True(t, changed)
	assert.NotContains(t, string(out), "CoKarma")
	assert.Contains(t, string(out), "FactorLab")
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}
	marked := write("slide_2.html", `<html><body><div class="absolute bottom-6">FactorLab</div></body></html>`)
	cleanSrc := `<html><body><h1>FactorLab</h1></body></html>`
	clean := write("slide_1.html", cleanSrc)
	write("notes.html", `<body><div class="absolute bottom-6">FactorLab</div></body>`)

	var status bytes.Buffer
	changed, err := Dir(dir, "", "", &status)
	require.NoError(t, err)
	assert.Equal(t, []string{marked}, changed)
	assert.Equal(t, "Removing watermark from "+marked+"\n", status.String())

	data, err := os.ReadFile(marked)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "FactorLab")
	info, err := os.Stat(marked)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err = os.ReadFile(clean)
	require.NoError(t, err)
	assert.Equal(t, cleanSrc, string(data), "unmodified files are not rewritten")

	other, err := os.ReadFile(filepath.Join(dir, "notes.html"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(other), "FactorLab"), "files outside the glob are ignored")
}

func TestGlobFromPattern(t *testing.T) {
	tests := map[string]string{
		"slide_%d.html":  "slide_*.html",
		"page-%02d.html": "page-*.html",
		"100%%_%d.htm":   "100%_*.htm",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, GlobFromPattern(in), in)
	}
}
