// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

// ComposeImages lays out JPEG page images one per page of the configured
// format, inset by the configured margin, and returns the PDF bytes.
func ComposeImages(images [][]byte, cfg types.PDFConfig, title string) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no pages captured")
	}

	wPx, hPx := PageSizePx(cfg)
	wPt, hPt := float64(wPx)*ptPerPx, float64(hPx)*ptPerPx
	marginPt := marginInches(cfg) * 72.0

	// Size is given already oriented; "P" keeps gofpdf from swapping it.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wPt, Ht: hPt},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("deck-pdf", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	for i, img := range images {
		name := fmt.Sprintf("slide-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("registering page %d: %w", i+1, err)
		}
		pdf.AddPage()
		pdf.ImageOptions(name, marginPt, marginPt, wPt-2*marginPt, hPt-2*marginPt, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
