// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/deck-pdf/pkg/types"
)

const (
	// cssPxPerInch is the CSS reference pixel density.
	cssPxPerInch = 96.0
	// ptPerPx converts CSS pixels to PDF points.
	ptPerPx = 72.0 / cssPxPerInch
)

var lengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

// ParseLength converts a CSS length to inches. A bare number is taken as px,
// the unit of the page format.
func ParseLength(value string) (float64, error) {
	matches := lengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid length: %q", value)
	}

	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length: %q: %w", value, err)
	}

	switch unit := strings.ToLower(matches[2]); unit {
	case "", "px":
		return amount / cssPxPerInch, nil
	case "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	default:
		return 0, fmt.Errorf("unsupported length unit: %s", unit)
	}
}

// PageSizePx returns the page format oriented as requested: the longer edge
// is horizontal in landscape and vertical otherwise.
func PageSizePx(cfg types.PDFConfig) (width, height int) {
	width, height = cfg.PageWidthPx, cfg.PageHeightPx
	if cfg.Landscape == (width < height) {
		width, height = height, width
	}
	return width, height
}

// Validate checks the export settings before any browser work starts.
func Validate(cfg types.PDFConfig) error {
	if cfg.Filename == "" {
		return fmt.Errorf("pdf filename is required")
	}
	if cfg.PageWidthPx <= 0 || cfg.PageHeightPx <= 0 {
		return fmt.Errorf("page format must be positive, got %dx%d px", cfg.PageWidthPx, cfg.PageHeightPx)
	}
	switch cfg.Mode {
	case types.ModeRaster, types.ModeVector:
	default:
		return fmt.Errorf("unsupported export mode %q: use %s or %s", cfg.Mode, types.ModeRaster, types.ModeVector)
	}
	if cfg.Scale <= 0 || cfg.Scale > 4 {
		return fmt.Errorf("scale must be in (0, 4], got %g", cfg.Scale)
	}
	if cfg.ImageQuality <= 0 || cfg.ImageQuality > 1 {
		return fmt.Errorf("image quality must be in (0, 1], got %g", cfg.ImageQuality)
	}
	if cfg.Margin != "" {
		m, err := ParseLength(cfg.Margin)
		if err != nil {
			return err
		}
		w, h := PageSizePx(cfg)
		if 2*m*cssPxPerInch >= float64(min(w, h)) {
			return fmt.Errorf("margin %s leaves no printable area", cfg.Margin)
		}
	}
	return nil
}

func marginInches(cfg types.PDFConfig) float64 {
	if cfg.Margin == "" {
		return 0
	}
	m, err := ParseLength(cfg.Margin)
	if err != nil {
		return 0
	}
	return m
}
