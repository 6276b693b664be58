// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Slide summarizes what happened to one fragment during assembly.
type Slide struct {
	// Index is the 1-based slide number.
	Index int `json:"index" yaml:"index"`

	// Source is the path or URL the fragment was fetched from.
	Source string `json:"source" yaml:"source"`

	// Removed counts stripped elements (embeds and interactive-only blocks).
	Removed int `json:"removed" yaml:"removed"`

	// Styles counts the style blocks copied into the wrapper.
	Styles int `json:"styles" yaml:"styles"`

	// ChartScripts counts the chart scripts re-attached for execution.
	ChartScripts int `json:"chart_scripts" yaml:"chart_scripts"`

	// DroppedScripts counts scripts discarded because they do not draw charts
	// or because the chart library was unavailable.
	DroppedScripts int `json:"dropped_scripts" yaml:"dropped_scripts"`
}

// RunStatus is the outcome of an export run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one entry of the export history.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time  `json:"finished_at" yaml:"finished_at"`
	Slides      int        `json:"slides" yaml:"slides"`
	ChartsReady bool       `json:"charts_ready" yaml:"charts_ready"`
	Mode        ExportMode `json:"mode" yaml:"mode"`
	Output      string     `json:"output" yaml:"output"`
	Bytes       int64      `json:"bytes" yaml:"bytes"`
	Status      RunStatus  `json:"status" yaml:"status"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
