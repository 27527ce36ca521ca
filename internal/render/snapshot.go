// Package render turns driver frames into the published output of a gauge
// and paints it. A Snapshot is the output contract consumed by renderers:
// clamped percentage, needle angle, arc geometry, progress and whether
// style-level transitions must be suppressed. Renderers only paint; the
// choice between sweep and linear gradients is a paint technique selected
// per render from the renderer's capabilities.
package render

import (
	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
)

// Snapshot is what the core publishes at every tick.
type Snapshot struct {
	Run              uint64
	DisplayPercent   float64
	NeedleAngleDeg   float64
	Arc              geometry.Arc
	ProgressFraction float64
	IsAnimating      bool
	Perpetual        bool
	// SuppressTransitions is set while code-driven motion is active, so
	// style-level transitions never fight it.
	SuppressTransitions bool

	Type        gauge.Type
	Caption     string
	SubLabel    string
	PercentText string

	Layout   geometry.Layout
	Geometry geometry.Geometry
}

// NewSnapshot maps a driver frame through the geometry of l.
func NewSnapshot(f driver.Frame, l geometry.Layout) Snapshot {
	g := l.Map(f.DisplayPercent)

	return Snapshot{
		Run:                 f.Run,
		DisplayPercent:      g.Percent,
		NeedleAngleDeg:      g.NeedleAngleDeg,
		Arc:                 g.Track,
		ProgressFraction:    g.Progress,
		IsAnimating:         f.IsAnimating,
		Perpetual:           f.Perpetual,
		SuppressTransitions: f.IsAnimating || f.Perpetual,
		Type:                f.Config.Type,
		Caption:             f.Config.Caption(),
		SubLabel:            f.Config.SubLabel,
		PercentText:         gauge.FormatPercent(g.Progress),
		Layout:              l,
		Geometry:            g,
	}
}

// Static builds the snapshot of a gauge resting at its end value.
func Static(cfg gauge.Config, l geometry.Layout) Snapshot {
	return NewSnapshot(driver.Frame{
		DisplayPercent: cfg.ClampedEnd(),
		Config:         cfg,
	}, l)
}
