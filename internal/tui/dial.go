package tui

import (
	"fmt"
	"math"
	"strings"

	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
	"github.com/charmbracelet/lipgloss"
)

const (
	glyphTrack    = "░"
	glyphProgress = "█"
	glyphNeedle   = "•"
	glyphHub      = "●"

	// Terminal cells are about twice as tall as they are wide.
	cellAspect = 2.0
)

type cell struct {
	glyph string
	color string
}

// dial rasterizes the geometry of one frame into a grid of cols cells.
func dial(l geometry.Layout, g geometry.Geometry, p gauge.Palette, cols int) [][]cell {
	scale := float64(cols) / l.Width
	yScale := scale / cellAspect
	rows := int(math.Ceil((l.Height() - l.LabelSpace - l.Padding) * yScale))

	c := g.Track.Center
	half := math.Max(g.TrackStroke/2, 0.75/scale)
	needleWidth := 0.6 / yScale
	progressEnd := g.Track.SweepDeg * g.Progress / geometry.PathLength

	grid := make([][]cell, rows)
	for row := range grid {
		grid[row] = make([]cell, cols)
		for col := range grid[row] {
			x := (float64(col) + 0.5) / scale
			y := (float64(row) + 0.5) / yScale
			dx, dy := x-c.X, y-c.Y
			d := math.Hypot(dx, dy)

			switch {
			case g.HubRadius > 0 && d <= math.Max(g.HubRadius, 0.5/yScale):
				grid[row][col] = cell{glyphHub, p.Needle}
			case onSegment(x, y, c, g.NeedleTip, needleWidth):
				grid[row][col] = cell{glyphNeedle, p.Needle}
			case math.Abs(d-g.Track.Radius) <= half:
				rel := relAngle(math.Atan2(dy, dx)*180/math.Pi, g.Track.StartDeg)
				if rel > g.Track.SweepDeg {
					grid[row][col] = cell{" ", ""}
					continue
				}
				if g.Progress > 0 && rel <= progressEnd {
					grid[row][col] = cell{glyphProgress, rampAt(p, rel/g.Track.SweepDeg)}
				} else {
					grid[row][col] = cell{glyphTrack, p.Track}
				}
			default:
				grid[row][col] = cell{" ", ""}
			}
		}
	}

	return grid
}

// renderGrid styles runs of equally colored cells.
func renderGrid(grid [][]cell) string {
	var b strings.Builder

	for i, row := range grid {
		var run strings.Builder
		color := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run.String()))
			}
			run.Reset()
		}

		for _, c := range row {
			if c.color != color {
				flush()
				color = c.color
			}
			run.WriteString(c.glyph)
		}
		flush()

		if i < len(grid)-1 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

func relAngle(deg, start float64) float64 {
	return math.Mod(math.Mod(deg-start, 360)+360, 360)
}

// onSegment reports whether (x, y) lies within w of the segment a-b.
func onSegment(x, y float64, a, b geometry.Point, w float64) bool {
	vx, vy := b.X-a.X, b.Y-a.Y
	length := vx*vx + vy*vy
	if length == 0 {
		return false
	}

	t := ((x-a.X)*vx + (y-a.Y)*vy) / length
	if t < 0 || t > 1 {
		return false
	}

	px, py := a.X+t*vx, a.Y+t*vy
	return math.Hypot(x-px, (y-py)) <= w
}

// rampAt interpolates the palette ramp at t in [0,1].
func rampAt(p gauge.Palette, t float64) string {
	stops := p.Ramp
	if t <= stops[0].Offset {
		return stops[0].Hex
	}

	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			a, b := stops[i-1], stops[i]
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Hex
			}
			return lerpHex(a.Hex, b.Hex, (t-a.Offset)/span)
		}
	}

	return stops[len(stops)-1].Hex
}

func lerpHex(a, b string, t float64) string {
	ar, ag, ab := parseHex(a)
	br, bg, bb := parseHex(b)
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}

	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func parseHex(s string) (r, g, b uint8) {
	_, _ = fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
