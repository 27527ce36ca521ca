// Package geometry maps a display percentage onto the drawable parts of a
// drooped semicircular dial: needle angle and tip, track arc endpoints,
// normalized progress length and gradient sweep.
//
// All coordinates are screen coordinates (y grows downward), so an angle
// θ in standard position lands at center + r*(cos θ, sin θ) and angles
// increase clockwise on screen. The functions are pure and total: every
// percentage is clamped and every radius is floored at zero.
package geometry

import (
	"fmt"
	"math"

	"codeberg.org/mutker/speedometer/internal/gauge"
)

// PathLength is the normalized length of the track path. Progress is
// expressed in the same units, so it always ends under the needle tip.
const PathLength = 100

type Point struct {
	X, Y float64
}

// Layout holds the static constants of a dial. Every radius derives from
// Width, so growing the canvas vertically never moves the dial.
type Layout struct {
	Width           float64
	Padding         float64
	TrackStroke     float64
	NeedleOvershoot float64
	DroopDeg        float64
	HubRadius       float64
	// LabelSpace is reserved below the dial for captions.
	LabelSpace float64
}

func DefaultLayout() Layout {
	return Layout{
		Width:           240,
		Padding:         8,
		TrackStroke:     18,
		NeedleOvershoot: 6,
		DroopDeg:        14,
		HubRadius:       7,
		LabelSpace:      44,
	}
}

// HalfSweepDeg is the needle's maximum deflection from vertical.
func (l Layout) HalfSweepDeg() float64 {
	return 90 + l.DroopDeg
}

// SweepDeg is the total angular span of the track.
func (l Layout) SweepDeg() float64 {
	return 2 * l.HalfSweepDeg()
}

// StartDeg is the screen angle of the drooped-left endpoint.
func (l Layout) StartDeg() float64 {
	return 180 - l.DroopDeg
}

// EndDeg is the screen angle of the drooped-right endpoint.
func (l Layout) EndDeg() float64 {
	return l.DroopDeg
}

// OuterRadius is the reach of the needle tip.
func (l Layout) OuterRadius() float64 {
	return math.Max(0, l.Width/2-l.Padding)
}

// TrackRadius is the radius of the track's center line.
func (l Layout) TrackRadius() float64 {
	return math.Max(0, l.OuterRadius()-l.NeedleOvershoot-l.TrackStroke/2)
}

// NeedleLength extends past the outer edge of the track by the overshoot.
func (l Layout) NeedleLength() float64 {
	return l.TrackRadius() + l.TrackStroke/2 + l.NeedleOvershoot
}

// Center is the pivot of the needle.
func (l Layout) Center() Point {
	return Point{X: l.Width / 2, Y: l.Padding + l.OuterRadius()}
}

// Height is the canvas height needed to show the drooped ends, the hub and
// the caption space without clipping. It only grows below Center.
func (l Layout) Height() float64 {
	droop := math.Sin(rad(l.DroopDeg))
	below := math.Max(
		(l.TrackRadius()+l.TrackStroke/2)*droop+l.TrackStroke/2,
		l.NeedleLength()*droop,
	)
	below = math.Max(below, l.HubRadius)

	return l.Center().Y + below + l.LabelSpace + l.Padding
}

// Angle maps percent onto a needle rotation in degrees, measured from
// vertical, clockwise positive: -half at 0 and +half at 100.
func Angle(percent, halfSweepDeg float64) float64 {
	return -halfSweepDeg + percent*(2*halfSweepDeg)/100
}

// PointAt returns center + r*(cos θ, sin θ) for θ in degrees.
func PointAt(center Point, r, deg float64) Point {
	return Point{
		X: center.X + r*math.Cos(rad(deg)),
		Y: center.Y + r*math.Sin(rad(deg)),
	}
}

// Arc is a circular arc described both by angles and by the endpoint
// parameters of an SVG elliptical arc command.
type Arc struct {
	Center   Point
	Radius   float64
	Start    Point
	End      Point
	StartDeg float64
	SweepDeg float64
	LargeArc bool
	Sweep    bool
}

// PathData returns the SVG path of the arc.
func (a Arc) PathData() string {
	return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 %d %d %.2f %.2f",
		a.Start.X, a.Start.Y, a.Radius, a.Radius,
		flag(a.LargeArc), flag(a.Sweep), a.End.X, a.End.Y)
}

// Gradient describes the coloring of the track: an angular sweep starting
// at the drooped-left endpoint, and the linear fallback between endpoints.
type Gradient struct {
	Center     Point
	StartDeg   float64
	SweepDeg   float64
	LinearFrom Point
	LinearTo   Point
}

// Geometry is everything a renderer needs for one frame.
type Geometry struct {
	Percent        float64
	NeedleAngleDeg float64
	NeedleTip      Point
	NeedleLength   float64
	Track          Arc
	// Progress is the dash length over PathLength, equal to Percent.
	Progress float64
	// ProgressEndDeg is the screen angle where the progress stroke stops.
	ProgressEndDeg float64
	Gradient       Gradient
	Width          float64
	Height         float64
	HubRadius      float64
	TrackStroke    float64
}

// Map computes the geometry of percent under l.
func (l Layout) Map(percent float64) Geometry {
	p := gauge.Clamp(percent)
	center := l.Center()
	r := l.TrackRadius()

	track := Arc{
		Center:   center,
		Radius:   r,
		Start:    PointAt(center, r, l.StartDeg()),
		End:      PointAt(center, r, l.EndDeg()),
		StartDeg: l.StartDeg(),
		SweepDeg: l.SweepDeg(),
		LargeArc: true,
		Sweep:    true,
	}

	needle := Angle(p, l.HalfSweepDeg())
	screen := 270 + needle
	length := l.NeedleLength()

	return Geometry{
		Percent:        p,
		NeedleAngleDeg: needle,
		NeedleTip:      PointAt(center, length, screen),
		NeedleLength:   length,
		Track:          track,
		Progress:       p * PathLength / 100,
		ProgressEndDeg: l.StartDeg() + l.SweepDeg()*p/100,
		Gradient: Gradient{
			Center:     center,
			StartDeg:   l.StartDeg(),
			SweepDeg:   l.SweepDeg(),
			LinearFrom: track.Start,
			LinearTo:   track.End,
		},
		Width:       l.Width,
		Height:      l.Height(),
		HubRadius:   l.HubRadius,
		TrackStroke: l.TrackStroke,
	}
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
