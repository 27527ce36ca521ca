package geometry_test

import (
	"math"
	"math/rand"
	"testing"

	"codeberg.org/mutker/speedometer/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestAngle(t *testing.T) {
	assert.Equal(t, -90.0, geometry.Angle(0, 90))
	assert.Equal(t, 90.0, geometry.Angle(100, 90))
	assert.Equal(t, 0.0, geometry.Angle(50, 90))
	assert.Equal(t, -104.0, geometry.Angle(0, 90+14))
	assert.Equal(t, 104.0, geometry.Angle(100, 90+14))
}

func TestDerivedRadii(t *testing.T) {
	l := geometry.DefaultLayout()

	assert.Equal(t, 112.0, l.OuterRadius())
	assert.Equal(t, 97.0, l.TrackRadius())
	assert.Equal(t, 112.0, l.NeedleLength())
	assert.Equal(t, l.TrackRadius()+l.TrackStroke/2+l.NeedleOvershoot, l.NeedleLength())
	assert.Equal(t, geometry.Point{X: 120, Y: 120}, l.Center())
	assert.Equal(t, 104.0, l.HalfSweepDeg())
	assert.Equal(t, 208.0, l.SweepDeg())
}

func TestTrackEndpointsDroop(t *testing.T) {
	l := geometry.DefaultLayout()
	g := l.Map(0)
	c := l.Center()
	r := l.TrackRadius()
	droop := 14 * math.Pi / 180

	assert.InDelta(t, c.X-r*math.Cos(droop), g.Track.Start.X, eps)
	assert.InDelta(t, c.Y+r*math.Sin(droop), g.Track.Start.Y, eps)
	assert.InDelta(t, c.X+r*math.Cos(droop), g.Track.End.X, eps)
	assert.InDelta(t, c.Y+r*math.Sin(droop), g.Track.End.Y, eps)

	// Both ends sit below the horizontal diameter.
	assert.Greater(t, g.Track.Start.Y, c.Y)
	assert.Greater(t, g.Track.End.Y, c.Y)

	assert.True(t, g.Track.LargeArc)
	assert.True(t, g.Track.Sweep)
	assert.Equal(t, "M 25.88 143.47 A 97.00 97.00 0 1 1 214.12 143.47", g.Track.PathData())
}

func TestNeedleTipFollowsArc(t *testing.T) {
	l := geometry.DefaultLayout()
	c := l.Center()

	up := l.Map(50)
	assert.InDelta(t, 0, up.NeedleAngleDeg, eps)
	assert.InDelta(t, c.X, up.NeedleTip.X, eps)
	assert.InDelta(t, c.Y-l.NeedleLength(), up.NeedleTip.Y, eps)

	for _, p := range []float64{0, 100} {
		g := l.Map(p)
		end := g.Track.Start
		if p == 100 {
			end = g.Track.End
		}
		// The tip is collinear with the center and the track endpoint.
		cross := (g.NeedleTip.X-c.X)*(end.Y-c.Y) - (g.NeedleTip.Y-c.Y)*(end.X-c.X)
		assert.InDelta(t, 0, cross, 1e-6, "percent %v", p)
	}
}

func TestProgressMatchesNeedle(t *testing.T) {
	l := geometry.DefaultLayout()

	for _, p := range []float64{0, 12.5, 54, 99, 100} {
		g := l.Map(p)
		assert.Equal(t, p, g.Progress)
		assert.InDelta(t, 270+g.NeedleAngleDeg, g.ProgressEndDeg, eps)
	}
	assert.Equal(t, 100.0, l.Map(250).Progress)
	assert.Equal(t, 0.0, l.Map(math.NaN()).Progress)
}

func TestGradientSweep(t *testing.T) {
	l := geometry.DefaultLayout()
	g := l.Map(30)

	assert.Equal(t, 166.0, g.Gradient.StartDeg)
	assert.Equal(t, 208.0, g.Gradient.SweepDeg)
	assert.Equal(t, g.Track.Start, g.Gradient.LinearFrom)
	assert.Equal(t, g.Track.End, g.Gradient.LinearTo)
	assert.Equal(t, l.Center(), g.Gradient.Center)
}

func TestHeightGrowsDownwardOnly(t *testing.T) {
	flat := geometry.DefaultLayout()
	flat.DroopDeg = 0
	drooped := geometry.DefaultLayout()
	drooped.DroopDeg = 30

	assert.Equal(t, flat.Center(), drooped.Center())
	assert.Equal(t, flat.TrackRadius(), drooped.TrackRadius())
	assert.Greater(t, drooped.Height(), flat.Height())

	g := drooped.Map(0)
	assert.Less(t, g.Track.Start.Y+drooped.TrackStroke/2, g.Height)
	assert.Less(t, g.NeedleTip.Y, g.Height)
}

func TestMapIsTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		l := geometry.Layout{
			Width:           rng.Float64()*800 + 0.01,
			Padding:         rng.Float64() * 50,
			TrackStroke:     rng.Float64() * 60,
			NeedleOvershoot: rng.Float64() * 20,
			DroopDeg:        rng.Float64() * 45,
			HubRadius:       rng.Float64() * 20,
			LabelSpace:      rng.Float64() * 60,
		}
		p := rng.Float64() * 100

		var g geometry.Geometry
		require.NotPanics(t, func() { g = l.Map(p) })

		for _, v := range []float64{
			g.NeedleAngleDeg, g.NeedleTip.X, g.NeedleTip.Y, g.NeedleLength,
			g.Track.Radius, g.Track.Start.X, g.Track.Start.Y, g.Track.End.X, g.Track.End.Y,
			g.Progress, g.Height,
		} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "layout %+v percent %v", l, p)
		}
		assert.GreaterOrEqual(t, g.Track.Radius, 0.0)
		assert.GreaterOrEqual(t, g.Progress, 0.0)
		assert.LessOrEqual(t, g.Progress, 100.0)
	}
}
