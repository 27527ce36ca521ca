package driver

import (
	"math"
	"time"

	"codeberg.org/mutker/speedometer/internal/gauge"
)

const (
	maxInitialBoost = 6.0
	boostFactor     = 0.12
	msPerPoint      = 24.0
	minDurationMs   = 180.0
	maxDurationMs   = 2600.0

	fastStartExponent = 2.1
	wobbleAmplitude   = 0.025
	wobbleFrequency   = 1.25

	// DefaultPeriod is the full sway cycle of perpetual mode.
	DefaultPeriod = 5200 * time.Millisecond
)

// Ease maps t in [0,1] onto [0,1]: a front-loaded curve plus a small
// oscillation whose amplitude decays to zero at t=1.
func Ease(t float64) float64 {
	t = clamp01(t)
	fastStart := 1 - math.Pow(1-t, fastStartExponent)
	wobble := wobbleAmplitude * math.Sin(t*math.Pi*wobbleFrequency) * (1 - t)

	return clamp01(fastStart + wobble)
}

// OneShot is the plan of an eased transition from From to To.
type OneShot struct {
	From         float64
	To           float64
	Sign         float64
	Boost        float64
	BoostedStart float64
	Duration     time.Duration
}

// PlanOneShot clamps both bounds and derives boost and duration.
func PlanOneShot(start, end float64) OneShot {
	from, to := gauge.Clamp(start), gauge.Clamp(end)

	sign := 1.0
	if to < from {
		sign = -1
	}

	boost := math.Min(maxInitialBoost, math.Abs(to-from)*boostFactor)
	boosted := from + sign*boost

	return OneShot{
		From:         from,
		To:           to,
		Sign:         sign,
		Boost:        boost,
		BoostedStart: boosted,
		Duration:     DurationFor(math.Abs(to - boosted)),
	}
}

// DurationFor returns the transition time for a remaining distance in
// percentage points: 24ms per point within [180ms, 2600ms].
func DurationFor(delta float64) time.Duration {
	ms := math.Min(maxDurationMs, math.Max(minDurationMs, math.Abs(delta)*msPerPoint))
	return time.Duration(ms * float64(time.Millisecond))
}

// At returns the unclamped value after elapsed and whether the run is over.
func (p OneShot) At(elapsed time.Duration) (float64, bool) {
	if elapsed < 0 {
		elapsed = 0
	}

	t := math.Min(1, float64(elapsed)/float64(p.Duration))
	if t >= 1 {
		return p.To, true
	}

	return p.BoostedStart + (p.To-p.BoostedStart)*Ease(t), false
}

// Sway is the plan of a perpetual oscillation between two bounds.
type Sway struct {
	Min       float64
	Max       float64
	Center    float64
	Amplitude float64
	Period    time.Duration
}

func PlanSway(start, end float64, period time.Duration) Sway {
	a, b := gauge.Clamp(start), gauge.Clamp(end)
	lo, hi := math.Min(a, b), math.Max(a, b)

	if period <= 0 {
		period = DefaultPeriod
	}

	return Sway{
		Min:       lo,
		Max:       hi,
		Center:    (lo + hi) / 2,
		Amplitude: (hi - lo) / 2,
		Period:    period,
	}
}

func (s Sway) At(elapsed time.Duration) float64 {
	t := float64(elapsed) / float64(s.Period)
	return s.Center + s.Amplitude*math.Sin(t*2*math.Pi)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
