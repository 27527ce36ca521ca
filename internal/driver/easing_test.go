package driver_test

import (
	"math"
	"testing"
	"time"

	"codeberg.org/mutker/speedometer/internal/driver"
	"github.com/stretchr/testify/assert"
)

func TestEaseEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, driver.Ease(0))
	assert.Equal(t, 1.0, driver.Ease(1))
	assert.Equal(t, 0.0, driver.Ease(-1))
	assert.Equal(t, 1.0, driver.Ease(2))
}

func TestEaseStaysInUnitInterval(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		v := driver.Ease(float64(i) / 1000)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestEaseIsFrontLoaded(t *testing.T) {
	// Half of the time covers well over half of the distance.
	assert.Greater(t, driver.Ease(0.5), 0.7)
}

func TestPlanOneShotBoost(t *testing.T) {
	p := driver.PlanOneShot(0, 54)
	assert.Equal(t, 1.0, p.Sign)
	assert.Equal(t, 6.0, p.Boost)
	assert.Equal(t, 6.0, p.BoostedStart)
	assert.Equal(t, time.Duration(48*24)*time.Millisecond, p.Duration)

	small := driver.PlanOneShot(10, 20)
	assert.InDelta(t, 1.2, small.Boost, 1e-9)
	assert.InDelta(t, 11.2, small.BoostedStart, 1e-9)
}

func TestPlanOneShotReversed(t *testing.T) {
	p := driver.PlanOneShot(80, 20)
	assert.Equal(t, -1.0, p.Sign)
	assert.Equal(t, 6.0, p.Boost)
	assert.Equal(t, 74.0, p.BoostedStart)

	v, done := p.At(p.Duration)
	assert.True(t, done)
	assert.Equal(t, 20.0, v)
}

func TestPlanOneShotClampsInput(t *testing.T) {
	p := driver.PlanOneShot(math.NaN(), 250)
	assert.Equal(t, 0.0, p.From)
	assert.Equal(t, 100.0, p.To)
}

func TestDurationBounds(t *testing.T) {
	// 0 -> 1: boosted start 0.12, remaining 0.88 points, below the floor.
	assert.Equal(t, 180*time.Millisecond, driver.PlanOneShot(0, 1).Duration)

	// 0 -> 100: boosted start 6, remaining 94 points, 2256ms.
	assert.Equal(t, 2256*time.Millisecond, driver.PlanOneShot(0, 100).Duration)

	// Equal bounds still take the floor duration.
	assert.Equal(t, 180*time.Millisecond, driver.PlanOneShot(40, 40).Duration)

	assert.Equal(t, 2600*time.Millisecond, driver.DurationFor(500))
}

func TestDurationMonotonic(t *testing.T) {
	prev := time.Duration(0)
	for delta := 0.0; delta <= 150; delta += 0.5 {
		d := driver.DurationFor(delta)
		assert.GreaterOrEqual(t, d, prev, "delta %v", delta)
		assert.GreaterOrEqual(t, d, 180*time.Millisecond)
		assert.LessOrEqual(t, d, 2600*time.Millisecond)
		prev = d
	}
}

func TestOneShotEnvelope(t *testing.T) {
	p := driver.PlanOneShot(0, 54)
	for ms := 0; ms <= int(p.Duration/time.Millisecond)+50; ms += 4 {
		v, _ := p.At(time.Duration(ms) * time.Millisecond)
		assert.GreaterOrEqual(t, v, -3.0)
		assert.LessOrEqual(t, v, 57.0)
	}
}

func TestSwayPlan(t *testing.T) {
	s := driver.PlanSway(70, 30, 0)
	assert.Equal(t, 30.0, s.Min)
	assert.Equal(t, 70.0, s.Max)
	assert.Equal(t, 50.0, s.Center)
	assert.Equal(t, 20.0, s.Amplitude)
	assert.Equal(t, driver.DefaultPeriod, s.Period)

	assert.InDelta(t, 50, s.At(0), 1e-9)
	assert.InDelta(t, 70, s.At(s.Period/4), 1e-9)
	assert.InDelta(t, 30, s.At(3*s.Period/4), 1e-9)
	assert.InDelta(t, 50, s.At(s.Period), 1e-9)
}
