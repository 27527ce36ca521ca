// Package gauge holds the input model of a speedometer gauge: the
// construction parameters, value clamping and the per-type defaults
// (captions and color ramp) shared by every renderer.
package gauge

import (
	"math"
	"strconv"
	"strings"

	"codeberg.org/mutker/speedometer/internal/errors"
)

const (
	MinPercent = 0
	MaxPercent = 100
)

// Type selects a color ramp and the default caption.
type Type string

const (
	TypeFree Type = "free"
	TypePro  Type = "pro"
)

// ParseType maps a configured name onto a Type
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeFree:
		return TypeFree, nil
	case TypePro:
		return TypePro, nil
	default:
		return "", errors.New().WithData(errors.ErrInvalidGaugeType, s)
	}
}

func (t Type) String() string {
	return string(t)
}

// Config is the immutable input of one render cycle.
type Config struct {
	StartValue float64
	EndValue   float64
	Type       Type
	Perpetual  bool
	Label      string
	SubLabel   string
}

// Clamp restricts v to [0,100]; NaN becomes 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return MinPercent
	case v < MinPercent:
		return MinPercent
	case v > MaxPercent:
		return MaxPercent
	default:
		return v
	}
}

func (c Config) ClampedStart() float64 {
	return Clamp(c.StartValue)
}

func (c Config) ClampedEnd() float64 {
	return Clamp(c.EndValue)
}

// Bounds returns the clamped (start, end) pair.
func (c Config) Bounds() (float64, float64) {
	return c.ClampedStart(), c.ClampedEnd()
}

// Caption returns the primary label, falling back to the type default.
func (c Config) Caption() string {
	if c.Label != "" {
		return c.Label
	}
	return DefaultLabel(c.Type)
}

// DefaultLabel returns the caption used when no label is configured.
func DefaultLabel(t Type) string {
	if t == TypePro {
		return "Most Pro users"
	}
	return "Your score"
}

// FormatPercent renders a progress value the way the dial prints it.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(math.Round(Clamp(p)), 'f', 0, 64) + "%"
}
