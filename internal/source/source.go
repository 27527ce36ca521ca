// Package source reads the live percentage a gauge displays in watch mode.
// Every reading is a raw percentage; clamping into [0,100] is left to the
// gauge.
package source

import (
	"context"
	"strings"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/logger"
)

// Kind selects a source implementation.
type Kind string

const (
	KindStatic Kind = "static"
	KindCPU    Kind = "cpu"
	KindMemory Kind = "memory"
	KindGPU    Kind = "gpu"
)

// Source produces percentage readings.
type Source interface {
	Name() string
	Read(ctx context.Context) (float64, error)
	Close() error
}

// Options configures the source built by New.
type Options struct {
	// Value is the reading of a static source.
	Value float64
	// Device is the GPU index.
	Device int
	// Metric is the GPU metric: utilization, memory, fan or temperature.
	Metric string
	Logger logger.Logger
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindStatic, nil
	case KindStatic, KindCPU, KindMemory, KindGPU:
		return k, nil
	default:
		return "", errors.New().WithData(errors.ErrInvalidArgument, s)
	}
}

// New builds the source of the given kind.
func New(kind Kind, opts Options) (Source, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	switch kind {
	case KindStatic, "":
		return NewStatic(opts.Value), nil
	case KindCPU:
		return NewCPU(), nil
	case KindMemory:
		return NewMemory(), nil
	case KindGPU:
		g, err := OpenGPU(opts.Device, opts.Metric, log.With("gpu"))
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, errors.New().WithData(errors.ErrInvalidArgument, string(kind))
	}
}
