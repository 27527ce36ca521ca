// Package trace records the frames a gauge publishes in watch mode to a
// SQLite database, so a session can be inspected after the fact.
package trace

import (
	"context"
	"time"
)

// Recorder accepts samples for storage.
type Recorder interface {
	Record(ctx context.Context, sample *Sample) error
	Close() error
}

// Reader returns stored samples, newest first.
type Reader interface {
	Samples(ctx context.Context, limit int) ([]Sample, error)
}

// Repository is the storage behind a recorder.
type Repository interface {
	Recorder
	Reader
}

// Sample is one published frame together with the reading that drove it.
type Sample struct {
	Timestamp      time.Time
	Run            uint64
	Source         string
	Reading        float64
	DisplayPercent float64
	NeedleAngleDeg float64
	IsAnimating    bool
	Perpetual      bool
}
