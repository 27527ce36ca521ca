package source

import (
	"context"
	"sync"
)

// Static returns a fixed value until it is changed with Set.
type Static struct {
	mu    sync.RWMutex
	value float64
}

func NewStatic(value float64) *Static {
	return &Static{value: value}
}

func (s *Static) Name() string { return string(KindStatic) }

func (s *Static) Set(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}

func (s *Static) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

func (s *Static) Close() error { return nil }
