package driver

import (
	"sync"
	"time"
)

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// EventKind tells requests and cancellations apart in a scheduler log.
type EventKind int

const (
	EventRequest EventKind = iota
	EventCancel
)

// SchedulerEvent is one entry of a ManualScheduler log.
type SchedulerEvent struct {
	Kind   EventKind
	Handle FrameHandle
}

// ManualScheduler fires frames only on Step. It drives offline renders
// frame by frame without waiting on wall-clock time.
type ManualScheduler struct {
	queue frameQueue
	clock *ManualClock

	mu     sync.Mutex
	events []SchedulerEvent
}

func NewManualScheduler(clock *ManualClock) *ManualScheduler {
	return &ManualScheduler{
		queue: newFrameQueue(),
		clock: clock,
	}
}

func (s *ManualScheduler) RequestFrame(fn FrameFunc) FrameHandle {
	h := s.queue.add(fn)
	s.record(EventRequest, h)
	return h
}

func (s *ManualScheduler) CancelFrame(h FrameHandle) {
	if s.queue.remove(h) {
		s.record(EventCancel, h)
	}
}

// Step advances the clock by d, then fires every callback that was
// pending before the step. It returns how many fired.
func (s *ManualScheduler) Step(d time.Duration) int {
	s.clock.Advance(d)
	now := s.clock.Now()

	fns := s.queue.drain()
	for _, fn := range fns {
		fn(now)
	}

	return len(fns)
}

// Pending returns the number of callbacks waiting for the next step.
func (s *ManualScheduler) Pending() int {
	return s.queue.len()
}

// Events returns a copy of the request/cancel log.
func (s *ManualScheduler) Events() []SchedulerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SchedulerEvent, len(s.events))
	copy(out, s.events)

	return out
}

func (s *ManualScheduler) record(kind EventKind, h FrameHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, SchedulerEvent{Kind: kind, Handle: h})
}
