package driver

import (
	"sort"
	"sync"
	"time"
)

// FrameHandle identifies one requested frame callback. Zero is never issued.
type FrameHandle uint64

// FrameFunc runs once, on the frame following its request.
type FrameFunc func(now time.Time)

// Scheduler is a "request next frame" primitive. Callbacks of one
// scheduler never run concurrently with each other.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameHandle
	// CancelFrame drops a pending callback. Unknown or already fired
	// handles are ignored.
	CancelFrame(h FrameHandle)
}

// Clock supplies monotonic time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the process clock. time.Now carries a monotonic
// reading, so elapsed-time arithmetic is immune to wall clock jumps.
func SystemClock() Clock {
	return systemClock{}
}

// frameQueue is the pending-callback bookkeeping shared by schedulers.
type frameQueue struct {
	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]FrameFunc
}

func newFrameQueue() frameQueue {
	return frameQueue{pending: make(map[FrameHandle]FrameFunc)}
}

func (q *frameQueue) add(fn FrameFunc) FrameHandle {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.next++
	q.pending[q.next] = fn

	return q.next
}

func (q *frameQueue) remove(h FrameHandle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[h]; !ok {
		return false
	}
	delete(q.pending, h)

	return true
}

// drain takes every callback pending right now, in request order.
func (q *frameQueue) drain() []FrameFunc {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}

	handles := make([]FrameHandle, 0, len(q.pending))
	for h := range q.pending {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	fns := make([]FrameFunc, len(handles))
	for i, h := range handles {
		fns[i] = q.pending[h]
		delete(q.pending, h)
	}

	return fns
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// TickerScheduler approximates a display refresh signal with a fixed
// interval ticker, for hosts that have no frame callback of their own.
type TickerScheduler struct {
	queue    frameQueue
	clock    Clock
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewTickerScheduler starts a scheduler firing fps times per second.
func NewTickerScheduler(fps int, clock Clock) *TickerScheduler {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	if clock == nil {
		clock = SystemClock()
	}

	s := &TickerScheduler{
		queue:    newFrameQueue(),
		clock:    clock,
		interval: time.Second / time.Duration(fps),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.loop()

	return s
}

// DefaultFrameRate is used when no frame rate is configured.
const DefaultFrameRate = 60

func (s *TickerScheduler) RequestFrame(fn FrameFunc) FrameHandle {
	return s.queue.add(fn)
}

func (s *TickerScheduler) CancelFrame(h FrameHandle) {
	s.queue.remove(h)
}

// Interval returns the time between frames.
func (s *TickerScheduler) Interval() time.Duration {
	return s.interval
}

// Close stops the ticker goroutine and waits for an in-flight frame.
func (s *TickerScheduler) Close() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *TickerScheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.clock.Now()
			for _, fn := range s.queue.drain() {
				fn(now)
			}
		}
	}
}
