// Package driver produces the displayed percentage of a gauge over time.
//
// A Driver owns one run at a time. A run is either a one-shot eased
// transition (boosted start, 24ms per point, wobble easing) or a perpetual
// sinusoidal sway. Runs advance one frame per Scheduler callback and
// publish a Frame to every subscriber after each state write.
//
// Only the active run writes state. Starting a new run cancels the pending
// frame of the previous one first, and every callback carries its run id so
// a frame that was already dequeued when the run ended cannot write.
package driver

import (
	"sync"
	"time"

	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/logger"
)

// Frame is what a driver publishes after every state write.
type Frame struct {
	Run            uint64
	DisplayPercent float64
	IsAnimating    bool
	Perpetual      bool
	Elapsed        time.Duration
	// Done is set on the last frame of a one-shot run.
	Done   bool
	Config gauge.Config
}

// State is a snapshot of the driver's animation state.
type State struct {
	Run            uint64
	DisplayPercent float64
	IsAnimating    bool
	Perpetual      bool
	Active         bool
	PhaseStart     time.Time
	Handle         FrameHandle
}

type run struct {
	id         uint64
	cfg        gauge.Config
	perpetual  bool
	oneShot    OneShot
	sway       Sway
	phaseStart time.Time
	handle     FrameHandle
	finished   bool
}

// Driver is the value-driving state machine of one gauge instance.
type Driver struct {
	mu    sync.Mutex
	pubMu sync.Mutex

	sched  Scheduler
	clock  Clock
	log    logger.Logger
	period time.Duration

	gen     uint64
	run     *run
	display float64
	animate bool

	subs    map[int]func(Frame)
	nextSub int
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithPeriod sets the full sway cycle of perpetual runs.
func WithPeriod(p time.Duration) Option {
	return func(d *Driver) {
		if p > 0 {
			d.period = p
		}
	}
}

// WithLogger sets the logger used for run lifecycle events.
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		d.log = l.With("driver")
	}
}

// New creates a driver ticking on sched.
func New(sched Scheduler, opts ...Option) *Driver {
	d := &Driver{
		sched:  sched,
		clock:  SystemClock(),
		log:    logger.Nop(),
		period: DefaultPeriod,
		subs:   make(map[int]func(Frame)),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Subscribe registers fn for every published frame and returns a function
// removing it. fn runs on the goroutine that wrote the state and must not
// call Start or Stop synchronously.
func (d *Driver) Subscribe(fn func(Frame)) func() {
	d.pubMu.Lock()
	defer d.pubMu.Unlock()

	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn

	return func() {
		d.pubMu.Lock()
		defer d.pubMu.Unlock()
		delete(d.subs, id)
	}
}

// Start applies cfg. A new run replaces the current one when the mode
// flips or the clamped bounds change; otherwise only the captions are
// updated and the current run continues untouched.
func (d *Driver) Start(cfg gauge.Config) {
	d.mu.Lock()

	if d.run != nil && !needsRestart(d.run, cfg) {
		d.run.cfg = cfg
		d.mu.Unlock()
		return
	}

	if d.run != nil {
		d.sched.CancelFrame(d.run.handle)
		d.run.handle = 0
	}

	now := d.clock.Now()
	d.gen++
	r := &run{
		id:         d.gen,
		cfg:        cfg,
		perpetual:  cfg.Perpetual,
		phaseStart: now,
	}

	var seed float64
	if r.perpetual {
		r.sway = PlanSway(cfg.StartValue, cfg.EndValue, d.period)
		seed = r.sway.Center
		d.animate = false
		d.log.Debug().
			Uint64("run", r.id).
			Float64("min", r.sway.Min).
			Float64("max", r.sway.Max).
			Dur("period", r.sway.Period).
			Msg("Starting sway")
	} else {
		r.oneShot = PlanOneShot(cfg.StartValue, cfg.EndValue)
		seed = r.oneShot.BoostedStart
		d.animate = true
		d.log.Debug().
			Uint64("run", r.id).
			Float64("from", r.oneShot.From).
			Float64("to", r.oneShot.To).
			Float64("boosted_start", r.oneShot.BoostedStart).
			Dur("duration", r.oneShot.Duration).
			Msg("Starting transition")
	}

	d.run = r
	d.display = seed
	r.handle = d.sched.RequestFrame(d.frameFunc(r.id))

	d.publishLocked(Frame{
		Run:            r.id,
		DisplayPercent: gauge.Clamp(seed),
		IsAnimating:    d.animate,
		Perpetual:      r.perpetual,
		Config:         cfg,
	})
}

// Stop cancels the current run. The displayed value is kept.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.run == nil {
		return
	}

	d.sched.CancelFrame(d.run.handle)
	d.log.Debug().Uint64("run", d.run.id).Msg("Run stopped")
	d.run = nil
	d.animate = false
}

// State returns the current animation state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := State{
		DisplayPercent: gauge.Clamp(d.display),
		IsAnimating:    d.animate,
	}
	if d.run != nil {
		s.Run = d.run.id
		s.Perpetual = d.run.perpetual
		s.Active = !d.run.finished
		s.PhaseStart = d.run.phaseStart
		s.Handle = d.run.handle
	}

	return s
}

func (d *Driver) frameFunc(id uint64) FrameFunc {
	return func(now time.Time) {
		d.tick(id, now)
	}
}

func (d *Driver) tick(id uint64, now time.Time) {
	d.mu.Lock()

	r := d.run
	if r == nil || r.id != id || r.finished {
		d.mu.Unlock()
		return
	}

	r.handle = 0
	elapsed := now.Sub(r.phaseStart)
	frame := Frame{
		Run:       r.id,
		Perpetual: r.perpetual,
		Elapsed:   elapsed,
		Config:    r.cfg,
	}

	if r.perpetual {
		d.display = r.sway.At(elapsed)
		r.handle = d.sched.RequestFrame(d.frameFunc(r.id))
	} else {
		value, done := r.oneShot.At(elapsed)
		d.display = value
		if done {
			r.finished = true
			d.animate = false
			frame.Done = true
			d.log.Debug().Uint64("run", r.id).Dur("elapsed", elapsed).Msg("Transition settled")
		} else {
			r.handle = d.sched.RequestFrame(d.frameFunc(r.id))
		}
	}

	frame.DisplayPercent = gauge.Clamp(d.display)
	frame.IsAnimating = d.animate

	d.publishLocked(frame)
}

// publishLocked hands d.mu over to pubMu so frames reach subscribers in
// the order their state writes happened. It unlocks d.mu.
func (d *Driver) publishLocked(f Frame) {
	d.pubMu.Lock()
	d.mu.Unlock()
	defer d.pubMu.Unlock()

	for _, fn := range d.subs {
		fn(f)
	}
}

func needsRestart(r *run, cfg gauge.Config) bool {
	if r.perpetual != cfg.Perpetual {
		return true
	}

	start, end := cfg.Bounds()
	prevStart, prevEnd := r.cfg.Bounds()

	return start != prevStart || end != prevEnd
}
