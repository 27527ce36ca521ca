package main

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/speedometer/internal/config"
	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
	"codeberg.org/mutker/speedometer/internal/logger"
	"codeberg.org/mutker/speedometer/internal/pid"
	"codeberg.org/mutker/speedometer/internal/render"
	"codeberg.org/mutker/speedometer/internal/source"
	"codeberg.org/mutker/speedometer/internal/trace"
)

func runWatch(ctx context.Context, args []string) error {
	fs := config.Flags("watch")
	cfg, err := load("watch", fs, args)
	if err != nil {
		return err
	}

	gcfg, err := gaugeConfig(cfg)
	if err != nil {
		return err
	}
	if gcfg.Perpetual {
		logger.Warn().Msg("Perpetual mode is ignored while following a source")
		gcfg.Perpetual = false
	}

	p, err := painter(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release renderer")
		}
	}()

	guard := pid.New("", cfg.Render.Output)
	if err := guard.Write(); err != nil {
		return err
	}
	defer func() {
		if err := guard.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	kind, err := source.ParseKind(cfg.Source.Kind)
	if err != nil {
		return err
	}
	src, err := source.New(kind, source.Options{
		Value:  cfg.Source.Value,
		Device: cfg.Source.Device,
		Metric: cfg.Source.Metric,
		Logger: logger.Default(),
	})
	if err != nil {
		return err
	}
	defer src.Close()

	rec, err := trace.NewService(traceConfig(cfg), logger.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close trace recorder")
		}
	}()

	sched := driver.NewTickerScheduler(cfg.Driver.FrameRate, nil)
	defer sched.Close()
	d := driver.New(sched, driverOptions(cfg)...)
	defer d.Stop()

	w := newFrameWriter(p, rec, layout(cfg), cfg.Render.Output, src.Name())

	logger.Info().
		Str("source", src.Name()).
		Dur("interval", cfg.Source.Interval).
		Str("output", cfg.Render.Output).
		Bool("trace", cfg.Trace.Enabled).
		Msg("Watching source")

	return follow(ctx, d, src, w, gcfg, cfg.Source.Interval)
}

// follow runs the frame writer alongside the poll loop. The writer stops
// with the loop, whether ctx ended or the loop failed.
func follow(ctx context.Context, d *driver.Driver, src source.Source, w *frameWriter, gcfg gauge.Config, interval time.Duration) error {
	unsubscribe := d.Subscribe(w.offer)
	defer unsubscribe()

	wctx, stop := context.WithCancel(ctx)
	defer stop()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		w.run(wctx)
	}()

	err := loop(ctx, d, src, w, gcfg, interval)
	stop()
	<-writerDone

	return err
}

// loop polls src every interval and retargets the driver at each reading.
func loop(ctx context.Context, d *driver.Driver, src source.Source, w *frameWriter, gcfg gauge.Config, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	target := gcfg
	first := true

	poll := func() error {
		v, err := src.Read(ctx)
		if err != nil {
			return err
		}
		w.setReading(v)

		if !first && gauge.Clamp(v) == target.ClampedEnd() {
			return nil
		}

		next := gcfg
		if !first {
			next.StartValue = d.State().DisplayPercent
		}
		next.EndValue = v
		first = false
		target = next

		logger.Debug().
			Float64("reading", v).
			Float64("from", next.ClampedStart()).
			Msg("Retargeting gauge")
		d.Start(next)

		return nil
	}

	if err := poll(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := poll(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn().Err(err).Str("source", src.Name()).Msg("Failed to read source")
			}
		}
	}
}

// frameWriter writes the newest published frame to disk and records it.
// Frames arriving while a write is in progress are coalesced.
type frameWriter struct {
	painter  *render.Painter
	recorder trace.Recorder
	layout   geometry.Layout
	output   string
	source   string

	frames chan driver.Frame

	mu      sync.Mutex
	reading float64
}

func newFrameWriter(p *render.Painter, rec trace.Recorder, l geometry.Layout, output, source string) *frameWriter {
	return &frameWriter{
		painter:  p,
		recorder: rec,
		layout:   l,
		output:   output,
		source:   source,
		frames:   make(chan driver.Frame, 1),
	}
}

func (w *frameWriter) setReading(v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reading = v
}

func (w *frameWriter) offer(f driver.Frame) {
	select {
	case w.frames <- f:
	default:
		select {
		case <-w.frames:
		default:
		}
		select {
		case w.frames <- f:
		default:
		}
	}
}

func (w *frameWriter) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Persist whatever the last frame was.
			select {
			case f := <-w.frames:
				w.write(f)
			default:
			}
			return
		case f := <-w.frames:
			w.write(f)
		}
	}
}

func (w *frameWriter) write(f driver.Frame) {
	s := render.NewSnapshot(f, w.layout)
	if err := w.painter.WriteFile(w.output, s); err != nil {
		logger.Error().Err(err).Str("output", w.output).Msg("Failed to write frame")
	}

	w.mu.Lock()
	reading := w.reading
	w.mu.Unlock()

	// A fresh context so the final frame is recorded after cancellation.
	err := w.recorder.Record(context.Background(), &trace.Sample{
		Timestamp:      time.Now(),
		Run:            f.Run,
		Source:         w.source,
		Reading:        reading,
		DisplayPercent: s.DisplayPercent,
		NeedleAngleDeg: s.NeedleAngleDeg,
		IsAnimating:    f.IsAnimating,
		Perpetual:      f.Perpetual,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record frame")
	}
}
