package main

import (
	"context"
	"time"

	"codeberg.org/mutker/speedometer/internal/config"
	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/logger"
	"codeberg.org/mutker/speedometer/internal/render"
)

// runRender drives the gauge on a manual clock, one frame per 1/fps, until
// a one-shot run settles or a perpetual run completes one period.
func runRender(ctx context.Context, args []string) error {
	fs := config.Flags("render")
	cfg, err := load("render", fs, args)
	if err != nil {
		return err
	}

	gcfg, err := gaugeConfig(cfg)
	if err != nil {
		return err
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
	l := layout(cfg)

	clock := driver.NewManualClock(time.Now())
	sched := driver.NewManualScheduler(clock)
	d := driver.New(sched, append(driverOptions(cfg), driver.WithClock(clock))...)

	var (
		last     driver.Frame
		frames   int
		written  int
		writeErr error
	)
	d.Subscribe(func(f driver.Frame) {
		last = f
		if cfg.Render.Every > 0 && frames%cfg.Render.Every == 0 && writeErr == nil {
			writeErr = p.WriteFile(framePath(cfg.Render.Output, frames), render.NewSnapshot(f, l))
			written++
		}
		frames++
	})

	d.Start(gcfg)

	step := time.Second / time.Duration(cfg.Driver.FrameRate)
	var elapsed time.Duration
	for sched.Pending() > 0 {
		if err := ctx.Err(); err != nil {
			d.Stop()
			return errors.New().Wrap(errors.ErrRenderCanceled, err)
		}
		if gcfg.Perpetual && elapsed >= cfg.Driver.Period {
			d.Stop()
			break
		}

		sched.Step(step)
		elapsed += step

		if writeErr != nil {
			d.Stop()
			return writeErr
		}
	}

	if err := p.WriteFile(cfg.Render.Output, render.NewSnapshot(last, l)); err != nil {
		return err
	}

	logger.Info().
		Str("output", cfg.Render.Output).
		Float64("percent", last.DisplayPercent).
		Int("frames", frames).
		Int("frames_written", written).
		Dur("elapsed", elapsed).
		Msg("Gauge rendered")

	return nil
}
