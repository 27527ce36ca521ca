package main

import (
	"context"

	"codeberg.org/mutker/speedometer/internal/config"
	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/tui"
)

func runPreview(ctx context.Context, args []string) error {
	fs := config.Flags("preview")
	cfg, err := load("preview", fs, args)
	if err != nil {
		return err
	}

	gcfg, err := gaugeConfig(cfg)
	if err != nil {
		return err
	}

	sched := driver.NewTickerScheduler(cfg.Driver.FrameRate, nil)
	defer sched.Close()

	// The terminal belongs to the preview; driver events stay at debug.
	d := driver.New(sched, driver.WithPeriod(cfg.Driver.Period))

	return tui.Run(ctx, d, gcfg, layout(cfg))
}
