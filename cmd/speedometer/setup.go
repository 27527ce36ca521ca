package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/speedometer/internal/config"
	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
	"codeberg.org/mutker/speedometer/internal/logger"
	"codeberg.org/mutker/speedometer/internal/render"
	"codeberg.org/mutker/speedometer/internal/trace"
	"github.com/spf13/pflag"
)

// load parses args for the named command, loads configuration and
// initializes logging.
func load(name string, fs *pflag.FlagSet, args []string) (*config.Config, error) {
	cfg, err := config.Load(fs, args)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		return nil, err
	}
	logger.Debug().Str("command", name).Msg("Config loaded")

	return cfg, nil
}

func gaugeConfig(cfg *config.Config) (gauge.Config, error) {
	t, err := gauge.ParseType(cfg.Gauge.Type)
	if err != nil {
		return gauge.Config{}, err
	}

	return gauge.Config{
		StartValue: cfg.Gauge.Start,
		EndValue:   cfg.Gauge.End,
		Type:       t,
		Perpetual:  cfg.Gauge.Perpetual,
		Label:      cfg.Gauge.Label,
		SubLabel:   cfg.Gauge.SubLabel,
	}, nil
}

func layout(cfg *config.Config) geometry.Layout {
	l := geometry.DefaultLayout()
	l.Width = cfg.Layout.Width
	l.Padding = cfg.Layout.Padding
	l.TrackStroke = cfg.Layout.Stroke
	l.NeedleOvershoot = cfg.Layout.Overshoot
	l.DroopDeg = cfg.Layout.Droop

	return l
}

func driverOptions(cfg *config.Config) []driver.Option {
	return []driver.Option{
		driver.WithPeriod(cfg.Driver.Period),
		driver.WithLogger(logger.Default()),
	}
}

// painter builds the renderer for the configured output.
func painter(cfg *config.Config) (*render.Painter, error) {
	format := render.FormatFromPath(cfg.Render.Output)
	if cfg.Render.Format != "" {
		f, err := render.ParseFormat(cfg.Render.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	mode, err := render.ParseGradientMode(cfg.Render.Gradient)
	if err != nil {
		return nil, err
	}

	r, err := render.NewRenderer(format)
	if err != nil {
		return nil, err
	}

	p := render.NewPainter(r, mode, logger.Default())
	logger.Debug().
		Str("format", string(format)).
		Str("technique", p.Technique().String()).
		Msg("Renderer ready")

	return p, nil
}

func traceConfig(cfg *config.Config) trace.Config {
	tc := trace.DefaultConfig()
	tc.Enabled = cfg.Trace.Enabled
	tc.DBPath = cfg.Trace.DBPath
	tc.BatchSize = cfg.Trace.BatchSize
	tc.BatchTimeout = cfg.Trace.BatchTimeout

	return tc
}

// framePath numbers a frame file after the output's base name.
func framePath(output string, n int) string {
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s-%04d%s", strings.TrimSuffix(output, ext), n, ext)
}
