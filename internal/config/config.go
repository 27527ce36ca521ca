// Package config loads speedometer settings from defaults, an optional TOML
// file, SPEEDOMETER_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix = "SPEEDOMETER"
	DefaultLogLevel  = "info"
	configEnv        = "CONFIG"
)

type Config struct {
	Gauge    GaugeConfig  `mapstructure:"gauge"`
	Driver   DriverConfig `mapstructure:"driver"`
	Layout   LayoutConfig `mapstructure:"layout"`
	Render   RenderConfig `mapstructure:"render"`
	Source   SourceConfig `mapstructure:"source"`
	Trace    TraceConfig  `mapstructure:"trace"`
	LogLevel string       `mapstructure:"log_level"`
}

type GaugeConfig struct {
	Start     float64 `mapstructure:"start"`
	End       float64 `mapstructure:"end"`
	Type      string  `mapstructure:"type"`
	Perpetual bool    `mapstructure:"perpetual"`
	Label     string  `mapstructure:"label"`
	SubLabel  string  `mapstructure:"sublabel"`
}

type DriverConfig struct {
	Period    time.Duration `mapstructure:"period"`
	FrameRate int           `mapstructure:"fps"`
}

type LayoutConfig struct {
	Width     float64 `mapstructure:"width"`
	Padding   float64 `mapstructure:"padding"`
	Stroke    float64 `mapstructure:"stroke"`
	Overshoot float64 `mapstructure:"overshoot"`
	Droop     float64 `mapstructure:"droop"`
}

type RenderConfig struct {
	Gradient string `mapstructure:"gradient"`
	Output   string `mapstructure:"output"`
	Format   string `mapstructure:"format"`
	// Every writes every Nth frame of a headless run; 0 writes the last only.
	Every int `mapstructure:"every"`
}

type SourceConfig struct {
	Kind     string        `mapstructure:"kind"`
	Interval time.Duration `mapstructure:"interval"`
	Value    float64       `mapstructure:"value"`
	Device   int           `mapstructure:"device"`
	Metric   string        `mapstructure:"metric"`
}

type TraceConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	DBPath       string        `mapstructure:"db"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"start":     "gauge.start",
	"end":       "gauge.end",
	"type":      "gauge.type",
	"perpetual": "gauge.perpetual",
	"label":     "gauge.label",
	"sublabel":  "gauge.sublabel",
	"period":    "driver.period",
	"fps":       "driver.fps",
	"width":     "layout.width",
	"droop":     "layout.droop",
	"gradient":  "render.gradient",
	"output":    "render.output",
	"format":    "render.format",
	"every":     "render.every",
	"source":    "source.kind",
	"interval":  "source.interval",
	"value":     "source.value",
	"device":    "source.device",
	"metric":    "source.metric",
	"trace":     "trace.enabled",
	"trace-db":  "trace.db",
	"log-level": "log_level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gauge.start", 0.0)
	v.SetDefault("gauge.end", 0.0)
	v.SetDefault("gauge.type", string(gauge.TypeFree))
	v.SetDefault("gauge.perpetual", false)
	v.SetDefault("gauge.label", "")
	v.SetDefault("gauge.sublabel", "")

	v.SetDefault("driver.period", 5200*time.Millisecond)
	v.SetDefault("driver.fps", 60)

	v.SetDefault("layout.width", 240.0)
	v.SetDefault("layout.padding", 8.0)
	v.SetDefault("layout.stroke", 18.0)
	v.SetDefault("layout.overshoot", 6.0)
	v.SetDefault("layout.droop", 14.0)

	v.SetDefault("render.gradient", "auto")
	v.SetDefault("render.output", "speedometer.png")
	v.SetDefault("render.format", "")
	v.SetDefault("render.every", 0)

	v.SetDefault("source.kind", "static")
	v.SetDefault("source.interval", 2*time.Second)
	v.SetDefault("source.value", 0.0)
	v.SetDefault("source.device", 0)
	v.SetDefault("source.metric", "utilization")

	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.db", "speedometer-trace.db")
	v.SetDefault("trace.batch_size", 64)
	v.SetDefault("trace.batch_timeout", 2*time.Second)

	v.SetDefault("log_level", DefaultLogLevel)
}

// Flags returns a flag set carrying every configuration flag.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.String("config", "", "Path to a TOML configuration file")
	fs.Float64("start", 0, "Value the gauge starts from")
	fs.Float64("end", 0, "Value the gauge settles on")
	fs.String("type", string(gauge.TypeFree), "Gauge type: free or pro")
	fs.Bool("perpetual", false, "Sway between start and end instead of settling")
	fs.String("label", "", "Caption below the dial")
	fs.String("sublabel", "", "Secondary caption")
	fs.Duration("period", 5200*time.Millisecond, "Period of the perpetual sway")
	fs.Int("fps", 60, "Frame rate of the driver")
	fs.Float64("width", 240, "Canvas width")
	fs.Float64("droop", 14, "Degrees the arc ends hang below horizontal")
	fs.String("gradient", "auto", "Gradient mode: auto, sweep or linear")
	fs.StringP("output", "o", "speedometer.png", "Output file")
	fs.String("format", "", "Output format: png or svg (default from extension)")
	fs.Int("every", 0, "Write every Nth frame of a headless run")
	fs.String("source", "static", "Value source: static, cpu, memory or gpu")
	fs.Duration("interval", 2*time.Second, "Interval between source readings")
	fs.Float64("value", 0, "Reading of the static source")
	fs.Int("device", 0, "GPU index")
	fs.String("metric", "utilization", "GPU metric: utilization, memory, fan or temperature")
	fs.Bool("trace", false, "Record published frames to SQLite")
	fs.String("trace-db", "speedometer-trace.db", "Trace database path")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warn or error")

	return fs
}

// Load parses args against fs and merges every configuration source.
// A nil fs uses Flags("speedometer").
func Load(fs *pflag.FlagSet, args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	if fs == nil {
		fs = Flags("speedometer")
	}
	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	path := o.configPath
	if f := fs.Lookup("config"); f != nil && f.Changed {
		path = f.Value.String()
	}
	if path == "" {
		path = os.Getenv(o.envPrefix + "_" + configEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field that cannot be absorbed by clamping.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if _, err := gauge.ParseType(c.Gauge.Type); err != nil {
		return err
	}
	if c.Driver.FrameRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidFrameRate, c.Driver.FrameRate)
	}
	if c.Driver.Period <= 0 {
		return errFactory.WithData(errors.ErrInvalidPeriod, c.Driver.Period.String())
	}
	if c.Layout.Width <= 0 || c.Layout.Padding < 0 || c.Layout.Stroke < 0 ||
		c.Layout.Overshoot < 0 || c.Layout.Droop < 0 || c.Layout.Droop >= 90 {
		return errFactory.WithData(errors.ErrInvalidLayout, c.Layout)
	}

	switch strings.ToLower(c.Render.Gradient) {
	case "", "auto", "sweep", "linear":
	default:
		return errFactory.WithData(errors.ErrInvalidGradientMode, c.Render.Gradient)
	}
	switch strings.ToLower(c.Render.Format) {
	case "", "png", "svg":
	default:
		return errFactory.WithData(errors.ErrInvalidFormat, c.Render.Format)
	}
	if c.Render.Every < 0 {
		return errFactory.WithData(errors.ErrInvalidArgument, c.Render.Every)
	}

	if c.Source.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Source.Interval.String())
	}

	if c.Trace.Enabled && c.Trace.DBPath == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "trace database path is empty")
	}

	return nil
}
