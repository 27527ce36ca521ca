package render

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/logger"
)

// GradientMode is the configured preference for painting the track.
type GradientMode string

const (
	GradientAuto   GradientMode = "auto"
	GradientSweep  GradientMode = "sweep"
	GradientLinear GradientMode = "linear"
)

func ParseGradientMode(s string) (GradientMode, error) {
	switch m := GradientMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return GradientAuto, nil
	case GradientAuto, GradientSweep, GradientLinear:
		return m, nil
	default:
		return "", errors.New().WithData(errors.ErrInvalidGradientMode, s)
	}
}

// Technique is the paint technique actually used for one render.
type Technique int

const (
	TechniqueLinear Technique = iota
	TechniqueSweep
)

func (t Technique) String() string {
	if t == TechniqueSweep {
		return "sweep"
	}
	return "linear"
}

// Capabilities describes what a renderer can paint.
type Capabilities struct {
	SweepGradient bool
}

// SelectTechnique resolves a mode against capabilities. A sweep request on
// a renderer without sweep support falls back to linear; it is never an
// error.
func SelectTechnique(mode GradientMode, caps Capabilities) Technique {
	if mode == GradientLinear || !caps.SweepGradient {
		return TechniqueLinear
	}
	return TechniqueSweep
}

// Format is an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", errors.New().WithData(errors.ErrInvalidFormat, s)
	}
}

// FormatFromPath picks a format from a file extension, defaulting to PNG.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatPNG
}

// Renderer paints a snapshot with a given technique.
type Renderer interface {
	Format() Format
	Capabilities() Capabilities
	Render(w io.Writer, s Snapshot, t Technique) error
}

// NewRenderer returns the renderer for f.
func NewRenderer(f Format) (Renderer, error) {
	switch f {
	case FormatPNG:
		return NewRaster()
	case FormatSVG:
		return NewSVG(), nil
	default:
		return nil, errors.New().WithData(errors.ErrInvalidFormat, string(f))
	}
}

// Painter binds a renderer to a gradient preference.
type Painter struct {
	renderer Renderer
	mode     GradientMode
	log      logger.Logger
}

func NewPainter(r Renderer, mode GradientMode, log logger.Logger) *Painter {
	if log == nil {
		log = logger.Nop()
	}
	return &Painter{renderer: r, mode: mode, log: log.With("render")}
}

// Technique returns the technique the next render will use.
func (p *Painter) Technique() Technique {
	return SelectTechnique(p.mode, p.renderer.Capabilities())
}

// Paint renders s to w.
func (p *Painter) Paint(w io.Writer, s Snapshot) error {
	t := p.Technique()
	if p.mode == GradientSweep && t != TechniqueSweep {
		p.log.Debug().
			Str("format", string(p.renderer.Format())).
			Msg("Sweep gradient unavailable, using linear fallback")
	}

	if err := p.renderer.Render(w, s, t); err != nil {
		return errors.New().Wrap(errors.ErrRenderFailed, err)
	}

	return nil
}

// Close releases the renderer's resources, such as the raster font.
func (p *Painter) Close() error {
	if c, ok := p.renderer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteFile renders s into path, replacing it atomically.
func (p *Painter) WriteFile(path string, s Snapshot) error {
	errFactory := errors.New()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}
	defer os.Remove(tmp.Name())

	if err := p.Paint(tmp, s); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}

	return nil
}
