package render

import (
	"io"
	"math"
	"sync"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	percentFontSize = 28
	captionFontSize = 14
	subFontSize     = 11
)

// Raster paints snapshots into PNG images.
type Raster struct {
	source *text.FontSource
	caps   Capabilities
	mu     sync.Mutex
}

func NewRaster() (*Raster, error) {
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrFontLoad, err)
	}

	return &Raster{
		source: source,
		caps:   Capabilities{SweepGradient: probeSweep()},
	}, nil
}

// probeSweep checks that the sweep brush actually varies with angle.
func probeSweep() bool {
	b := gg.NewSweepGradientBrush(0, 0, 0).
		SetEndAngle(math.Pi).
		AddColorStop(0, gg.Hex("#000000")).
		AddColorStop(1, gg.Hex("#ffffff"))

	return b.ColorAt(1, 0.01) != b.ColorAt(-1, 0.01)
}

func (r *Raster) Format() Format { return FormatPNG }

func (r *Raster) Capabilities() Capabilities { return r.caps }

// Close releases the font source.
func (r *Raster) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source.Close()
}

func (r *Raster) Render(w io.Writer, s Snapshot, t Technique) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := s.Geometry
	width := int(math.Ceil(g.Width))
	height := int(math.Ceil(g.Height))
	if width <= 0 || height <= 0 {
		return errors.New().WithMessage(errors.ErrInvalidLayout, "empty canvas")
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()

	palette := gauge.PaletteFor(s.Type)
	c := g.Track.Center
	start := radians(g.Track.StartDeg)

	dc.Clear()
	dc.SetLineWidth(g.TrackStroke)
	dc.SetLineCap(gg.LineCapRound)

	// Track
	dc.SetStrokeBrush(gg.Solid(gg.Hex(palette.Track)))
	dc.ClearPath()
	dc.DrawArc(c.X, c.Y, g.Track.Radius, start, start+radians(g.Track.SweepDeg))
	if err := dc.Stroke(); err != nil {
		return err
	}

	// Progress
	if g.Progress > 0 {
		dc.SetStrokeBrush(rampBrush(s, palette, t))
		dc.ClearPath()
		dc.DrawArc(c.X, c.Y, g.Track.Radius, start, radians(g.ProgressEndDeg))
		if err := dc.Stroke(); err != nil {
			return err
		}
	}

	// Needle
	dc.SetLineWidth(math.Max(2, g.TrackStroke/6))
	dc.SetStrokeBrush(gg.Solid(gg.Hex(palette.Needle)))
	dc.ClearPath()
	dc.DrawLine(c.X, c.Y, g.NeedleTip.X, g.NeedleTip.Y)
	if err := dc.Stroke(); err != nil {
		return err
	}

	if g.HubRadius > 0 {
		dc.SetFillBrush(gg.Solid(gg.Hex(palette.Needle)))
		dc.ClearPath()
		dc.DrawCircle(c.X, c.Y, g.HubRadius)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	r.drawText(dc, s, palette)

	if err := dc.EncodePNG(w); err != nil {
		return errors.New().Wrap(errors.ErrEncodeFailed, err)
	}

	return nil
}

func (r *Raster) drawText(dc *gg.Context, s Snapshot, palette gauge.Palette) {
	g := s.Geometry
	c := g.Track.Center
	labels := labelOrigin(s)

	dc.SetHexColor(palette.Text)
	dc.SetFont(r.source.Face(percentFontSize))
	dc.DrawStringAnchored(s.PercentText, c.X, c.Y-g.Track.Radius*0.38, 0.5, 0.5)

	if s.Caption != "" {
		dc.SetFont(r.source.Face(captionFontSize))
		dc.DrawStringAnchored(s.Caption, c.X, labels+captionFontSize, 0.5, 0.5)
	}
	if s.SubLabel != "" {
		dc.SetHexColor(palette.Muted)
		dc.SetFont(r.source.Face(subFontSize))
		dc.DrawStringAnchored(s.SubLabel, c.X, labels+captionFontSize+subFontSize+8, 0.5, 0.5)
	}
}

func rampBrush(s Snapshot, palette gauge.Palette, t Technique) gg.Brush {
	grad := s.Geometry.Gradient

	if t == TechniqueSweep {
		start := radians(grad.StartDeg)
		b := gg.NewSweepGradientBrush(grad.Center.X, grad.Center.Y, start).
			SetEndAngle(start + radians(grad.SweepDeg))
		for _, stop := range palette.Ramp {
			b.AddColorStop(stop.Offset, gg.Hex(stop.Hex))
		}
		return b
	}

	b := gg.NewLinearGradientBrush(grad.LinearFrom.X, grad.LinearFrom.Y, grad.LinearTo.X, grad.LinearTo.Y)
	for _, stop := range palette.Ramp {
		b.AddColorStop(stop.Offset, gg.Hex(stop.Hex))
	}
	return b
}

// labelOrigin is the top of the caption space below the dial.
func labelOrigin(s Snapshot) float64 {
	return s.Geometry.Height - s.Layout.Padding - s.Layout.LabelSpace
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
