package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"text/template"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
)

const rampID = "speedometer-ramp"

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{
	"num": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"esc": func(s string) string {
		var b bytes.Buffer
		_ = xml.EscapeText(&b, []byte(s))
		return b.String()
	},
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}" role="img" aria-label="{{esc .Snap.PercentText}}">
  <defs>
    <linearGradient id="` + rampID + `" gradientUnits="userSpaceOnUse" x1="{{num .From.X}}" y1="{{num .From.Y}}" x2="{{num .To.X}}" y2="{{num .To.Y}}">
{{- range .Palette.Ramp}}
      <stop offset="{{num .Offset}}" stop-color="{{.Hex}}"/>
{{- end}}
    </linearGradient>
  </defs>
  <path d="{{.Path}}" fill="none" stroke="{{.Palette.Track}}" stroke-width="{{num .Stroke}}" stroke-linecap="round"/>
  <path d="{{.Path}}" pathLength="{{.PathLength}}" fill="none" stroke="url(#` + rampID + `)" stroke-width="{{num .Stroke}}" stroke-linecap="round" stroke-dasharray="{{num .Progress}} {{.PathLength}}"{{if .Hidden}} stroke-opacity="0"{{end}} style="{{.Transition}}"/>
  <g transform="rotate({{num .Snap.NeedleAngleDeg}} {{num .Center.X}} {{num .Center.Y}})" style="{{.Transition}}">
    <line x1="{{num .Center.X}}" y1="{{num .Center.Y}}" x2="{{num .Center.X}}" y2="{{num .NeedleTop}}" stroke="{{.Palette.Needle}}" stroke-width="{{num .NeedleWidth}}" stroke-linecap="round"/>
  </g>
{{- if gt .Hub 0.0}}
  <circle cx="{{num .Center.X}}" cy="{{num .Center.Y}}" r="{{num .Hub}}" fill="{{.Palette.Needle}}"/>
{{- end}}
  <text x="{{num .Center.X}}" y="{{num .PercentY}}" fill="{{.Palette.Text}}" font-family="sans-serif" font-size="28" text-anchor="middle" dominant-baseline="middle">{{esc .Snap.PercentText}}</text>
{{- if .Snap.Caption}}
  <text x="{{num .Center.X}}" y="{{num .CaptionY}}" fill="{{.Palette.Text}}" font-family="sans-serif" font-size="14" text-anchor="middle" dominant-baseline="middle">{{esc .Snap.Caption}}</text>
{{- end}}
{{- if .Snap.SubLabel}}
  <text x="{{num .Center.X}}" y="{{num .SubY}}" fill="{{.Palette.Muted}}" font-family="sans-serif" font-size="11" text-anchor="middle" dominant-baseline="middle">{{esc .Snap.SubLabel}}</text>
{{- end}}
</svg>
`))

// SVG writes snapshots as standalone SVG documents. SVG has no conic
// gradient, so it only paints with the linear technique.
type SVG struct{}

func NewSVG() *SVG { return &SVG{} }

func (*SVG) Format() Format { return FormatSVG }

func (*SVG) Capabilities() Capabilities { return Capabilities{} }

type svgData struct {
	Snap        Snapshot
	Palette     gauge.Palette
	Width       float64
	Height      float64
	Path        string
	PathLength  int
	Progress    float64
	Hidden      bool
	Stroke      float64
	From        geometry.Point
	To          geometry.Point
	Center      geometry.Point
	NeedleTop   float64
	NeedleWidth float64
	Hub         float64
	PercentY    float64
	CaptionY    float64
	SubY        float64
	Transition  string
}

func (*SVG) Render(w io.Writer, s Snapshot, _ Technique) error {
	g := s.Geometry
	labels := labelOrigin(s)

	transition := "transition: transform 0.3s ease, stroke-dasharray 0.3s ease"
	if s.SuppressTransitions {
		transition = "transition: none"
	}

	data := svgData{
		Snap:        s,
		Palette:     gauge.PaletteFor(s.Type),
		Width:       g.Width,
		Height:      g.Height,
		Path:        g.Track.PathData(),
		PathLength:  geometry.PathLength,
		Progress:    g.Progress,
		Hidden:      g.Progress <= 0,
		Stroke:      g.TrackStroke,
		From:        g.Gradient.LinearFrom,
		To:          g.Gradient.LinearTo,
		Center:      g.Track.Center,
		NeedleTop:   g.Track.Center.Y - g.NeedleLength,
		NeedleWidth: max(2, g.TrackStroke/6),
		Hub:         g.HubRadius,
		PercentY:    g.Track.Center.Y - g.Track.Radius*0.38,
		CaptionY:    labels + captionFontSize,
		SubY:        labels + captionFontSize + subFontSize + 8,
		Transition:  transition,
	}

	if err := svgTemplate.Execute(w, data); err != nil {
		return errors.New().Wrap(errors.ErrEncodeFailed, err)
	}

	return nil
}
