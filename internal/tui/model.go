// Package tui hosts a live terminal preview of a gauge. The model
// subscribes to driver frames and redraws the dial as a grid of cells.
package tui

import (
	"strings"

	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultCols = 48
	minCols     = 24
	maxCols     = 96
	endStep     = 5
)

var (
	percentStyle = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// frameMsg carries the latest driver frame into the update loop.
type frameMsg driver.Frame

// Model implements tea.Model for the gauge preview.
type Model struct {
	driver *driver.Driver
	cfg    gauge.Config
	layout geometry.Layout
	frame  driver.Frame

	frames      chan driver.Frame
	unsubscribe func()

	cols   int
	width  int
	height int
}

// New subscribes to d. The first run starts from Init.
func New(d *driver.Driver, cfg gauge.Config, l geometry.Layout) Model {
	frames := make(chan driver.Frame, 1)

	unsubscribe := d.Subscribe(func(f driver.Frame) {
		// Keep only the newest frame; the view never needs history.
		select {
		case frames <- f:
		default:
			select {
			case <-frames:
			default:
			}
			select {
			case frames <- f:
			default:
			}
		}
	})

	return Model{
		driver:      d,
		cfg:         cfg,
		layout:      l,
		frame:       driver.Frame{DisplayPercent: cfg.ClampedStart(), Config: cfg},
		frames:      frames,
		unsubscribe: unsubscribe,
		cols:        defaultCols,
	}
}

func (m Model) Init() tea.Cmd {
	m.driver.Start(m.cfg)
	return m.waitForFrame()
}

func (m Model) waitForFrame() tea.Cmd {
	frames := m.frames
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return nil
		}
		return frameMsg(f)
	}
}

// Config returns the gauge configuration currently applied.
func (m Model) Config() gauge.Config { return m.cfg }

// Frame returns the last frame drawn.
func (m Model) Frame() driver.Frame { return m.frame }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = driver.Frame(msg)
		return m, m.waitForFrame()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.cols = max(minCols, min(maxCols, msg.Width-4))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.driver.Stop()
			m.unsubscribe()
			return m, tea.Quit

		case "p":
			m.cfg.Perpetual = !m.cfg.Perpetual
			m.driver.Start(m.cfg)

		case "left", "h":
			m.retarget(-endStep)

		case "right", "l":
			m.retarget(endStep)

		case "r":
			m.driver.Stop()
			m.driver.Start(m.cfg)
		}
	}

	return m, nil
}

// retarget moves the end value. A one-shot run continues from where the
// needle currently is.
func (m *Model) retarget(delta float64) {
	end := gauge.Clamp(m.cfg.ClampedEnd() + delta)
	if end == m.cfg.ClampedEnd() {
		return
	}

	if !m.cfg.Perpetual {
		m.cfg.StartValue = m.driver.State().DisplayPercent
	}
	m.cfg.EndValue = end
	m.driver.Start(m.cfg)
}

func (m Model) View() string {
	g := m.layout.Map(m.frame.DisplayPercent)
	palette := gauge.PaletteFor(m.cfg.Type)

	lines := []string{
		renderGrid(dial(m.layout, g, palette, m.cols)),
		"",
		center(percentStyle.Foreground(lipgloss.Color(palette.Text)).Render(gauge.FormatPercent(g.Percent)), m.cols),
		center(m.cfg.Caption(), m.cols),
	}
	if m.cfg.SubLabel != "" {
		lines = append(lines, center(lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Muted)).Render(m.cfg.SubLabel), m.cols))
	}

	mode := "one-shot"
	if m.cfg.Perpetual {
		mode = "perpetual"
	}
	lines = append(lines, "", helpStyle.Render("mode: "+mode+" · p toggle · ←/→ end ±5 · r replay · q quit"))

	view := strings.Join(lines, "\n")
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}

	return view
}

func center(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
