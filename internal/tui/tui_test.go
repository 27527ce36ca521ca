package tui_test

import (
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
	"codeberg.org/mutker/speedometer/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	sched *driver.ManualScheduler
	drv   *driver.Driver
	model tui.Model
	cmd   tea.Cmd
}

func start(t *testing.T, cfg gauge.Config) *harness {
	t.Helper()

	clock := driver.NewManualClock(time.Unix(0, 0))
	sched := driver.NewManualScheduler(clock)
	d := driver.New(sched, driver.WithClock(clock))

	m := tui.New(d, cfg, geometry.DefaultLayout())
	h := &harness{sched: sched, drv: d, model: m, cmd: m.Init()}
	require.NotNil(t, h.cmd)
	h.pump(t)

	return h
}

// pump delivers the pending frame to the model.
func (h *harness) pump(t *testing.T) {
	t.Helper()

	msg := h.cmd()
	next, cmd := h.model.Update(msg)
	h.model = next.(tui.Model)
	h.cmd = cmd
}

func (h *harness) key(t *testing.T, msg tea.KeyMsg) tea.Cmd {
	t.Helper()

	next, cmd := h.model.Update(msg)
	h.model = next.(tui.Model)
	return cmd
}

func (h *harness) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 500 && h.sched.Step(16*time.Millisecond) > 0; i++ {
	}
	h.pump(t)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewFollowsFrames(t *testing.T) {
	h := start(t, gauge.Config{StartValue: 0, EndValue: 100, Label: "Throughput"})
	assert.Equal(t, 6.0, h.model.Frame().DisplayPercent, "boosted start")

	h.settle(t)
	assert.Equal(t, 100.0, h.model.Frame().DisplayPercent)

	view := h.model.View()
	assert.Contains(t, view, "100%")
	assert.Contains(t, view, "Throughput")
	assert.Contains(t, view, "one-shot")
	assert.Contains(t, view, "█")
}

func TestViewEmptyGauge(t *testing.T) {
	clock := driver.NewManualClock(time.Unix(0, 0))
	d := driver.New(driver.NewManualScheduler(clock), driver.WithClock(clock))
	m := tui.New(d, gauge.Config{}, geometry.DefaultLayout())

	view := m.View()
	assert.Contains(t, view, "0%")
	assert.Contains(t, view, "Your score")
	assert.NotContains(t, view, "█")
	assert.Contains(t, view, "░")
	assert.Contains(t, view, "●")
}

func TestTogglePerpetual(t *testing.T) {
	h := start(t, gauge.Config{StartValue: 20, EndValue: 60})

	h.key(t, runes("p"))
	assert.True(t, h.model.Config().Perpetual)
	assert.True(t, h.drv.State().Perpetual)
	assert.Contains(t, h.model.View(), "perpetual")

	h.key(t, runes("p"))
	assert.False(t, h.drv.State().Perpetual)
}

func TestRetarget(t *testing.T) {
	h := start(t, gauge.Config{StartValue: 0, EndValue: 50})
	h.settle(t)

	h.key(t, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 55.0, h.model.Config().EndValue)
	assert.Equal(t, 50.0, h.model.Config().StartValue, "continues from the needle")
	assert.True(t, h.drv.State().IsAnimating)

	h.settle(t)
	assert.Equal(t, 55.0, h.model.Frame().DisplayPercent)

	h.key(t, tea.KeyMsg{Type: tea.KeyLeft})
	h.key(t, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 45.0, h.model.Config().EndValue)
}

func TestRetargetStopsAtBounds(t *testing.T) {
	h := start(t, gauge.Config{StartValue: 0, EndValue: 100})
	h.settle(t)
	run := h.drv.State().Run

	h.key(t, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 100.0, h.model.Config().EndValue)
	assert.Equal(t, run, h.drv.State().Run)
}

func TestReplay(t *testing.T) {
	h := start(t, gauge.Config{StartValue: 0, EndValue: 40})
	h.settle(t)
	run := h.drv.State().Run

	h.key(t, runes("r"))
	state := h.drv.State()
	assert.NotEqual(t, run, state.Run)
	assert.True(t, state.IsAnimating)
}

func TestQuit(t *testing.T) {
	h := start(t, gauge.Config{StartValue: 30, EndValue: 70, Perpetual: true})

	cmd := h.key(t, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, h.drv.State().Active)
}

func TestWindowResize(t *testing.T) {
	h := start(t, gauge.Config{EndValue: 10})

	next, _ := h.model.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	view := next.(tui.Model).View()

	assert.Len(t, strings.Split(view, "\n"), 60)
}
