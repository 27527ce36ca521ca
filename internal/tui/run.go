package tui

import (
	"context"

	"codeberg.org/mutker/speedometer/internal/driver"
	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/gauge"
	"codeberg.org/mutker/speedometer/internal/geometry"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the preview until the user quits or ctx is canceled.
func Run(ctx context.Context, d *driver.Driver, cfg gauge.Config, l geometry.Layout) error {
	m := New(d, cfg, l)
	defer m.unsubscribe()
	defer d.Stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		// A canceled context is a normal shutdown.
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.New().Wrap(errors.ErrPreviewFailed, err)
	}

	return nil
}
