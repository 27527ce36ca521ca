package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"codeberg.org/mutker/speedometer/internal/config"
	"codeberg.org/mutker/speedometer/internal/logger"
	"codeberg.org/mutker/speedometer/internal/trace"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var stdout io.Writer = os.Stdout

func runTrace(ctx context.Context, args []string) error {
	fs := config.Flags("trace")
	limit := fs.Int("limit", 20, "Number of samples to print")

	cfg, err := load("trace", fs, args)
	if err != nil {
		return err
	}

	tc := traceConfig(cfg)
	tc.Enabled = true
	repo, err := trace.NewRepository(tc, logger.Default())
	if err != nil {
		return err
	}
	defer repo.Close()

	samples, err := repo.Samples(ctx, *limit)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		fmt.Fprintf(stdout, "No samples recorded in %s\n", tc.DBPath)
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "RUN", "SOURCE", "READING", "DISPLAY", "NEEDLE", "STATE")
	for _, s := range samples {
		state := "settled"
		switch {
		case s.Perpetual:
			state = "perpetual"
		case s.IsAnimating:
			state = "animating"
		}

		t.Row(
			s.Timestamp.Format("15:04:05.000"),
			strconv.FormatUint(s.Run, 10),
			s.Source,
			strconv.FormatFloat(s.Reading, 'f', 1, 64),
			strconv.FormatFloat(s.DisplayPercent, 'f', 2, 64),
			strconv.FormatFloat(s.NeedleAngleDeg, 'f', 1, 64)+"°",
			state,
		)
	}

	fmt.Fprintln(stdout, t.Render())

	return nil
}
