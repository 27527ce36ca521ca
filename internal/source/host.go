package source

import (
	"context"

	"codeberg.org/mutker/speedometer/internal/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// CPU reports total CPU utilization since the previous read.
type CPU struct{}

func NewCPU() *CPU { return &CPU{} }

func (*CPU) Name() string { return string(KindCPU) }

func (*CPU) Read(ctx context.Context) (float64, error) {
	// A zero interval compares against the previous call.
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrUnavailable, err)
	}
	if len(percents) == 0 {
		return 0, errors.New().WithMessage(errors.ErrUnavailable, "no cpu statistics")
	}

	return percents[0], nil
}

func (*CPU) Close() error { return nil }

// Memory reports the share of physical memory in use.
type Memory struct{}

func NewMemory() *Memory { return &Memory{} }

func (*Memory) Name() string { return string(KindMemory) }

func (*Memory) Read(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrUnavailable, err)
	}

	return vm.UsedPercent, nil
}

func (*Memory) Close() error { return nil }
