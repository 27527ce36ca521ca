package source_test

import (
	"context"
	"testing"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/source"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    source.Kind
		wantErr bool
	}{
		{"", source.KindStatic, false},
		{"CPU", source.KindCPU, false},
		{" memory ", source.KindMemory, false},
		{"gpu", source.KindGPU, false},
		{"disk", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := source.ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewStatic(t *testing.T) {
	src, err := source.New(source.KindStatic, source.Options{Value: 42})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "static", src.Name())
	v, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	src.(*source.Static).Set(130)
	v, err = src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 130.0, v, "sources do not clamp")
}

func TestStaticHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.NewStatic(1).Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := source.New(source.Kind("disk"), source.Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestMemoryReading(t *testing.T) {
	src, err := source.New(source.KindMemory, source.Options{})
	require.NoError(t, err)

	v, err := src.Read(context.Background())
	if err != nil {
		t.Skipf("memory statistics unavailable: %v", err)
	}
	assert.GreaterOrEqual(t, v, 0.0)
	assert.LessOrEqual(t, v, 100.0)
}

type fakeDevice struct {
	util nvml.Utilization
	fan  uint32
	temp uint32
	ret  nvml.Return
}

func (d *fakeDevice) GetUtilizationRates() (nvml.Utilization, nvml.Return) {
	return d.util, d.ret
}

func (d *fakeDevice) GetFanSpeed() (uint32, nvml.Return) {
	return d.fan, d.ret
}

func (d *fakeDevice) GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return) {
	return d.temp, d.ret
}

func TestGPUMetrics(t *testing.T) {
	dev := &fakeDevice{
		util: nvml.Utilization{Gpu: 71, Memory: 23},
		fan:  55,
		temp: 64,
		ret:  nvml.SUCCESS,
	}

	tests := map[string]float64{
		"":                       71,
		source.MetricUtilization: 71,
		source.MetricMemory:      23,
		source.MetricFan:         55,
		source.MetricTemperature: 64,
	}

	for metric, want := range tests {
		g, err := source.NewGPU(dev, metric, nil)
		require.NoError(t, err)

		got, err := g.Read(context.Background())
		require.NoError(t, err, metric)
		assert.Equal(t, want, got, metric)
		require.NoError(t, g.Close())
	}
}

func TestGPUReadFailure(t *testing.T) {
	g, err := source.NewGPU(&fakeDevice{ret: nvml.ERROR_NOT_SUPPORTED}, source.MetricFan, nil)
	require.NoError(t, err)

	_, err = g.Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, source.ErrGPUReadFailed))
}

func TestGPUClosed(t *testing.T) {
	g, err := source.NewGPU(&fakeDevice{ret: nvml.SUCCESS}, "", nil)
	require.NoError(t, err)
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())

	_, err = g.Read(context.Background())
	assert.True(t, errors.HasCode(err, source.ErrGPUNotInitialized))
}

func TestGPUUnknownMetric(t *testing.T) {
	_, err := source.NewGPU(&fakeDevice{}, "clock", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, source.ErrGPUUnknownMetric))
}
