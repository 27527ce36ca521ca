package source

import (
	"context"
	"strings"
	"sync"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// GPU metrics.
const (
	MetricUtilization = "utilization"
	MetricMemory      = "memory"
	MetricFan         = "fan"
	MetricTemperature = "temperature"
)

// Device is the part of an NVML device handle the GPU source reads.
type Device interface {
	GetUtilizationRates() (nvml.Utilization, nvml.Return)
	GetFanSpeed() (uint32, nvml.Return)
	GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return)
}

// GPU reads one metric of an NVIDIA device.
type GPU struct {
	device   Device
	metric   string
	shutdown func() error
	mu       sync.Mutex
	closed   bool
	logger   logger.Logger
}

// OpenGPU initializes NVML and opens the device at index.
func OpenGPU(index int, metric string, log logger.Logger) (*GPU, error) {
	errFactory := errors.New()

	metric, err := parseMetric(metric)
	if err != nil {
		return nil, err
	}

	if ret := nvml.Init(); !IsNVMLSuccess(ret) {
		return nil, errFactory.Wrap(ErrGPUInitFailed, newNVMLError(ret))
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		_ = nvml.Shutdown()
		return nil, errFactory.Wrap(ErrGPUDeviceNotFound, newNVMLError(ret))
	}

	if name, ret := device.GetName(); IsNVMLSuccess(ret) {
		log.Info().Str("device", name).Str("metric", metric).Msg("Detected GPU")
	} else {
		log.Warn().Msgf("Failed to get GPU name: %v", nvml.ErrorString(ret))
	}

	return &GPU{
		device: device,
		metric: metric,
		shutdown: func() error {
			if ret := nvml.Shutdown(); !IsNVMLSuccess(ret) {
				return errors.New().Wrap(ErrGPUShutdownFailed, newNVMLError(ret))
			}
			return nil
		},
		logger: log,
	}, nil
}

// NewGPU reads metric from an already opened device.
func NewGPU(device Device, metric string, log logger.Logger) (*GPU, error) {
	metric, err := parseMetric(metric)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	return &GPU{
		device:   device,
		metric:   metric,
		shutdown: func() error { return nil },
		logger:   log,
	}, nil
}

func parseMetric(metric string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(metric)); m {
	case "":
		return MetricUtilization, nil
	case MetricUtilization, MetricMemory, MetricFan, MetricTemperature:
		return m, nil
	default:
		return "", errors.New().WithData(ErrGPUUnknownMetric, metric)
	}
}

func (g *GPU) Name() string { return string(KindGPU) + ":" + g.metric }

func (g *GPU) Read(ctx context.Context) (float64, error) {
	errFactory := errors.New()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return 0, errFactory.New(ErrGPUNotInitialized)
	}

	var (
		value uint32
		ret   nvml.Return
	)

	switch g.metric {
	case MetricUtilization, MetricMemory:
		var util nvml.Utilization
		util, ret = g.device.GetUtilizationRates()
		value = util.Gpu
		if g.metric == MetricMemory {
			value = util.Memory
		}
	case MetricFan:
		value, ret = g.device.GetFanSpeed()
	case MetricTemperature:
		// Degrees Celsius read directly as a percentage of 100°C.
		value, ret = g.device.GetTemperature(nvml.TEMPERATURE_GPU)
	}

	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrGPUReadFailed, newNVMLError(ret)).WithData(g.metric)
	}

	g.logger.Debug().Str("metric", g.metric).Uint32("value", value).Msg("GPU reading")

	return float64(value), nil
}

func (g *GPU) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true

	return g.shutdown()
}
