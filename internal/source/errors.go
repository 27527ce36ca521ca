package source

import (
	"codeberg.org/mutker/speedometer/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	ErrGPUNotInitialized = errors.ErrorCode("gpu_not_initialized")
	ErrGPUInitFailed     = errors.ErrorCode("gpu_init_failed")
	ErrGPUDeviceNotFound = errors.ErrorCode("gpu_device_not_found")
	ErrGPUShutdownFailed = errors.ErrorCode("gpu_shutdown_failed")
	ErrGPUReadFailed     = errors.ErrorCode("gpu_read_failed")
	ErrGPUUnknownMetric  = errors.ErrorCode("gpu_unknown_metric")
)

// nvmlError represents an NVML-specific error
type nvmlError struct {
	ret nvml.Return
}

func (e nvmlError) Error() string {
	return nvml.ErrorString(e.ret)
}

// newNVMLError creates an error from an NVML return code
func newNVMLError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return &nvmlError{ret: ret}
}

// IsNVMLSuccess checks if a Return value indicates success
func IsNVMLSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}
