package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig    ErrorCode = "invalid_configuration"
	ErrBindFlags        ErrorCode = "bind_flags_failed"
	ErrReadConfig       ErrorCode = "read_config_failed"
	ErrInvalidLogLevel  ErrorCode = "invalid_log_level"
	ErrInvalidFrameRate ErrorCode = "invalid_frame_rate"
	ErrInvalidPeriod    ErrorCode = "invalid_period"
	ErrInvalidLayout    ErrorCode = "invalid_layout"
	ErrInvalidInterval  ErrorCode = "invalid_interval"

	// Gauge errors
	ErrInvalidGaugeType    ErrorCode = "invalid_gauge_type"
	ErrInvalidGradientMode ErrorCode = "invalid_gradient_mode"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Render errors
	ErrRenderFailed   ErrorCode = "render_failed"
	ErrEncodeFailed   ErrorCode = "encode_failed"
	ErrWriteOutput    ErrorCode = "write_output_failed"
	ErrFontLoad       ErrorCode = "font_load_failed"
	ErrInvalidFormat  ErrorCode = "invalid_output_format"
	ErrRenderCanceled ErrorCode = "render_canceled"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"

	// Application errors
	ErrUnknownCommand ErrorCode = "unknown_command"
	ErrPreviewFailed  ErrorCode = "preview_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:            "Internal error occurred",
	ErrInvalidArgument:     "Invalid argument provided",
	ErrUnavailable:         "Service unavailable",
	ErrAlreadyRunning:      "Another instance is already running",
	ErrInvalidConfig:       "Invalid configuration",
	ErrBindFlags:           "Failed to bind flags",
	ErrReadConfig:          "Failed to read config file",
	ErrInvalidLogLevel:     "Invalid log level",
	ErrInvalidFrameRate:    "Invalid frame rate",
	ErrInvalidPeriod:       "Invalid sway period",
	ErrInvalidLayout:       "Invalid gauge layout",
	ErrInvalidInterval:     "Invalid interval value",
	ErrInvalidGaugeType:    "Invalid gauge type",
	ErrInvalidGradientMode: "Invalid gradient mode",
	ErrInitFailed:          "Initialization failed",
	ErrShutdownFailed:      "Shutdown failed",
	ErrRenderFailed:        "Failed to render gauge",
	ErrEncodeFailed:        "Failed to encode image",
	ErrWriteOutput:         "Failed to write output",
	ErrFontLoad:            "Failed to load font",
	ErrInvalidFormat:       "Invalid output format",
	ErrRenderCanceled:      "Render canceled",
	ErrTimeout:             "Operation timed out",
	ErrUnknownCommand:      "Unknown command",
	ErrPreviewFailed:       "Terminal preview failed",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
