// Package errors provides coded errors shared by the speedometer packages.
//
// The gauge engine itself never fails: invalid numeric input is clamped.
// Coded errors surface only at the edges (configuration, value sources,
// trace storage and output encoding).
package errors

// ErrorCode identifies a class of failure
type ErrorCode string

// Error is a coded error carrying an optional message, cause and payload
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
