package trace

import "codeberg.org/mutker/speedometer/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("trace_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("trace_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("trace_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("trace_schema_migration_failed")
	ErrTransactionFailed      = errors.ErrorCode("trace_transaction_failed")

	// Storage Errors
	ErrStorageInit  = errors.ErrInitFailed
	ErrStorageClose = errors.ErrShutdownFailed
	ErrQueryFailed  = errors.ErrorCode("trace_query_failed")

	// Recording Errors
	ErrRecordFailed  = errors.ErrorCode("trace_record_failed")
	ErrInvalidSample = errors.ErrorCode("trace_invalid_sample")
	ErrClosed        = errors.ErrorCode("trace_closed")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
