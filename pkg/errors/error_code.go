package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 102
	ErrCodeInvalidType          ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidThreshold     ErrorCode = 106
	ErrCodeInvalidStdDev        ErrorCode = 107
	ErrCodeInvalidInterval      ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeHistoricalDataFailed  ErrorCode = 203
	ErrCodeEmptySeries           ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound    ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Parser errors (400-499)
	ErrCodeParseFailed     ErrorCode = 400
	ErrCodeUnknownStrategy ErrorCode = 401

	// Store errors (500-599)
	ErrCodeStoreUnavailable ErrorCode = 500
	ErrCodeStoreConflict    ErrorCode = 501
	ErrCodeStoreCorrupt     ErrorCode = 502

	// Monitor errors (600-699)
	ErrCodeMonitorFetchFailed ErrorCode = 600
	ErrCodeSampleTooSmall     ErrorCode = 601
)
