package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110

	// Graph errors (900-999)
	ErrCodeEmptyGraph                  ErrorCode = 900
	ErrCodeCyclicGraph                 ErrorCode = 901
	ErrCodeMissingRequiredNodeCategory ErrorCode = 902
	ErrCodeDanglingConnection          ErrorCode = 903
	ErrCodeMissingParameters           ErrorCode = 904
	ErrCodeDuplicateNode               ErrorCode = 905
	ErrCodeUnknownPort                 ErrorCode = 906
	ErrCodeUnknownNodeType             ErrorCode = 907
	ErrCodeInvalidGraphDocument        ErrorCode = 908
	ErrCodeRenderFailed                ErrorCode = 909

	// Runner errors (1000-1099)
	ErrCodeRunnerFailed      ErrorCode = 1000
	ErrCodeRunnerTimeout     ErrorCode = 1001
	ErrCodeRunnerResultParse ErrorCode = 1002

	// History errors (1100-1199)
	ErrCodeHistoryUnavailable ErrorCode = 1100
	ErrCodeHistoryQueryFailed ErrorCode = 1101
)
