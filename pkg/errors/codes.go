package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string identifier for a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeOK      ErrorCode = "OK"
	ErrCodeUnknown ErrorCode = "COMMON_000"

	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_003"
	ErrCodeValidation    ErrorCode = "COMMON_004"
	ErrCodeSerialization ErrorCode = "COMMON_005"
	ErrCodeCacheError    ErrorCode = "COMMON_006"
	ErrCodeTimeout       ErrorCode = "COMMON_007"
)

// Project configuration error codes.
const (
	// ErrCodeProjectUnknown is returned when a project name does not match any
	// loaded project configuration.
	ErrCodeProjectUnknown ErrorCode = "PRJ_001"

	// ErrCodeProjectConfigInvalid is returned when a project configuration is
	// missing required keys or carries values that cannot be interpreted.
	ErrCodeProjectConfigInvalid ErrorCode = "PRJ_002"
)

// Tabular data error codes.
const (
	// ErrCodeColumnNotFound is returned when a required column (most commonly
	// the capacity column) cannot be located in a scenario file.
	ErrCodeColumnNotFound ErrorCode = "DATA_001"

	// ErrCodeUnsupportedFormat is returned for scenario files whose extension
	// is not handled by the configured readers.
	ErrCodeUnsupportedFormat ErrorCode = "DATA_002"

	// ErrCodeReadFailure is returned when a scenario file exists but cannot
	// be parsed.
	ErrCodeReadFailure ErrorCode = "DATA_003"
)

// Map and title building error codes.
const (
	// ErrCodeSignalInvalid is returned when a serialized map request cannot
	// be unpacked or fails validation.
	ErrCodeSignalInvalid ErrorCode = "MAP_001"

	// ErrCodeFigureBuild is returned when figure assembly fails for a reason
	// other than bad input.
	ErrCodeFigureBuild ErrorCode = "MAP_002"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeValidation:    http.StatusUnprocessableEntity,
	ErrCodeSerialization: http.StatusInternalServerError,
	ErrCodeCacheError:    http.StatusInternalServerError,
	ErrCodeTimeout:       http.StatusGatewayTimeout,

	ErrCodeProjectUnknown:       http.StatusNotFound,
	ErrCodeProjectConfigInvalid: http.StatusUnprocessableEntity,

	ErrCodeColumnNotFound:    http.StatusUnprocessableEntity,
	ErrCodeUnsupportedFormat: http.StatusUnsupportedMediaType,
	ErrCodeReadFailure:       http.StatusInternalServerError,

	ErrCodeSignalInvalid: http.StatusBadRequest,
	ErrCodeFigureBuild:   http.StatusInternalServerError,
}

// ErrorCodeMessage maps error codes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:      "internal server error",
	ErrCodeBadRequest:    "bad request",
	ErrCodeNotFound:      "resource not found",
	ErrCodeValidation:    "validation failed",
	ErrCodeSerialization: "serialization failed",
	ErrCodeCacheError:    "cache error",
	ErrCodeTimeout:       "request timeout",

	ErrCodeProjectUnknown:       "project not found",
	ErrCodeProjectConfigInvalid: "invalid project configuration",

	ErrCodeColumnNotFound:    "column not found",
	ErrCodeUnsupportedFormat: "unsupported file format",
	ErrCodeReadFailure:       "failed to read scenario file",

	ErrCodeSignalInvalid: "invalid map signal",
	ErrCodeFigureBuild:   "figure assembly failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode, e.g. "PRJ" for
// ErrCodeProjectUnknown.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
