package dto

import "net/http"

// Error code constants, format ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Auth error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Sync error codes
const (
	// ErrCodeStoreInactive is returned when the resolved store is suspended
	ErrCodeStoreInactive = "ERR_STORE_INACTIVE"
	// ErrCodeBatchTooLarge is returned when a sync batch exceeds the record cap
	ErrCodeBatchTooLarge = "ERR_BATCH_TOO_LARGE"
	// ErrCodeEmptyBatch is returned when a sync batch carries no records
	ErrCodeEmptyBatch = "ERR_EMPTY_BATCH"
	// ErrCodeInvalidSyncKind is returned for an unknown sync kind
	ErrCodeInvalidSyncKind = "ERR_INVALID_SYNC_KIND"
)

// Rate limiting and infrastructure error codes
const (
	ErrCodeRateLimited    = "ERR_RATE_LIMITED"
	ErrCodeInfrastructure = "ERR_INFRASTRUCTURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeStoreInactive:   http.StatusForbidden,
	ErrCodeBatchTooLarge:   http.StatusBadRequest,
	ErrCodeEmptyBatch:      http.StatusBadRequest,
	ErrCodeInvalidSyncKind: http.StatusBadRequest,

	ErrCodeRateLimited:    http.StatusTooManyRequests,
	ErrCodeInfrastructure: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not mapped.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to wire error codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"STORE_INACTIVE":      ErrCodeStoreInactive,
	"BATCH_TOO_LARGE":     ErrCodeBatchTooLarge,
	"EMPTY_BATCH":         ErrCodeEmptyBatch,
	"INVALID_SYNC_KIND":   ErrCodeInvalidSyncKind,
	"RATE_LIMITED":        ErrCodeRateLimited,
	"INFRASTRUCTURE":      ErrCodeInfrastructure,
	"INVALID_NAME":        ErrCodeValidation,
	"INVALID_EXTERNAL_ID": ErrCodeValidation,
	"INVALID_PRICE":       ErrCodeValidation,
	"INVALID_QUANTITY":    ErrCodeValidation,
	"ALREADY_ACTIVE":      ErrCodeConflict,
	"ALREADY_INACTIVE":    ErrCodeConflict,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Unknown codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
