package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden       = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrStoreInactive   = NewDomainError("STORE_INACTIVE", "Store is not active")
	ErrBatchTooLarge   = NewDomainError("BATCH_TOO_LARGE", "Sync batch exceeds the maximum record count")
	ErrEmptyBatch      = NewDomainError("EMPTY_BATCH", "Sync batch contains no valid records")
	ErrRateLimited     = NewDomainError("RATE_LIMITED", "Too many requests")
	ErrInfrastructure  = NewDomainError("INFRASTRUCTURE", "A backing service is unavailable")
	ErrInvalidSyncKind = NewDomainError("INVALID_SYNC_KIND", "Unknown sync kind")
)
