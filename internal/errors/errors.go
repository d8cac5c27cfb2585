// Package errors provides custom error types for the Homeledger API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Bank errors.
var (
	ErrBankNotLinked     = &AppError{Code: "BANK_NOT_LINKED", Message: "No bank is linked to this user", StatusCode: http.StatusNotFound}
	ErrBankAlreadyLinked = &AppError{Code: "BANK_ALREADY_LINKED", Message: "A bank is already linked to this user", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Remote aggregator errors. The aggregator is a third-party collaborator;
// its failures surface as 502s so callers can tell them apart from our own.
var (
	ErrRemoteValidation = &AppError{Code: "REMOTE_VALIDATION", Message: "Remote API returned a malformed response", StatusCode: http.StatusBadGateway}
	ErrRemoteTransport  = &AppError{Code: "REMOTE_TRANSPORT", Message: "Failed to reach the remote API", StatusCode: http.StatusBadGateway}
)

// Sync errors. A sync aborts on the first failure; pages committed before the
// failure are kept, which is safe because ingestion is idempotent.
var (
	ErrSyncIncomplete = &AppError{Code: "SYNC_INCOMPLETE", Message: "Transaction sync aborted before reaching local data", StatusCode: http.StatusBadGateway}
	ErrStoreConflict  = &AppError{Code: "STORE_CONFLICT", Message: "A storage constraint was violated", StatusCode: http.StatusConflict}
)
