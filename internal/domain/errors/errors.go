package errors

import (
	"errors"
	"fmt"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeInvalidTransition ErrorType = "invalid_transition"
	ErrorTypeInvalidState      ErrorType = "invalid_state"
	ErrorTypeAlreadyResolved   ErrorType = "already_resolved"
	ErrorTypeConflict          ErrorType = "conflict"
	ErrorTypeDataUnavailable   ErrorType = "data_unavailable"
	ErrorTypeOracleUnavailable ErrorType = "oracle_unavailable"
	ErrorTypeInternal          ErrorType = "internal"
	ErrorTypeUnauthorized      ErrorType = "unauthorized"
	ErrorTypeForbidden         ErrorType = "forbidden"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

// NewInvalidTransitionError reports a bid status change that is not in the
// successor set of the current status.
func NewInvalidTransitionError(from, to string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Code:       "INVALID_TRANSITION",
		Message:    fmt.Sprintf("cannot transition from %s to %s", from, to),
		Retryable:  false,
		StatusCode: 422,
		Details:    map[string]interface{}{"from": from, "to": to},
	}
}

func NewInvalidStateError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidState,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 422,
	}
}

func NewAlreadyResolvedError(resource, status string) *AppError {
	return &AppError{
		Type:       ErrorTypeAlreadyResolved,
		Code:       "ALREADY_RESOLVED",
		Message:    fmt.Sprintf("%s is already terminal in status %s", resource, status),
		Retryable:  false,
		StatusCode: 409,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       "CONFLICT",
		Message:    message,
		Retryable:  true,
		StatusCode: 409,
	}
}

// NewDataUnavailableError wraps an entity store failure. The core never retries
// these itself; the caller owns retry policy.
func NewDataUnavailableError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeDataUnavailable,
		Code:       "DATA_UNAVAILABLE",
		Message:    fmt.Sprintf("store operation %s failed", operation),
		Cause:      cause,
		Retryable:  true,
		StatusCode: 503,
	}
}

func NewOracleUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeOracleUnavailable,
		Code:       "ORACLE_UNAVAILABLE",
		Message:    message,
		Cause:      cause,
		Retryable:  true,
		StatusCode: 502,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		Retryable:  false,
		StatusCode: 401,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
		Retryable:  false,
		StatusCode: 403,
	}
}

// Predefined common errors
var (
	ErrVendorNotFound       = NewNotFoundError("vendor")
	ErrProductNotFound      = NewNotFoundError("product")
	ErrBidNotFound          = NewNotFoundError("bid")
	ErrCounterOfferNotFound = NewNotFoundError("counter offer")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
