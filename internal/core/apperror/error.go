// Package apperror provides structured error handling for the console.
// Every error a handler surfaces to the operator must be an AppError so the
// error middleware can decide between an error page and a redirect.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal           = "INTERNAL_ERROR"
	CodeBackend            = "BACKEND_ERROR"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Authentication and authorization errors (401, 403)
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeForbidden      = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the console.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable, operator-displayable description
	Message string `json:"message"`

	// Details contains additional context (field errors, backend status, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (never rendered)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal error (hides details from the operator)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewSessionExpired is returned when the backend rejected the session token.
// The session has already been torn down when this error is produced.
func NewSessionExpired() *AppError {
	return &AppError{
		Code:       CodeSessionExpired,
		Message:    "Tu sesión ha expirado. Inicia sesión nuevamente.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewBackend wraps a non-success reply from the rental backend.
// The backend status is kept in details; the console answers 502.
func NewBackend(status int, message string) *AppError {
	return &AppError{
		Code:       CodeBackend,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"backend_status": status},
	}
}

// NewBackendUnavailable is returned when the backend cannot be reached at all.
func NewBackendUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeBackendUnavailable,
		Message:    "No se pudo conectar con el servidor",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsSessionExpired checks if error is CodeSessionExpired
func IsSessionExpired(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeSessionExpired
	}
	return false
}

// RequiresLogin reports whether the operator must be sent back to the login view.
func RequiresLogin(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeSessionExpired || appErr.Code == CodeUnauthorized
	}
	return false
}
