// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrConflict            = errors.New("conflict")
	ErrConcurrencyConflict = errors.New("concurrent modification")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrRateLimited         = errors.New("rate limited")
	ErrUnavailable         = errors.New("service unavailable")
)

const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodePartialFailure      = "PARTIAL_FAILURE"
	CodeInternal            = "INTERNAL_ERROR"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeTokenRevoked        = "TOKEN_REVOKED"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnavailable         = "SERVICE_UNAVAILABLE"
)

// AppError is an error that already knows how it is presented to clients.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
	Details    any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// PartialFailureError reports a multi-step operation that stopped after
// some steps had already been committed.
type PartialFailureError struct {
	Step      string
	Completed []string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf(
		"partial failure at %q after [%s]: %v",
		e.Step,
		strings.Join(e.Completed, ", "),
		e.Err,
	)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func NewPartialFailure(step string, completed []string, err error) error {
	return &PartialFailureError{
		Step:      step,
		Completed: append([]string(nil), completed...),
		Err:       err,
	}
}

func ValidationError(message string, details any) *AppError {
	e := NewAppError(ErrInvalidInput, message, http.StatusBadRequest, CodeValidationFailed)
	e.Details = details
	return e
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, CodeUnauthorized)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, CodeForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		CodeNotFound,
	)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrConflict, message, http.StatusConflict, CodeConflict)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already exists",
		http.StatusConflict,
		CodeConflict,
	)
}

func ConcurrencyError(resource string) *AppError {
	return NewAppError(
		ErrConcurrencyConflict,
		resource+" was modified concurrently, reload and retry",
		http.StatusConflict,
		CodeConcurrencyConflict,
	)
}

// RateLimitedError tells the client how many whole seconds to wait.
func RateLimitedError(retryAfterSeconds int) *AppError {
	e := NewAppError(
		ErrRateLimited,
		fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfterSeconds),
		http.StatusTooManyRequests,
		CodeRateLimited,
	)
	e.Details = map[string]int{"retry_after_seconds": retryAfterSeconds}
	return e
}

func UnavailableError(err error, message string) *AppError {
	return NewAppError(err, message, http.StatusServiceUnavailable, CodeUnavailable)
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token has expired", http.StatusUnauthorized, CodeTokenExpired)
}

func TokenRevokedError() *AppError {
	return NewAppError(ErrTokenRevoked, "token has been revoked", http.StatusUnauthorized, CodeTokenRevoked)
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "token is invalid", http.StatusUnauthorized, CodeTokenInvalid)
}

func InternalError(err error) *AppError {
	return NewAppError(
		err,
		"an unexpected error occurred",
		http.StatusInternalServerError,
		CodeInternal,
	)
}

// FromError maps any error returned by a service onto the public error
// taxonomy. A partial failure takes precedence over whatever caused it.
// Errors that match no known kind become INTERNAL_ERROR.
func FromError(err error) *AppError {
	var partial *PartialFailureError
	if errors.As(err, &partial) {
		e := NewAppError(
			err,
			fmt.Sprintf("operation partially completed: %s failed", partial.Step),
			http.StatusMultiStatus,
			CodePartialFailure,
		)
		e.Details = map[string]any{
			"failed_step": partial.Step,
			"completed":   partial.Completed,
		}
		return e
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return ValidationError("invalid input", nil)
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("")
	case errors.Is(err, ErrNotFound):
		return NotFoundError("resource")
	case errors.Is(err, ErrConcurrencyConflict):
		return ConcurrencyError("resource")
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateKey):
		return ConflictError("resource already exists")
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenRevoked):
		return TokenRevokedError()
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidError()
	}

	return InternalError(err)
}
