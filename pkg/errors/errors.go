// Package errors defines the platform's sentinel errors and the AppError
// wrapper that carries an HTTP status alongside a message. Store lookups
// never produce errors; absence is reported in-band. These errors cover the
// service layer around the store.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrIdempotencyConflict = errors.New("idempotency key already used")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrInternal            = errors.New("internal error")
	ErrTimeout             = errors.New("operation timed out")
	ErrUnavailable         = errors.New("service unavailable")
)

// AppError wraps a sentinel error with a human-readable message and the HTTP
// status the handler should emit.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError around a sentinel.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf creates an AppError with a formatted message.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status a handler should return.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIdempotencyConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
