package apperr

import (
	"errors"
	"net/http"
	"time"
)

// Codes are the machine-readable "error" values in JSON error bodies.
const (
	CodeInternal        = "internal_error"
	CodeBadRequest      = "bad_request"
	CodeValidation      = "validation_failed"
	CodeUnknownControl  = "unknown_control"
	CodeUnknownCheckbox = "unknown_checkbox"
	CodeNotFound        = "not_found"
	CodeRateLimited     = "rate_limited"
	CodeShuttingDown    = "shutting_down"
	CodeUnavailable     = "storage_unavailable"
)

// Error is an error with an HTTP rendering. Cause is logged, never sent.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Cause      error

	// Field names the offending input for validation failures.
	Field string

	// RetryAfter and Reason are set on rate limit rejections.
	RetryAfter time.Duration
	Reason     string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func newError(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, StatusCode: status}
}

func BadRequest(code, message string) *Error {
	return newError(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *Error {
	return newError(http.StatusNotFound, code, message)
}

// Validation rejects a well-formed request whose content is unusable.
func Validation(field, message string) *Error {
	e := newError(http.StatusUnprocessableEntity, CodeValidation, message)
	e.Field = field
	return e
}

func Internal(code, message string, cause error) *Error {
	e := newError(http.StatusInternalServerError, code, message)
	e.Cause = cause
	return e
}

func ServiceUnavailable(code, message string) *Error {
	return newError(http.StatusServiceUnavailable, code, message)
}

func TooManyRequests(code, message string, retryAfter time.Duration, reason string) *Error {
	e := newError(http.StatusTooManyRequests, code, message)
	e.RetryAfter = retryAfter
	e.Reason = reason
	return e
}

// AsError returns the *Error in err's chain, or nil.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
