package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies failures returned by the services.
type ErrorCode string

const (
	CodeBadRequest      ErrorCode = "BAD_REQUEST"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	CodeForbidden       ErrorCode = "FORBIDDEN"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError carries a client-safe message and the underlying cause, if any.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError with the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus maps the error code to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(msg string) *AppError   { return &AppError{Code: CodeBadRequest, Message: msg} }
func Unauthorized(msg string) *AppError { return &AppError{Code: CodeUnauthorized, Message: msg} }
func Forbidden(msg string) *AppError    { return &AppError{Code: CodeForbidden, Message: msg} }
func NotFound(msg string) *AppError     { return &AppError{Code: CodeNotFound, Message: msg} }
func Conflict(msg string) *AppError     { return &AppError{Code: CodeConflict, Message: msg} }

// Internal wraps an unexpected failure behind a generic message.
func Internal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Cause: cause}
}

// Sentinels for errors.Is comparisons.
var (
	ErrBadRequest   = &AppError{Code: CodeBadRequest}
	ErrUnauthorized = &AppError{Code: CodeUnauthorized}
	ErrForbidden    = &AppError{Code: CodeForbidden}
	ErrNotFound     = &AppError{Code: CodeNotFound}
	ErrConflict     = &AppError{Code: CodeConflict}
	ErrInternal     = &AppError{Code: CodeInternal}
)

// AsAppError returns err as an AppError, treating anything else as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Something went wrong", err)
}
