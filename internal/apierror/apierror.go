// Package apierror defines the typed errors returned by services and
// rendered by the HTTP layer.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error with a stable code and an HTTP status.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Status  int       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so callers can write errors.Is(err, apierror.Forbidden("")).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: code.StatusCode()}
}

func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *APIError {
	return newError(ErrUnauthorized, message)
}

func Forbidden(message string) *APIError {
	return newError(ErrForbidden, message)
}

func Conflict(message string) *APIError {
	return newError(ErrConflict, message)
}

func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, message)
}

func InvalidCredentials() *APIError {
	return newError(ErrInvalidCredentials, "invalid email or password")
}

func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return newError(ErrRateLimited, message)
}

func InternalError(message string) *APIError {
	return newError(ErrInternalError, message)
}

// ValidationError reports a rejected input field.
func ValidationError(field, message string) *APIError {
	e := newError(ErrValidation, message)
	e.Field = field
	return e
}

// From unwraps err into an APIError. Anything untyped becomes a generic
// INTERNAL_ERROR so internal details never reach the client.
func From(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return InternalError("internal server error")
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Status
}
