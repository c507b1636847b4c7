package apierror

import "net/http"

// ErrorCode is the machine-readable class of an error.
type ErrorCode string

const (
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrConflict           ErrorCode = "CONFLICT"
	ErrValidation         ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest         ErrorCode = "BAD_REQUEST"
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrRateLimited        ErrorCode = "RATE_LIMITED"
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
)

var statusCodeMap = map[ErrorCode]int{
	ErrNotFound:           http.StatusNotFound,
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrConflict:           http.StatusConflict,
	ErrValidation:         http.StatusUnprocessableEntity,
	ErrBadRequest:         http.StatusBadRequest,
	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrRateLimited:        http.StatusTooManyRequests,
	ErrInternalError:      http.StatusInternalServerError,
}

// StatusCode returns the HTTP status for the code.
func (e ErrorCode) StatusCode() int {
	if code, ok := statusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
