package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		err    *APIError
		code   ErrorCode
		status int
	}{
		{NotFound("post"), ErrNotFound, http.StatusNotFound},
		{Unauthorized("no token"), ErrUnauthorized, http.StatusUnauthorized},
		{Forbidden("nope"), ErrForbidden, http.StatusForbidden},
		{Conflict("post already liked"), ErrConflict, http.StatusConflict},
		{ValidationError("deskripsi", "required"), ErrValidation, http.StatusUnprocessableEntity},
		{InvalidCredentials(), ErrInvalidCredentials, http.StatusUnauthorized},
		{RateLimited(""), ErrRateLimited, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "post not found", NotFound("post").Message)
}

func TestFromWrapped(t *testing.T) {
	err := fmt.Errorf("update post: %w", Forbidden("not the owner"))

	got := From(err)
	assert.Equal(t, ErrForbidden, got.Code)
	assert.True(t, IsCode(err, ErrForbidden))
	assert.True(t, errors.Is(err, Forbidden("")))
	assert.False(t, errors.Is(err, NotFound("")))
}

func TestFromUntypedHidesDetails(t *testing.T) {
	got := From(errors.New("pq: connection refused"))

	assert.Equal(t, ErrInternalError, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.NotContains(t, got.Message, "pq")
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusConflict, StatusOf(Conflict("x")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR: too long (field: judul)", ValidationError("judul", "too long").Error())
}
