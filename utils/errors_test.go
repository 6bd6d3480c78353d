package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{&AppError{Code: CodeTooManyRequests}, http.StatusTooManyRequests},
		{Internal("x", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("duplicate"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: Issue not found.", NotFound("Issue not found.").Error())

	cause := errors.New("connection reset")
	err := Internal("Something went wrong", cause)
	assert.Equal(t, "INTERNAL_ERROR: Something went wrong: connection reset", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAsAppError(t *testing.T) {
	forbidden := Forbidden("no")
	assert.Same(t, forbidden, AsAppError(fmt.Errorf("ctx: %w", forbidden)))

	plain := errors.New("boom")
	got := AsAppError(plain)
	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, plain, got.Cause)
}
