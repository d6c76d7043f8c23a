package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFoundf("post %d not found", 7)

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))
	assert.Equal(t, "post 7 not found", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	base := NotFound("comment not found")
	wrapped := fmt.Errorf("delete comment: %w", base)

	assert.True(t, Is(wrapped, ErrNotFound))

	var domainErr *Error
	assert.True(t, As(wrapped, &domainErr))
	assert.Equal(t, CodeNotFound, domainErr.Code)
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeInternal, "append row")

	assert.Equal(t, "append row: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}
