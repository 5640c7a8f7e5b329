package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	detailed := ErrAccountNotFound.WithDetails("id 7")

	assert.True(t, stderrors.Is(detailed, ErrAccountNotFound))
	assert.True(t, stderrors.Is(fmt.Errorf("load: %w", detailed), ErrAccountNotFound))
	assert.False(t, stderrors.Is(detailed, ErrOrderNotFound))
	assert.Empty(t, ErrAccountNotFound.Details)
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{ErrAccountNotFound, http.StatusNotFound},
		{ErrRateNotFound, http.StatusNotFound},
		{ErrDuplicateRate, http.StatusConflict},
		{ErrInvalidAmount, http.StatusBadRequest},
		{ErrSenderAccountMissing, http.StatusBadRequest},
		{ErrSameAccountTransfer, http.StatusBadRequest},
		{ErrAccountUpdateProhibited, http.StatusMethodNotAllowed},
		{NewAppError(PublishFailed, "failed to publish order"), http.StatusInternalServerError},
		{ErrCannotBeginTransaction, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAppError_Error(t *testing.T) {
	err := NewAppErrorf(InvalidInput, "unknown order status %q", "X")
	assert.Equal(t, `invalid_input: unknown order status "X"`, err.Error())
}
