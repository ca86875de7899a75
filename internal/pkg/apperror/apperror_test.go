package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := map[Kind]int{
		KindNotFound:          http.StatusNotFound,
		KindConflict:          http.StatusConflict,
		KindInvalidState:      http.StatusBadRequest,
		KindInvalidTransition: http.StatusBadRequest,
		KindOverpayment:       http.StatusBadRequest,
		KindForbidden:         http.StatusForbidden,
		KindUnauthorized:      http.StatusUnauthorized,
		KindTooManyRequests:   http.StatusTooManyRequests,
		KindInternal:          http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.Status(), kind)
	}
}

func TestWithDetailsKeepsIdentity(t *testing.T) {
	base := New(KindConflict, "rooms unavailable")
	err := fmt.Errorf("create: %w", WithDetails(base, map[string]any{"room_ids": []int64{3}}))

	assert.True(t, errors.Is(err, base))
	assert.Equal(t, KindConflict, KindOf(err))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, []int64{3}, appErr.Details["room_ids"])
	assert.Nil(t, base.Details, "base must stay untouched")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}
