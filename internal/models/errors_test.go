// internal/models/errors_test.go
package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{
			name:     "plain app error",
			err:      E(KindDisputeActive, "asset is under dispute"),
			expected: KindDisputeActive,
		},
		{
			name:     "formatted app error",
			err:      Ef(KindBatchLimitExceeded, "batch of %d exceeds limit of %d", 25, 20),
			expected: KindBatchLimitExceeded,
		},
		{
			name:     "wrapped foreign error keeps kind",
			err:      Wrap(KindPaymentFailed, "debit failed", errors.New("connection reset")),
			expected: KindPaymentFailed,
		},
		{
			name:     "app error wrapped by fmt.Errorf",
			err:      fmt.Errorf("operation failed: %w", E(KindTimeLockActive, "time-lock not yet released")),
			expected: KindTimeLockActive,
		},
		{
			name:     "foreign error defaults to internal",
			err:      errors.New("something else"),
			expected: KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	err := E(KindUnauthorized, "only the asset owner can update it")
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.False(t, IsKind(err, KindInvalidInput))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(KindNotFound, "asset lookup failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "asset lookup failed")
	assert.Contains(t, err.Error(), "row not found")
}

func TestAppErrorMessageWithoutCause(t *testing.T) {
	err := E(KindPaused, "registry is paused")
	assert.Equal(t, "registry is paused", err.Error())
	assert.Nil(t, err.Unwrap())
}
