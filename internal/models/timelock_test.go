// internal/models/timelock_test.go
package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTransferFingerprint(t *testing.T) {
	ownerA := uuid.New()
	ownerB := uuid.New()

	// Deterministic for the same intent parameters.
	assert.Equal(t, TransferFingerprint(1, ownerA), TransferFingerprint(1, ownerA))

	// Distinct per asset and per destination.
	assert.NotEqual(t, TransferFingerprint(1, ownerA), TransferFingerprint(2, ownerA))
	assert.NotEqual(t, TransferFingerprint(1, ownerA), TransferFingerprint(1, ownerB))

	// Hex-encoded sha256, fits the 64-char column.
	assert.Len(t, TransferFingerprint(1, ownerA), 64)
}

func TestTimeLockReleased(t *testing.T) {
	release := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	lock := &TimeLock{ReleaseTime: release}

	assert.False(t, lock.Released(release.Add(-time.Second)))
	assert.True(t, lock.Released(release))
	assert.True(t, lock.Released(release.Add(time.Second)))
}
