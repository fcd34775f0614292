// internal/models/timelock.go
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeLock gates a sensitive operation behind a cooldown. The fingerprint
// covers the operation's intent parameters only, never the wall clock, so a
// lock created ahead of time matches the transfer it was created for. Each
// fingerprint executes at most once.
type TimeLock struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Fingerprint string    `json:"fingerprint" gorm:"size:64;uniqueIndex;not null"`
	ReleaseTime time.Time `json:"release_time" gorm:"not null"`
	Executed    bool      `json:"executed" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Released reports whether the cooldown has elapsed.
func (t *TimeLock) Released(now time.Time) bool {
	return !now.Before(t.ReleaseTime)
}

// TransferFingerprint derives the time-lock key for a pending ownership
// transfer from its intent parameters.
func TransferFingerprint(assetID int64, newOwner uuid.UUID) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("transfer|%d|%s", assetID, newOwner)))
	return hex.EncodeToString(sum[:])
}
