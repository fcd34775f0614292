// internal/models/license.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// License is the grant of usage rights for one asset to one licensee. The
// (asset, licensee) slot is unique and reused across renewals and re-grants;
// it is never removed from storage.
type License struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	AssetID      int64     `json:"asset_id" gorm:"not null;uniqueIndex:idx_license_slot"`
	Licensee     uuid.UUID `json:"licensee" gorm:"type:uuid;not null;uniqueIndex:idx_license_slot"`
	StartTime    time.Time `json:"start_time" gorm:"not null"`
	DurationSecs int64     `json:"duration_secs" gorm:"not null"`
	Active       bool      `json:"active" gorm:"not null;default:false"`
	Terms        string    `json:"terms" gorm:"type:text"`
	Renewable    bool      `json:"renewable" gorm:"not null;default:false"`
	Transferable bool      `json:"transferable" gorm:"not null;default:false"`
	MaxUsers     int       `json:"max_users" gorm:"not null;default:1"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	LicenseeAccount Account `json:"licensee_account,omitempty" gorm:"foreignKey:Licensee"`
}

// ExpiresAt is the instant the license lapses.
func (l *License) ExpiresAt() time.Time {
	return l.StartTime.Add(time.Duration(l.DurationSecs) * time.Second)
}

// ExpiredAt reports whether the license term has lapsed as of now.
// Inactive licenses are treated as expired.
func (l *License) ExpiredAt(now time.Time) bool {
	if !l.Active {
		return true
	}
	return l.ExpiresAt().Before(now)
}

// LicenseUser is the side table holding a license's authorized sub-users,
// keyed by the license slot plus the sub-account (no embedded sets).
type LicenseUser struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	AssetID   int64     `json:"asset_id" gorm:"not null;uniqueIndex:idx_license_user"`
	Licensee  uuid.UUID `json:"licensee" gorm:"type:uuid;not null;uniqueIndex:idx_license_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_license_user"`
	CreatedAt time.Time `json:"created_at"`
}
