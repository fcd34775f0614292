// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type PlatformSetting struct {
	BaseModel
	Category    string    `json:"category" gorm:"size:50;not null;index"`
	Key         string    `json:"key" gorm:"size:100;not null;index"`
	Value       JSONB     `json:"value" gorm:"type:jsonb;not null"`
	DataType    string    `json:"data_type" gorm:"size:20;not null"`
	Description string    `json:"description" gorm:"type:text"`
	UpdatedBy   uuid.UUID `json:"updated_by" gorm:"type:uuid;not null"`
}

// UpgradeNote is an admin-authored annotation in the registry's upgrade
// history.
type UpgradeNote struct {
	BaseModel
	Version     string    `json:"version" gorm:"size:50;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	AuthorID    uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`

	Author Account `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// LedgerEvent is the append-only notification log. A row is written in the
// same transaction as the mutation it records, so observers only ever see
// events for committed operations.
type LedgerEvent struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Type      EventType  `json:"type" gorm:"type:varchar(40);not null;index"`
	ActorID   *uuid.UUID `json:"actor_id" gorm:"type:uuid;index"`
	AssetID   *int64     `json:"asset_id" gorm:"index"`
	Payload   JSONB      `json:"payload" gorm:"type:jsonb"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

// Sequence is a ledger-owned monotonic counter. Next holds the value the next
// allocation returns; increments commit with the enclosing transaction, so a
// failed operation never consumes an identifier.
type Sequence struct {
	Name string `json:"name" gorm:"primaryKey;size:50"`
	Next int64  `json:"next" gorm:"not null;default:0"`
}

// AccountOpCount is the per-account mutating-operation counter consulted by
// the safety guard. The counter is monotonic and never resets.
type AccountOpCount struct {
	AccountID uuid.UUID `json:"account_id" gorm:"type:uuid;primaryKey"`
	Count     int64     `json:"count" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}
