// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields for account-keyed entities.
// Registry entities (assets, disputes, time-locks) carry their own
// ledger-assigned integer identifiers instead.
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the identifier when the caller did not.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Enums

// Role is the capability held by an account. Moderator doubles as the
// arbitrator capability for dispute resolution.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleNone      Role = "none"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

type FundingStatus string

const (
	FundingStatusPending   FundingStatus = "pending"
	FundingStatusCompleted FundingStatus = "completed"
	FundingStatusFailed    FundingStatus = "failed"
	FundingStatusRefunded  FundingStatus = "refunded"
)

// Event types recorded in the ledger event log.
type EventType string

const (
	EventAssetCreated      EventType = "asset_created"
	EventAssetUpdated      EventType = "asset_updated"
	EventAssetLicensed     EventType = "asset_licensed"
	EventLicenseRenewed    EventType = "license_renewed"
	EventLicenseRevoked    EventType = "license_revoked"
	EventAssetTransferred  EventType = "asset_transferred"
	EventRoyaltyPaid       EventType = "royalty_paid"
	EventShareAdded        EventType = "share_added"
	EventDisputeOpened     EventType = "dispute_opened"
	EventDisputeResolved   EventType = "dispute_resolved"
	EventDisputeVoted      EventType = "dispute_voted"
	EventTimeLockCreated   EventType = "timelock_created"
	EventEmergencyWithdraw EventType = "emergency_withdraw"
	EventPaused            EventType = "paused"
	EventUnpaused          EventType = "unpaused"
	EventAccountFunded     EventType = "account_funded"
	EventFundingRefunded   EventType = "funding_refunded"
)

// Sequence names owned by the ledger store.
const (
	SeqAssetID   = "asset_id"
	SeqDisputeID = "dispute_id"
)
