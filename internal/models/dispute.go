// internal/models/dispute.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute is a flagged disagreement over an asset. Dispute IDs are monotonic
// across the whole registry, not per asset. The vote tally is informational
// only; resolution happens exclusively through the arbitrator capability.
type Dispute struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	AssetID     int64     `json:"asset_id" gorm:"not null;index"`
	Initiator   uuid.UUID `json:"initiator" gorm:"type:uuid;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Resolved    bool      `json:"resolved" gorm:"not null;default:false"`
	VoteCount   int       `json:"vote_count" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	InitiatorAccount Account `json:"initiator_account,omitempty" gorm:"foreignKey:Initiator"`
}

// DisputeVote records one account's vote on a dispute; one vote per account.
type DisputeVote struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	DisputeID int64     `json:"dispute_id" gorm:"not null;uniqueIndex:idx_dispute_voter"`
	Voter     uuid.UUID `json:"voter" gorm:"type:uuid;not null;uniqueIndex:idx_dispute_voter"`
	CreatedAt time.Time `json:"created_at"`
}
