// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoyaltyPayment records one royalty payment against an asset: the gross
// amount attached by the payer and the royalty portion that was distributed.
type RoyaltyPayment struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	AssetID       int64     `json:"asset_id" gorm:"not null;index"`
	Payer         uuid.UUID `json:"payer" gorm:"type:uuid;not null"`
	GrossAmount   int64     `json:"gross_amount" gorm:"not null"`
	RoyaltyAmount int64     `json:"royalty_amount" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`

	PayerAccount Account `json:"payer_account,omitempty" gorm:"foreignKey:Payer"`
}

// FundingIntent tracks an external (Stripe) payment that tops up an account
// balance once confirmed.
type FundingIntent struct {
	BaseModel
	AccountID        uuid.UUID     `json:"account_id" gorm:"type:uuid;not null;index"`
	Amount           int64         `json:"amount" gorm:"not null"`
	Status           FundingStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentReference string        `json:"payment_reference" gorm:"size:255;index"`
	ProcessedAt      *time.Time    `json:"processed_at"`
	RefundedAt       *time.Time    `json:"refunded_at"`
	RefundReason     string        `json:"refund_reason,omitempty" gorm:"type:text"`

	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}
