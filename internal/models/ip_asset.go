// internal/models/ip_asset.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// IPAsset is a registered work. The ID is assigned by the ledger sequence at
// creation, starts at 0 and is never reused; records are never deleted.
type IPAsset struct {
	ID            int64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name          string         `json:"name" gorm:"size:255;not null"`
	Description   string         `json:"description" gorm:"type:text"`
	AssetType     string         `json:"asset_type" gorm:"size:100;index"`
	OwnerID       uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Licensed      bool           `json:"licensed" gorm:"not null;default:false"`
	Transferred   bool           `json:"transferred" gorm:"not null;default:false"`
	LicenseFee    int64          `json:"license_fee" gorm:"not null"`
	RoyaltyPct    int            `json:"royalty_pct" gorm:"not null"`
	AllowedUsages pq.StringArray `json:"allowed_usages" gorm:"type:text[]"`
	DisputeActive bool           `json:"dispute_active" gorm:"not null;default:false;index"`
	TotalRevenue  int64          `json:"total_revenue" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Relationships
	Owner    Account        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Licenses []License      `json:"licenses,omitempty" gorm:"foreignKey:AssetID"`
	Shares   []RevenueShare `json:"shares,omitempty" gorm:"foreignKey:AssetID"`
	Disputes []Dispute      `json:"disputes,omitempty" gorm:"foreignKey:AssetID"`
}

// RevenueShare is a standing percentage entitlement on an asset's payments.
// Shares are append-only and ordered by insertion; the sum of active
// percentages never exceeds 100, enforced at insertion time.
type RevenueShare struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	AssetID     int64     `json:"asset_id" gorm:"not null;index"`
	Beneficiary uuid.UUID `json:"beneficiary" gorm:"type:uuid;not null"`
	Percentage  int       `json:"percentage" gorm:"not null"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`

	BeneficiaryAccount Account `json:"beneficiary_account,omitempty" gorm:"foreignKey:Beneficiary"`
}
