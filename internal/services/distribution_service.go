// internal/services/distribution_service.go
package services

import (
	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
)

// DistributionService splits an incoming payment among an asset's active
// revenue-share beneficiaries and its owner. It only ever runs inside the
// calling operation's transaction: one failed credit aborts the whole
// operation, so no partial distribution can persist.
type DistributionService struct{}

func NewDistributionService() *DistributionService {
	return &DistributionService{}
}

type Payout struct {
	Beneficiary uuid.UUID `json:"beneficiary"`
	Amount      int64     `json:"amount"`
}

// ComputePayouts allocates amount across the shares in their stored order
// using truncating integer division (amount * percentage / 100), with the
// remainder going to the owner. Truncation dust is not tracked separately; it
// flows into the owner remainder. The returned payouts always sum to amount.
func ComputePayouts(amount int64, shares []models.RevenueShare, owner uuid.UUID) []Payout {
	payouts := make([]Payout, 0, len(shares)+1)
	remaining := amount

	for _, share := range shares {
		if !share.Active {
			continue
		}
		shareAmount := amount * int64(share.Percentage) / 100
		payouts = append(payouts, Payout{Beneficiary: share.Beneficiary, Amount: shareAmount})
		remaining -= shareAmount
	}

	payouts = append(payouts, Payout{Beneficiary: owner, Amount: remaining})
	return payouts
}

// Distribute credits amount across the asset's active shares and owner inside
// tx, and bumps the asset's cumulative revenue by the gross amount. The
// caller is responsible for debiting the payer; Distribute only fans the
// value out.
func (s *DistributionService) Distribute(tx *ledger.Store, asset *models.IPAsset, amount int64) error {
	if amount < 0 {
		return models.E(models.KindInvalidInput, "distribution amount must not be negative")
	}

	shares, err := tx.ActiveShares(asset.ID)
	if err != nil {
		return err
	}

	for _, payout := range ComputePayouts(amount, shares, asset.OwnerID) {
		if payout.Amount == 0 {
			continue
		}
		if err := tx.Credit(payout.Beneficiary, payout.Amount); err != nil {
			return err
		}
	}

	return tx.AddRevenue(asset.ID, amount)
}
