// internal/services/dispute_service.go
package services

import (
	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

// DisputeService implements arbitration: opening a dispute freezes the
// asset's revenue-bearing operations until a moderator resolves it.
type DisputeService struct {
	store *ledger.Store
	guard *guard.Guard
}

func NewDisputeService(store *ledger.Store, g *guard.Guard) *DisputeService {
	return &DisputeService{
		store: store,
		guard: g,
	}
}

type OpenDisputeRequest struct {
	Description string `json:"description" validate:"required,min=1,max=4000"`
}

type ResolveDisputeRequest struct {
	// Refund returns the initiating licensee's fee from the treasury and
	// deactivates their license.
	Refund bool `json:"refund"`
}

// Open raises a dispute on an asset. Only the owner or an active licensee has
// standing. The asset's dispute flag goes up immediately, blocking licensing,
// renewal, royalty payment and transfer until resolution.
func (s *DisputeService) Open(callerID uuid.UUID, assetID int64, req *OpenDisputeRequest) (*models.Dispute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var dispute *models.Dispute
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		asset, err := tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		if asset.OwnerID != callerID {
			if _, err := tx.ActiveLicense(assetID, callerID); err != nil {
				return models.E(models.KindUnauthorized, "only the owner or an active licensee can open a dispute")
			}
		}

		id, err := tx.NextID(models.SeqDisputeID)
		if err != nil {
			return err
		}

		dispute = &models.Dispute{
			ID:          id,
			AssetID:     assetID,
			Initiator:   callerID,
			Description: req.Description,
		}
		if err := tx.CreateDispute(dispute); err != nil {
			return err
		}

		asset.DisputeActive = true
		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventDisputeOpened, &callerID, &assetID, models.JSONB{
			"dispute_id": id,
		})
	})
	if err != nil {
		return nil, err
	}

	return dispute, nil
}

// Resolve closes a dispute. Moderator capability required. Resolving clears
// the asset's dispute flag regardless of other unresolved disputes on the
// same asset. When refund is requested and the initiator held an active
// license, the license is deactivated and the fee moves back from the
// treasury. A failed refund aborts the whole resolution.
func (s *DisputeService) Resolve(callerID uuid.UUID, assetID, disputeID int64, refund bool) (*models.Dispute, error) {
	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var dispute *models.Dispute
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		caller, err := tx.GetAccount(callerID)
		if err != nil {
			return err
		}
		if !caller.HasCapability(models.RoleModerator) {
			return models.E(models.KindUnauthorized, "moderator capability required to resolve disputes")
		}

		dispute, err = tx.GetAssetDispute(assetID, disputeID)
		if err != nil {
			return err
		}
		if dispute.Resolved {
			return models.Ef(models.KindInvalidInput, "dispute %d already resolved", disputeID)
		}

		asset, err := tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		dispute.Resolved = true
		if err := tx.SaveDispute(dispute); err != nil {
			return err
		}

		asset.DisputeActive = false
		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		refunded := false
		if refund {
			refunded, err = s.refundInitiator(tx, asset, dispute.Initiator)
			if err != nil {
				return err
			}
		}

		return tx.AppendEvent(models.EventDisputeResolved, &callerID, &assetID, models.JSONB{
			"dispute_id": disputeID,
			"refunded":   refunded,
		})
	})
	if err != nil {
		return nil, err
	}

	return dispute, nil
}

// refundInitiator returns the license fee to a disputing licensee. The
// license is deactivated and the asset's licensed flag recomputed. Returns
// whether a refund happened; failure to move the funds is propagated and
// rolls the resolution back.
func (s *DisputeService) refundInitiator(tx *ledger.Store, asset *models.IPAsset, initiator uuid.UUID) (bool, error) {
	license, err := tx.ActiveLicense(asset.ID, initiator)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return false, nil
		}
		return false, err
	}

	license.Active = false
	if err := tx.SaveLicense(license); err != nil {
		return false, err
	}

	var count int64
	err = tx.DB().Model(&models.License{}).
		Where("asset_id = ? AND active = ?", asset.ID, true).
		Count(&count).Error
	if err != nil {
		return false, models.Wrap(models.KindInternal, "license count failed", err)
	}
	asset.Licensed = count > 0
	if err := tx.SaveAsset(asset); err != nil {
		return false, err
	}

	treasury, err := tx.TreasuryAccount()
	if err != nil {
		return false, err
	}
	if err := tx.Debit(treasury.ID, asset.LicenseFee); err != nil {
		return false, err
	}
	if err := tx.Credit(initiator, asset.LicenseFee); err != nil {
		return false, err
	}

	return true, nil
}

// Vote records an arbitration vote on an open dispute. One vote per account.
func (s *DisputeService) Vote(callerID uuid.UUID, disputeID int64) (*models.Dispute, error) {
	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var dispute *models.Dispute
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		dispute, err = tx.GetDispute(disputeID)
		if err != nil {
			return err
		}
		if dispute.Resolved {
			return models.Ef(models.KindInvalidInput, "dispute %d already resolved", disputeID)
		}

		voted, err := tx.HasVoted(disputeID, callerID)
		if err != nil {
			return err
		}
		if voted {
			return models.E(models.KindInvalidInput, "account has already voted on this dispute")
		}

		if err := tx.AddVote(&models.DisputeVote{DisputeID: disputeID, Voter: callerID}); err != nil {
			return err
		}

		dispute.VoteCount++
		if err := tx.SaveDispute(dispute); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventDisputeVoted, &callerID, &dispute.AssetID, models.JSONB{
			"dispute_id": disputeID,
			"vote_count": dispute.VoteCount,
		})
	})
	if err != nil {
		return nil, err
	}

	return dispute, nil
}

// GetDispute reads a single dispute.
func (s *DisputeService) GetDispute(disputeID int64) (*models.Dispute, error) {
	return s.store.GetDispute(disputeID)
}

// ListDisputes returns every dispute raised against an asset.
func (s *DisputeService) ListDisputes(assetID int64) ([]models.Dispute, error) {
	if _, err := s.store.GetAsset(assetID); err != nil {
		return nil, err
	}
	return s.store.ListDisputes(assetID)
}
