// internal/services/transfer_service.go
package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

// TransferService moves asset ownership. Transfers of high-value assets must
// be announced ahead of time through a time-lock that matures after the
// configured delay.
type TransferService struct {
	store *ledger.Store
	guard *guard.Guard
	cfg   *config.RegistryConfig
}

func NewTransferService(store *ledger.Store, g *guard.Guard, cfg *config.RegistryConfig) *TransferService {
	return &TransferService{
		store: store,
		guard: g,
		cfg:   cfg,
	}
}

type TransferRequest struct {
	NewOwner uuid.UUID `json:"new_owner" validate:"required"`
}

// CreateTransferLock announces an intended high-value transfer. The lock is
// keyed by a fingerprint of the intent parameters (asset, new owner) and
// matures after the configured delay.
func (s *TransferService) CreateTransferLock(callerID uuid.UUID, assetID int64, req *TransferRequest) (*models.TimeLock, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var lock *models.TimeLock
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		asset, err := tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		if asset.OwnerID != callerID {
			return models.E(models.KindUnauthorized, "only the asset owner can announce a transfer")
		}

		if _, err := tx.GetAccount(req.NewOwner); err != nil {
			return err
		}

		lock = &models.TimeLock{
			Fingerprint: models.TransferFingerprint(assetID, req.NewOwner),
			ReleaseTime: time.Now().Add(time.Duration(s.cfg.TimeLockDelay) * time.Second),
		}
		if err := tx.CreateTimeLock(lock); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventTimeLockCreated, &callerID, &assetID, models.JSONB{
			"new_owner":    req.NewOwner.String(),
			"release_time": lock.ReleaseTime,
		})
	})
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Transfer moves ownership to the new owner. Disputed assets cannot be
// transferred. Assets whose license fee meets the high-value threshold
// require a matured, unexecuted time-lock for this exact (asset, new owner)
// pair; the lock is consumed on success.
func (s *TransferService) Transfer(callerID uuid.UUID, assetID int64, req *TransferRequest) (*models.IPAsset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var asset *models.IPAsset
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		asset, err = tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		if asset.OwnerID != callerID {
			return models.E(models.KindUnauthorized, "only the asset owner can transfer it")
		}

		if asset.DisputeActive {
			return models.E(models.KindDisputeActive, "asset is under dispute")
		}

		if req.NewOwner == callerID {
			return models.E(models.KindInvalidInput, "cannot transfer an asset to its current owner")
		}

		destination, err := tx.GetAccount(req.NewOwner)
		if err != nil {
			return err
		}
		if destination.Status != models.AccountStatusActive {
			return models.E(models.KindInvalidInput, "destination account is not active")
		}

		if asset.LicenseFee >= s.cfg.HighValueThreshold {
			if err := s.consumeLock(tx, assetID, req.NewOwner); err != nil {
				return err
			}
		}

		asset.OwnerID = req.NewOwner
		asset.Transferred = true
		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventAssetTransferred, &callerID, &assetID, models.JSONB{
			"new_owner": req.NewOwner.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

func (s *TransferService) consumeLock(tx *ledger.Store, assetID int64, newOwner uuid.UUID) error {
	lock, err := tx.GetTimeLock(models.TransferFingerprint(assetID, newOwner))
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return models.E(models.KindTimeLockActive, "transfer requires a time-lock")
		}
		return err
	}

	if lock.Executed {
		return models.E(models.KindTimeLockActive, "time-lock already executed")
	}
	if !lock.Released(time.Now()) {
		return models.E(models.KindTimeLockActive, "time-lock not yet released")
	}

	lock.Executed = true
	return tx.SaveTimeLock(lock)
}

// GetTransferLock reads the lock for a pending (asset, new owner) intent.
func (s *TransferService) GetTransferLock(assetID int64, newOwner uuid.UUID) (*models.TimeLock, error) {
	return s.store.GetTimeLock(models.TransferFingerprint(assetID, newOwner))
}
