// internal/services/license_service.go
package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

// LicenseService implements the licensing engine: time-bounded per-licensee
// licenses with renewal, owner revocation, and sub-user authorization.
type LicenseService struct {
	store       *ledger.Store
	guard       *guard.Guard
	distributor *DistributionService
}

func NewLicenseService(store *ledger.Store, g *guard.Guard, distributor *DistributionService) *LicenseService {
	return &LicenseService{
		store:       store,
		guard:       g,
		distributor: distributor,
	}
}

type LicenseRequest struct {
	Payment      int64  `json:"payment" validate:"required,min=1"`
	DurationSecs int64  `json:"duration_secs" validate:"required,min=1"`
	Renewable    bool   `json:"renewable,omitempty"`
	Transferable bool   `json:"transferable,omitempty"`
	MaxUsers     int    `json:"max_users,omitempty" validate:"omitempty,min=1"`
	Terms        string `json:"terms,omitempty"`
}

type RenewRequest struct {
	Payment int64 `json:"payment" validate:"required,min=1"`
}

type RevokeRequest struct {
	Licensee uuid.UUID `json:"licensee" validate:"required"`
}

type AuthorizeUserRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// License grants the caller a license on the asset. Licensing is open to any
// account; the payment must equal the asset's configured fee exactly and is
// distributed in full. The (asset, caller) slot is created or overwritten.
func (s *LicenseService) License(callerID uuid.UUID, assetID int64, req *LicenseRequest) (*models.License, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	maxUsers := req.MaxUsers
	if maxUsers == 0 {
		maxUsers = 1
	}

	var license *models.License
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		asset, err := tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		if asset.DisputeActive {
			return models.E(models.KindDisputeActive, "asset is under dispute")
		}

		if req.Payment != asset.LicenseFee {
			return models.Ef(models.KindInvalidInput,
				"payment %d does not match license fee %d", req.Payment, asset.LicenseFee)
		}

		now := time.Now()
		license, err = tx.GetLicense(assetID, callerID)
		if err != nil {
			if !models.IsKind(err, models.KindNotFound) {
				return err
			}
			license = &models.License{AssetID: assetID, Licensee: callerID}
		}

		license.StartTime = now
		license.DurationSecs = req.DurationSecs
		license.Active = true
		license.Terms = req.Terms
		license.Renewable = req.Renewable
		license.Transferable = req.Transferable
		license.MaxUsers = maxUsers

		if err := tx.SaveLicense(license); err != nil {
			return err
		}

		if err := tx.Debit(callerID, req.Payment); err != nil {
			return err
		}

		if err := s.distributor.Distribute(tx, asset, req.Payment); err != nil {
			return err
		}

		asset.Licensed = true
		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventAssetLicensed, &callerID, &assetID, models.JSONB{
			"payment":       req.Payment,
			"duration_secs": req.DurationSecs,
			"renewable":     req.Renewable,
		})
	})
	if err != nil {
		return nil, err
	}

	return license, nil
}

// Renew resets an expired, renewable license's term. Not-renewable and
// not-yet-expired are distinct failures; both are checked.
func (s *LicenseService) Renew(callerID uuid.UUID, assetID int64, req *RenewRequest) (*models.License, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var license *models.License
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		asset, err := tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		if asset.DisputeActive {
			return models.E(models.KindDisputeActive, "asset is under dispute")
		}

		license, err = tx.GetLicense(assetID, callerID)
		if err != nil {
			return err
		}

		if !license.Renewable {
			return models.E(models.KindInvalidInput, "license is not renewable")
		}

		now := time.Now()
		if !license.ExpiresAt().Before(now) {
			return models.E(models.KindInvalidInput, "license has not expired yet")
		}

		if req.Payment != asset.LicenseFee {
			return models.Ef(models.KindInvalidInput,
				"payment %d does not match license fee %d", req.Payment, asset.LicenseFee)
		}

		license.StartTime = now
		license.Active = true
		if err := tx.SaveLicense(license); err != nil {
			return err
		}

		if err := tx.Debit(callerID, req.Payment); err != nil {
			return err
		}

		if err := s.distributor.Distribute(tx, asset, req.Payment); err != nil {
			return err
		}

		asset.Licensed = true
		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventLicenseRenewed, &callerID, &assetID, models.JSONB{
			"payment": req.Payment,
		})
	})
	if err != nil {
		return nil, err
	}

	return license, nil
}

// Revoke deactivates a licensee's license. Owner only.
func (s *LicenseService) Revoke(callerID uuid.UUID, assetID int64, req *RevokeRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return err
	}
	defer release()

	return s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		asset, err := tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		if asset.OwnerID != callerID {
			return models.E(models.KindUnauthorized, "only the asset owner can revoke licenses")
		}

		license, err := tx.ActiveLicense(assetID, req.Licensee)
		if err != nil {
			return err
		}

		license.Active = false
		if err := tx.SaveLicense(license); err != nil {
			return err
		}

		if err := s.refreshLicensedFlag(tx, asset); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventLicenseRevoked, &callerID, &assetID, models.JSONB{
			"licensee": req.Licensee.String(),
		})
	})
}

// IsExpired is the pure expiry query: start + duration < now.
func (s *LicenseService) IsExpired(assetID int64, licensee uuid.UUID) (bool, error) {
	if _, err := s.store.GetAsset(assetID); err != nil {
		return false, err
	}

	license, err := s.store.GetLicense(assetID, licensee)
	if err != nil {
		return false, err
	}

	return license.ExpiresAt().Before(time.Now()), nil
}

// AuthorizeUser adds a sub-user to the caller's license, bounded by the
// license's max-users setting.
func (s *LicenseService) AuthorizeUser(callerID uuid.UUID, assetID int64, req *AuthorizeUserRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return err
	}
	defer release()

	return s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		license, err := tx.ActiveLicense(assetID, callerID)
		if err != nil {
			return err
		}

		if license.ExpiredAt(time.Now()) {
			return models.E(models.KindInvalidInput, "license has expired")
		}

		count, err := tx.CountLicenseUsers(assetID, callerID)
		if err != nil {
			return err
		}
		if count >= int64(license.MaxUsers) {
			return models.Ef(models.KindInvalidInput, "license user limit %d reached", license.MaxUsers)
		}

		if _, err := tx.GetAccount(req.UserID); err != nil {
			return err
		}

		return tx.AddLicenseUser(&models.LicenseUser{
			AssetID:  assetID,
			Licensee: callerID,
			UserID:   req.UserID,
		})
	})
}

// RevokeUser removes a sub-user from the caller's license.
func (s *LicenseService) RevokeUser(callerID uuid.UUID, assetID int64, userID uuid.UUID) error {
	release, err := s.guard.Enter(callerID)
	if err != nil {
		return err
	}
	defer release()

	return s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}
		if _, err := tx.ActiveLicense(assetID, callerID); err != nil {
			return err
		}
		return tx.RemoveLicenseUser(assetID, callerID, userID)
	})
}

// MyLicenses returns the caller's licenses across assets.
func (s *LicenseService) MyLicenses(callerID uuid.UUID) ([]models.License, error) {
	var licenses []models.License
	err := s.store.DB().
		Where("licensee = ?", callerID).
		Order("asset_id ASC").
		Find(&licenses).Error
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "license list failed", err)
	}
	return licenses, nil
}

// refreshLicensedFlag recomputes the asset's licensed flag from its active
// license count.
func (s *LicenseService) refreshLicensedFlag(tx *ledger.Store, asset *models.IPAsset) error {
	var count int64
	err := tx.DB().Model(&models.License{}).
		Where("asset_id = ? AND active = ?", asset.ID, true).
		Count(&count).Error
	if err != nil {
		return models.Wrap(models.KindInternal, "license count failed", err)
	}

	asset.Licensed = count > 0
	return tx.SaveAsset(asset)
}
