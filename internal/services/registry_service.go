// internal/services/registry_service.go
package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

// RegistryService owns asset registration and mutation, revenue-share
// configuration, and royalty payments.
type RegistryService struct {
	store       *ledger.Store
	guard       *guard.Guard
	distributor *DistributionService
	cfg         *config.RegistryConfig
}

func NewRegistryService(store *ledger.Store, g *guard.Guard, distributor *DistributionService, cfg *config.RegistryConfig) *RegistryService {
	return &RegistryService{
		store:       store,
		guard:       g,
		distributor: distributor,
		cfg:         cfg,
	}
}

type CreateAssetRequest struct {
	Name          string   `json:"name" validate:"required,min=1"`
	Description   string   `json:"description,omitempty"`
	AssetType     string   `json:"asset_type" validate:"required,max=100"`
	LicenseFee    int64    `json:"license_fee" validate:"required,min=1"`
	RoyaltyPct    int      `json:"royalty_pct" validate:"min=0,max=100"`
	AllowedUsages []string `json:"allowed_usages,omitempty"`
}

type BatchCreateRequest struct {
	Assets []CreateAssetRequest `json:"assets" validate:"required,min=1,dive"`
}

type UpdateAssetRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description   *string  `json:"description,omitempty"`
	AssetType     *string  `json:"asset_type,omitempty" validate:"omitempty,max=100"`
	LicenseFee    *int64   `json:"license_fee,omitempty" validate:"omitempty,min=1"`
	RoyaltyPct    *int     `json:"royalty_pct,omitempty" validate:"omitempty,min=0,max=100"`
	AllowedUsages []string `json:"allowed_usages,omitempty"`
}

type AddShareRequest struct {
	Beneficiary uuid.UUID `json:"beneficiary" validate:"required"`
	Percentage  int       `json:"percentage" validate:"required,min=1,max=100"`
}

type PayRoyaltiesRequest struct {
	Payment int64 `json:"payment" validate:"required,min=1"`
}

func (s *RegistryService) validateAssetFields(name, description string) error {
	if len(name) > s.cfg.MaxNameLength {
		return models.Ef(models.KindInvalidInput, "name exceeds %d characters", s.cfg.MaxNameLength)
	}
	if len(description) > s.cfg.MaxDescriptionLength {
		return models.Ef(models.KindInvalidInput, "description exceeds %d characters", s.cfg.MaxDescriptionLength)
	}
	if strings.TrimSpace(name) == "" {
		return models.E(models.KindInvalidInput, "name must not be blank")
	}
	return nil
}

// CreateAsset registers a new IP asset and assigns it the next monotonic
// identifier. The fee must be positive and the royalty percentage within
// [0,100]; both invariants also hold after every later update.
func (s *RegistryService) CreateAsset(callerID uuid.UUID, req *CreateAssetRequest) (*models.IPAsset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}
	if err := s.validateAssetFields(req.Name, req.Description); err != nil {
		return nil, err
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
		created, err := s.createAssetTx(tx, callerID, req)
		if err != nil {
			return err
		}
		asset = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// BatchCreateAssets registers several assets in one atomic operation, bounded
// by the configured batch ceiling.
func (s *RegistryService) BatchCreateAssets(callerID uuid.UUID, req *BatchCreateRequest) ([]models.IPAsset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	if len(req.Assets) > s.cfg.MaxBatchSize {
		return nil, models.Ef(models.KindBatchLimitExceeded,
			"batch of %d exceeds limit of %d", len(req.Assets), s.cfg.MaxBatchSize)
	}

	for i := range req.Assets {
		if err := s.validateAssetFields(req.Assets[i].Name, req.Assets[i].Description); err != nil {
			return nil, err
		}
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var assets []models.IPAsset
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}
		for i := range req.Assets {
			created, err := s.createAssetTx(tx, callerID, &req.Assets[i])
			if err != nil {
				return err
			}
			assets = append(assets, *created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assets, nil
}

func (s *RegistryService) createAssetTx(tx *ledger.Store, callerID uuid.UUID, req *CreateAssetRequest) (*models.IPAsset, error) {
	id, err := tx.NextID(models.SeqAssetID)
	if err != nil {
		return nil, err
	}

	asset := &models.IPAsset{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		AssetType:     req.AssetType,
		OwnerID:       callerID,
		LicenseFee:    req.LicenseFee,
		RoyaltyPct:    req.RoyaltyPct,
		AllowedUsages: pq.StringArray(req.AllowedUsages),
	}

	if err := tx.CreateAsset(asset); err != nil {
		return nil, err
	}

	err = tx.AppendEvent(models.EventAssetCreated, &callerID, &id, models.JSONB{
		"name":        req.Name,
		"asset_type":  req.AssetType,
		"license_fee": req.LicenseFee,
		"royalty_pct": req.RoyaltyPct,
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// UpdateAsset mutates an asset's mutable fields. Owner only; the creation
// invariants are re-checked on the updated values.
func (s *RegistryService) UpdateAsset(callerID uuid.UUID, assetID int64, req *UpdateAssetRequest) (*models.IPAsset, error) {
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
			return models.E(models.KindUnauthorized, "only the asset owner can update it")
		}

		if req.Name != nil {
			asset.Name = *req.Name
		}
		if req.Description != nil {
			asset.Description = *req.Description
		}
		if req.AssetType != nil {
			asset.AssetType = *req.AssetType
		}
		if req.LicenseFee != nil {
			asset.LicenseFee = *req.LicenseFee
		}
		if req.RoyaltyPct != nil {
			asset.RoyaltyPct = *req.RoyaltyPct
		}
		if req.AllowedUsages != nil {
			asset.AllowedUsages = pq.StringArray(req.AllowedUsages)
		}

		if err := s.validateAssetFields(asset.Name, asset.Description); err != nil {
			return err
		}
		if asset.LicenseFee <= 0 {
			return models.E(models.KindInvalidInput, "license fee must be positive")
		}
		if asset.RoyaltyPct < 0 || asset.RoyaltyPct > 100 {
			return models.E(models.KindInvalidInput, "royalty percentage must be within [0,100]")
		}

		if err := tx.SaveAsset(asset); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventAssetUpdated, &callerID, &assetID, models.JSONB{
			"license_fee": asset.LicenseFee,
			"royalty_pct": asset.RoyaltyPct,
		})
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// AddShare appends a revenue share for an asset. Owner only. The sum of
// active percentages may never exceed 100, checked against the current set
// inside the same transaction.
func (s *RegistryService) AddShare(callerID uuid.UUID, assetID int64, req *AddShareRequest) (*models.RevenueShare, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var share *models.RevenueShare
	err = s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.guard.ConsumeQuota(tx, callerID); err != nil {
			return err
		}

		asset, err := tx.GetAsset(assetID)
		if err != nil {
			return err
		}

		if asset.OwnerID != callerID {
			return models.E(models.KindUnauthorized, "only the asset owner can add revenue shares")
		}

		if _, err := tx.GetAccount(req.Beneficiary); err != nil {
			return err
		}

		shares, err := tx.ActiveShares(assetID)
		if err != nil {
			return err
		}

		total := req.Percentage
		for _, existing := range shares {
			total += existing.Percentage
		}
		if total > 100 {
			return models.Ef(models.KindInvalidInput,
				"revenue shares would total %d%%, exceeding 100%%", total)
		}

		share = &models.RevenueShare{
			AssetID:     assetID,
			Beneficiary: req.Beneficiary,
			Percentage:  req.Percentage,
			Active:      true,
		}
		if err := tx.AddShare(share); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventShareAdded, &callerID, &assetID, models.JSONB{
			"beneficiary": req.Beneficiary.String(),
			"percentage":  req.Percentage,
		})
	})
	if err != nil {
		return nil, err
	}

	return share, nil
}

// PayRoyalties takes a gross payment from the caller, distributes the
// royalty portion (gross * royaltyPct / 100, truncating) across shares and
// owner, and retains the remainder in the treasury.
func (s *RegistryService) PayRoyalties(callerID uuid.UUID, assetID int64, req *PayRoyaltiesRequest) (*models.RoyaltyPayment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	release, err := s.guard.Enter(callerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var payment *models.RoyaltyPayment
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

		royalty := req.Payment * int64(asset.RoyaltyPct) / 100

		if err := tx.Debit(callerID, req.Payment); err != nil {
			return err
		}

		if err := s.distributor.Distribute(tx, asset, royalty); err != nil {
			return err
		}

		if remainder := req.Payment - royalty; remainder > 0 {
			treasury, err := tx.TreasuryAccount()
			if err != nil {
				return err
			}
			if err := tx.Credit(treasury.ID, remainder); err != nil {
				return err
			}
		}

		payment = &models.RoyaltyPayment{
			AssetID:       assetID,
			Payer:         callerID,
			GrossAmount:   req.Payment,
			RoyaltyAmount: royalty,
		}
		if err := tx.RecordRoyalty(payment); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventRoyaltyPaid, &callerID, &assetID, models.JSONB{
			"gross_amount":   req.Payment,
			"royalty_amount": royalty,
		})
	})
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// Queries

func (s *RegistryService) GetAsset(assetID int64) (*models.IPAsset, error) {
	var asset models.IPAsset
	err := s.store.DB().
		Preload("Owner").
		Preload("Shares").
		First(&asset, "id = ?", assetID).Error
	if err != nil {
		return nil, models.Ef(models.KindNotFound, "asset %d not found", assetID)
	}
	return &asset, nil
}

func (s *RegistryService) ListAssets(params utils.PaginationParams) ([]models.IPAsset, int64, error) {
	query := s.store.DB().Model(&models.IPAsset{})

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}
	if params.AssetType != "" {
		query = query.Where("asset_type = ?", params.AssetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.Wrap(models.KindInternal, "asset count failed", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "license_fee", "total_revenue"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var assets []models.IPAsset
	if err := query.Find(&assets).Error; err != nil {
		return nil, 0, models.Wrap(models.KindInternal, "asset list failed", err)
	}

	return assets, total, nil
}

// LicensedAssets returns assets that currently have at least one active
// license.
func (s *RegistryService) LicensedAssets() ([]models.IPAsset, error) {
	var assets []models.IPAsset
	err := s.store.DB().
		Where("licensed = ?", true).
		Order("id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "licensed asset list failed", err)
	}
	return assets, nil
}

func (s *RegistryService) OwnedAssets(owner uuid.UUID) ([]models.IPAsset, error) {
	var assets []models.IPAsset
	err := s.store.DB().
		Where("owner_id = ?", owner).
		Order("id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "owned asset list failed", err)
	}
	return assets, nil
}

func (s *RegistryService) GetRoyaltyPayments(assetID int64) ([]models.RoyaltyPayment, error) {
	if _, err := s.store.GetAsset(assetID); err != nil {
		return nil, err
	}
	return s.store.ListRoyalties(assetID)
}

func (s *RegistryService) GetShares(assetID int64) ([]models.RevenueShare, error) {
	if _, err := s.store.GetAsset(assetID); err != nil {
		return nil, err
	}
	return s.store.ActiveShares(assetID)
}
