// internal/ledger/store.go

// Package ledger is the single owner of registry entity records. Every
// component reads and mutates assets, licenses, disputes, shares, time-locks
// and balances through a Store; identifier sequences are allocated here and
// only ever exposed as an atomic next-value operation.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ipforge/registry/internal/database"
	"github.com/ipforge/registry/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-only query composition
// (pagination, listings). Mutations go through typed methods.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx runs fn against a transactional view of the store. All mutations
// inside fn commit together or not at all; sequence allocations made inside
// fn roll back with it, so a failed operation never consumes an identifier.
func (s *Store) WithTx(fn func(tx *Store) error) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// NextID atomically allocates the next identifier from a named sequence.
// Identifiers start at 0 and are never reused.
func (s *Store) NextID(name string) (int64, error) {
	var id int64
	err := s.db.Raw(
		"UPDATE sequences SET next = next + 1 WHERE name = ? RETURNING next - 1", name,
	).Scan(&id).Error
	if err != nil {
		return 0, models.Wrap(models.KindInternal, "sequence allocation failed", err)
	}
	return id, nil
}

// CurrentID returns the next unallocated identifier of a sequence; valid
// entity ids are strictly below it.
func (s *Store) CurrentID(name string) (int64, error) {
	var seq models.Sequence
	if err := s.db.First(&seq, "name = ?", name).Error; err != nil {
		return 0, models.Wrap(models.KindInternal, "sequence lookup failed", err)
	}
	return seq.Next, nil
}

// Accounts

func (s *Store) GetAccount(id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.E(models.KindNotFound, "account not found")
		}
		return nil, models.Wrap(models.KindInternal, "account lookup failed", err)
	}
	return &account, nil
}

func (s *Store) TreasuryAccount() (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, "treasury = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.E(models.KindInternal, "treasury account missing")
		}
		return nil, models.Wrap(models.KindInternal, "treasury lookup failed", err)
	}
	return &account, nil
}

// Debit removes amount from an account balance. Fails with PaymentFailed when
// the balance cannot cover the amount.
func (s *Store) Debit(accountID uuid.UUID, amount int64) error {
	if amount < 0 {
		return models.E(models.KindInvalidInput, "debit amount must not be negative")
	}
	result := s.db.Model(&models.Account{}).
		Where("id = ? AND balance >= ?", accountID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return models.Wrap(models.KindInternal, "debit failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.E(models.KindPaymentFailed, "insufficient balance")
	}
	return nil
}

// Credit adds amount to an account balance. Fails with PaymentFailed when the
// destination does not exist or is not active; a failed transfer to any
// beneficiary aborts the enclosing transaction.
func (s *Store) Credit(accountID uuid.UUID, amount int64) error {
	if amount < 0 {
		return models.E(models.KindInvalidInput, "credit amount must not be negative")
	}
	result := s.db.Model(&models.Account{}).
		Where("id = ? AND status = ?", accountID, models.AccountStatusActive).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return models.Wrap(models.KindInternal, "credit failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.E(models.KindPaymentFailed, "transfer destination unavailable")
	}
	return nil
}

// Assets

func (s *Store) GetAsset(id int64) (*models.IPAsset, error) {
	var asset models.IPAsset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.Ef(models.KindNotFound, "asset %d not found", id)
		}
		return nil, models.Wrap(models.KindInternal, "asset lookup failed", err)
	}
	return &asset, nil
}

func (s *Store) CreateAsset(asset *models.IPAsset) error {
	if err := s.db.Create(asset).Error; err != nil {
		return models.Wrap(models.KindInternal, "asset create failed", err)
	}
	return nil
}

func (s *Store) SaveAsset(asset *models.IPAsset) error {
	if err := s.db.Save(asset).Error; err != nil {
		return models.Wrap(models.KindInternal, "asset save failed", err)
	}
	return nil
}

// AddRevenue bumps the asset's cumulative revenue counter by the gross amount
// distributed.
func (s *Store) AddRevenue(assetID int64, amount int64) error {
	result := s.db.Model(&models.IPAsset{}).
		Where("id = ?", assetID).
		UpdateColumn("total_revenue", gorm.Expr("total_revenue + ?", amount))
	if result.Error != nil {
		return models.Wrap(models.KindInternal, "revenue update failed", result.Error)
	}
	return nil
}

// Licenses

func (s *Store) GetLicense(assetID int64, licensee uuid.UUID) (*models.License, error) {
	var license models.License
	err := s.db.First(&license, "asset_id = ? AND licensee = ?", assetID, licensee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.E(models.KindNotFound, "license not found")
		}
		return nil, models.Wrap(models.KindInternal, "license lookup failed", err)
	}
	return &license, nil
}

func (s *Store) SaveLicense(license *models.License) error {
	if err := s.db.Save(license).Error; err != nil {
		return models.Wrap(models.KindInternal, "license save failed", err)
	}
	return nil
}

func (s *Store) ActiveLicense(assetID int64, licensee uuid.UUID) (*models.License, error) {
	license, err := s.GetLicense(assetID, licensee)
	if err != nil {
		return nil, err
	}
	if !license.Active {
		return nil, models.E(models.KindNotFound, "license not active")
	}
	return license, nil
}

func (s *Store) CountLicenseUsers(assetID int64, licensee uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.LicenseUser{}).
		Where("asset_id = ? AND licensee = ?", assetID, licensee).
		Count(&count).Error
	if err != nil {
		return 0, models.Wrap(models.KindInternal, "license user count failed", err)
	}
	return count, nil
}

func (s *Store) AddLicenseUser(user *models.LicenseUser) error {
	if err := s.db.Create(user).Error; err != nil {
		return models.Wrap(models.KindInvalidInput, "user already authorized", err)
	}
	return nil
}

func (s *Store) RemoveLicenseUser(assetID int64, licensee, userID uuid.UUID) error {
	result := s.db.Where("asset_id = ? AND licensee = ? AND user_id = ?", assetID, licensee, userID).
		Delete(&models.LicenseUser{})
	if result.Error != nil {
		return models.Wrap(models.KindInternal, "license user removal failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.E(models.KindNotFound, "authorized user not found")
	}
	return nil
}

// Revenue shares

// ActiveShares returns an asset's active shares in insertion order. The order
// is part of the distribution contract: payout truncation happens in the same
// order every time.
func (s *Store) ActiveShares(assetID int64) ([]models.RevenueShare, error) {
	var shares []models.RevenueShare
	err := s.db.Where("asset_id = ? AND active = ?", assetID, true).
		Order("id ASC").
		Find(&shares).Error
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "share lookup failed", err)
	}
	return shares, nil
}

func (s *Store) AddShare(share *models.RevenueShare) error {
	if err := s.db.Create(share).Error; err != nil {
		return models.Wrap(models.KindInternal, "share create failed", err)
	}
	return nil
}

// Disputes

func (s *Store) GetAssetDispute(assetID, disputeID int64) (*models.Dispute, error) {
	var dispute models.Dispute
	err := s.db.First(&dispute, "id = ? AND asset_id = ?", disputeID, assetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.Ef(models.KindInvalidInput, "dispute %d not found for asset %d", disputeID, assetID)
		}
		return nil, models.Wrap(models.KindInternal, "dispute lookup failed", err)
	}
	return &dispute, nil
}

func (s *Store) GetDispute(disputeID int64) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := s.db.First(&dispute, "id = ?", disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.Ef(models.KindInvalidInput, "dispute %d not found", disputeID)
		}
		return nil, models.Wrap(models.KindInternal, "dispute lookup failed", err)
	}
	return &dispute, nil
}

func (s *Store) CreateDispute(dispute *models.Dispute) error {
	if err := s.db.Create(dispute).Error; err != nil {
		return models.Wrap(models.KindInternal, "dispute create failed", err)
	}
	return nil
}

func (s *Store) SaveDispute(dispute *models.Dispute) error {
	if err := s.db.Save(dispute).Error; err != nil {
		return models.Wrap(models.KindInternal, "dispute save failed", err)
	}
	return nil
}

func (s *Store) ListDisputes(assetID int64) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := s.db.Where("asset_id = ?", assetID).Order("id ASC").Find(&disputes).Error
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "dispute list failed", err)
	}
	return disputes, nil
}

func (s *Store) HasVoted(disputeID int64, voter uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.DisputeVote{}).
		Where("dispute_id = ? AND voter = ?", disputeID, voter).
		Count(&count).Error
	if err != nil {
		return false, models.Wrap(models.KindInternal, "vote lookup failed", err)
	}
	return count > 0, nil
}

func (s *Store) AddVote(vote *models.DisputeVote) error {
	if err := s.db.Create(vote).Error; err != nil {
		return models.Wrap(models.KindInvalidInput, "already voted", err)
	}
	return nil
}

// Time-locks

func (s *Store) GetTimeLock(fingerprint string) (*models.TimeLock, error) {
	var lock models.TimeLock
	if err := s.db.First(&lock, "fingerprint = ?", fingerprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.E(models.KindNotFound, "time-lock not found")
		}
		return nil, models.Wrap(models.KindInternal, "time-lock lookup failed", err)
	}
	return &lock, nil
}

func (s *Store) CreateTimeLock(lock *models.TimeLock) error {
	if err := s.db.Create(lock).Error; err != nil {
		return models.Wrap(models.KindInvalidInput, "time-lock already exists", err)
	}
	return nil
}

func (s *Store) SaveTimeLock(lock *models.TimeLock) error {
	if err := s.db.Save(lock).Error; err != nil {
		return models.Wrap(models.KindInternal, "time-lock save failed", err)
	}
	return nil
}

// Royalty payments

func (s *Store) RecordRoyalty(payment *models.RoyaltyPayment) error {
	if err := s.db.Create(payment).Error; err != nil {
		return models.Wrap(models.KindInternal, "royalty record failed", err)
	}
	return nil
}

func (s *Store) ListRoyalties(assetID int64) ([]models.RoyaltyPayment, error) {
	var payments []models.RoyaltyPayment
	err := s.db.Where("asset_id = ?", assetID).Order("id ASC").Find(&payments).Error
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "royalty list failed", err)
	}
	return payments, nil
}

// Events

// AppendEvent writes a structured notification in the current transaction.
func (s *Store) AppendEvent(eventType models.EventType, actor *uuid.UUID, assetID *int64, payload models.JSONB) error {
	event := &models.LedgerEvent{
		Type:      eventType,
		ActorID:   actor,
		AssetID:   assetID,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(event).Error; err != nil {
		return models.Wrap(models.KindInternal, "event append failed", err)
	}
	return nil
}

// Operation counter

// IncrementOpCount bumps the account's lifetime mutating-operation counter
// and returns the new value. The counter never resets. Called through a
// transactional view, the increment commits with the operation, so a failed
// operation does not consume quota.
func (s *Store) IncrementOpCount(accountID uuid.UUID) (int64, error) {
	now := time.Now()
	var count int64
	err := s.db.Raw(`
		INSERT INTO account_op_counts (account_id, count, updated_at)
		VALUES (?, 1, ?)
		ON CONFLICT (account_id)
		DO UPDATE SET count = count + 1, updated_at = ?
		RETURNING count`, accountID, now, now,
	).Scan(&count).Error
	if err != nil {
		return 0, models.Wrap(models.KindInternal, "operation counter failed", err)
	}
	return count, nil
}
