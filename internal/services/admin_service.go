// internal/services/admin_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
	"github.com/ipforge/registry/internal/utils"
)

// AdminService covers the privileged surface: the pause circuit breaker,
// emergency treasury withdrawal, upgrade notes and platform settings.
type AdminService struct {
	store *ledger.Store
	guard *guard.Guard
}

func NewAdminService(store *ledger.Store, g *guard.Guard) *AdminService {
	return &AdminService{
		store: store,
		guard: g,
	}
}

type UpgradeNoteRequest struct {
	Version     string `json:"version" validate:"required,max=50"`
	Description string `json:"description" validate:"required"`
}

type UpdateSettingRequest struct {
	Category    string       `json:"category" validate:"required,max=50"`
	Key         string       `json:"key" validate:"required,max=100"`
	Value       models.JSONB `json:"value" validate:"required"`
	DataType    string       `json:"data_type" validate:"required,oneof=string number boolean object array"`
	Description string       `json:"description,omitempty"`
}

const (
	settingCategoryRegistry = "registry"
	settingKeyPaused        = "paused"
)

// LoadPauseState restores the persisted pause flag at startup so a restart
// cannot silently unpause the registry.
func (s *AdminService) LoadPauseState() error {
	var setting models.PlatformSetting
	err := s.store.DB().
		First(&setting, "category = ? AND key = ?", settingCategoryRegistry, settingKeyPaused).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return models.Wrap(models.KindInternal, "pause state lookup failed", err)
	}

	paused, _ := setting.Value["value"].(bool)
	s.guard.SetPaused(paused)
	if paused {
		logrus.Warn("Registry starting in paused state")
	}
	return nil
}

// Pause stops all mutating operations. The flag is persisted so it survives
// restarts. Admin only; the caller is checked here because the guard itself
// must keep admitting the admin while paused.
func (s *AdminService) Pause(callerID uuid.UUID) error {
	return s.setPaused(callerID, true, models.EventPaused)
}

// Unpause re-opens the registry for mutating operations.
func (s *AdminService) Unpause(callerID uuid.UUID) error {
	return s.setPaused(callerID, false, models.EventUnpaused)
}

func (s *AdminService) setPaused(callerID uuid.UUID, paused bool, eventType models.EventType) error {
	err := s.store.WithTx(func(tx *ledger.Store) error {
		caller, err := tx.GetAccount(callerID)
		if err != nil {
			return err
		}
		if !caller.HasCapability(models.RoleAdmin) {
			return models.E(models.KindUnauthorized, "admin capability required")
		}

		if err := s.persistSetting(tx, callerID, settingCategoryRegistry, settingKeyPaused,
			models.JSONB{"value": paused}, "boolean", "Registry pause circuit breaker"); err != nil {
			return err
		}

		return tx.AppendEvent(eventType, &callerID, nil, models.JSONB{"paused": paused})
	})
	if err != nil {
		return err
	}

	s.guard.SetPaused(paused)
	logrus.WithFields(logrus.Fields{
		"admin_id": callerID,
		"paused":   paused,
	}).Warn("Registry pause state changed")
	return nil
}

// EmergencyWithdraw drains the treasury balance to the calling admin's
// account. Intended for incident response while the registry is paused.
func (s *AdminService) EmergencyWithdraw(callerID uuid.UUID) (int64, error) {
	var amount int64
	err := s.store.WithTx(func(tx *ledger.Store) error {
		caller, err := tx.GetAccount(callerID)
		if err != nil {
			return err
		}
		if !caller.HasCapability(models.RoleAdmin) {
			return models.E(models.KindUnauthorized, "admin capability required")
		}

		treasury, err := tx.TreasuryAccount()
		if err != nil {
			return err
		}

		amount = treasury.Balance
		if amount == 0 {
			return nil
		}

		if err := tx.Debit(treasury.ID, amount); err != nil {
			return err
		}
		if err := tx.Credit(callerID, amount); err != nil {
			return err
		}

		return tx.AppendEvent(models.EventEmergencyWithdraw, &callerID, nil, models.JSONB{
			"amount": amount,
		})
	})
	if err != nil {
		return 0, err
	}

	return amount, nil
}

// AddUpgradeNote records an entry in the upgrade history.
func (s *AdminService) AddUpgradeNote(callerID uuid.UUID, req *UpgradeNoteRequest) (*models.UpgradeNote, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	note := &models.UpgradeNote{
		Version:     req.Version,
		Description: req.Description,
		AuthorID:    callerID,
	}
	if err := s.store.DB().Create(note).Error; err != nil {
		return nil, models.Wrap(models.KindInternal, "upgrade note create failed", err)
	}
	return note, nil
}

func (s *AdminService) ListUpgradeNotes() ([]models.UpgradeNote, error) {
	var notes []models.UpgradeNote
	err := s.store.DB().Order("created_at DESC").Find(&notes).Error
	if err != nil {
		return nil, models.Wrap(models.KindInternal, "upgrade note list failed", err)
	}
	return notes, nil
}

// GetSettings returns platform settings, optionally filtered by category.
func (s *AdminService) GetSettings(category string) ([]models.PlatformSetting, error) {
	query := s.store.DB().Model(&models.PlatformSetting{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var settings []models.PlatformSetting
	if err := query.Order("category, key").Find(&settings).Error; err != nil {
		return nil, models.Wrap(models.KindInternal, "settings lookup failed", err)
	}
	return settings, nil
}

// UpdateSetting upserts a platform setting.
func (s *AdminService) UpdateSetting(callerID uuid.UUID, req *UpdateSettingRequest) (*models.PlatformSetting, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, models.Wrap(models.KindInvalidInput, "validation failed", err)
	}

	var setting *models.PlatformSetting
	err := s.store.WithTx(func(tx *ledger.Store) error {
		if err := s.persistSetting(tx, callerID, req.Category, req.Key,
			req.Value, req.DataType, req.Description); err != nil {
			return err
		}
		return tx.DB().
			First(&setting, "category = ? AND key = ?", req.Category, req.Key).Error
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *AdminService) persistSetting(tx *ledger.Store, updatedBy uuid.UUID, category, key string, value models.JSONB, dataType, description string) error {
	var existing models.PlatformSetting
	err := tx.DB().First(&existing, "category = ? AND key = ?", category, key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Wrap(models.KindInternal, "setting lookup failed", err)
		}
		setting := models.PlatformSetting{
			Category:    category,
			Key:         key,
			Value:       value,
			DataType:    dataType,
			Description: description,
			UpdatedBy:   updatedBy,
		}
		if err := tx.DB().Create(&setting).Error; err != nil {
			return models.Wrap(models.KindInternal, "setting create failed", err)
		}
		return nil
	}

	existing.Value = value
	existing.DataType = dataType
	if description != "" {
		existing.Description = description
	}
	existing.UpdatedBy = updatedBy
	if err := tx.DB().Save(&existing).Error; err != nil {
		return models.Wrap(models.KindInternal, "setting save failed", err)
	}
	return nil
}

// ListEvents pages through the notification log, newest first.
func (s *AdminService) ListEvents(params utils.PaginationParams) ([]models.LedgerEvent, int64, error) {
	query := s.store.DB().Model(&models.LedgerEvent{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.Wrap(models.KindInternal, "event count failed", err)
	}

	var events []models.LedgerEvent
	err := utils.ApplyPagination(query.Order("id DESC"), params).Find(&events).Error
	if err != nil {
		return nil, 0, models.Wrap(models.KindInternal, "event list failed", err)
	}
	return events, total, nil
}
