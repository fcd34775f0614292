// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.Account{},
		&models.IPAsset{},
		&models.License{},
		&models.LicenseUser{},
		&models.Dispute{},
		&models.DisputeVote{},
		&models.RevenueShare{},
		&models.TimeLock{},
		&models.RoyaltyPayment{},
		&models.FundingIntent{},
		&models.LedgerEvent{},
		&models.Sequence{},
		&models.AccountOpCount{},
		&models.PlatformSetting{},
		&models.UpgradeNote{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := seedSequences(db); err != nil {
		return fmt.Errorf("failed to seed sequences: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Account indexes
		"CREATE INDEX IF NOT EXISTS idx_accounts_role_status ON accounts(role, status)",

		// Asset indexes
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_owner ON ip_assets(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_type ON ip_assets(asset_type)",
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_licensed ON ip_assets(licensed)",
		"CREATE INDEX IF NOT EXISTS idx_ip_assets_created_at ON ip_assets(created_at DESC)",

		// License indexes
		"CREATE INDEX IF NOT EXISTS idx_licenses_licensee ON licenses(licensee)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_active ON licenses(asset_id, active)",

		// Dispute indexes
		"CREATE INDEX IF NOT EXISTS idx_disputes_asset_resolved ON disputes(asset_id, resolved)",

		// Revenue share indexes
		"CREATE INDEX IF NOT EXISTS idx_revenue_shares_asset_active ON revenue_shares(asset_id, active)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_royalty_payments_asset ON royalty_payments(asset_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_funding_intents_account ON funding_intents(account_id, status)",

		// Event log indexes
		"CREATE INDEX IF NOT EXISTS idx_ledger_events_asset ON ledger_events(asset_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_ledger_events_type ON ledger_events(type, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// seedSequences makes sure the ledger-owned counters exist. Identifiers start
// at 0.
func seedSequences(db *gorm.DB) error {
	for _, name := range []string{models.SeqAssetID, models.SeqDisputeID} {
		var count int64
		if err := db.Model(&models.Sequence{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&models.Sequence{Name: name, Next: 0}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedInitialData creates the bootstrap admin and the treasury account.
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	var adminCount int64
	db.Model(&models.Account{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.Account{
			Username: "admin",
			Email:    "admin@ipforge.io",
			Role:     models.RoleAdmin,
			Status:   models.AccountStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}

		logrus.Info("Default admin account created")
	}

	var treasuryCount int64
	db.Model(&models.Account{}).Where("treasury = ?", true).Count(&treasuryCount)

	if treasuryCount == 0 {
		treasury := &models.Account{
			Username: "treasury",
			Email:    "treasury@ipforge.io",
			Role:     models.RoleNone,
			Status:   models.AccountStatusActive,
			Treasury: true,
		}

		if err := treasury.SetPassword(fmt.Sprintf("treasury-%d", time.Now().UnixNano())); err != nil {
			return fmt.Errorf("failed to set treasury password: %w", err)
		}

		if err := db.Create(treasury).Error; err != nil {
			return fmt.Errorf("failed to create treasury account: %w", err)
		}

		logrus.Info("Treasury account created")
	}

	return nil
}

// WithTransaction runs fn inside a single database transaction; any error
// rolls back every change made within it.
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
