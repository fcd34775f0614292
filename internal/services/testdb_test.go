// internal/services/testdb_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
)

// newTestLedger opens an isolated in-memory database with the full schema
// and seeded sequences.
func newTestLedger(t *testing.T) *ledger.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	err = db.AutoMigrate(
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
		t.Fatalf("migrate test database: %v", err)
	}

	for _, name := range []string{models.SeqAssetID, models.SeqDisputeID} {
		if err := db.Create(&models.Sequence{Name: name, Next: 0}).Error; err != nil {
			t.Fatalf("seed sequence %s: %v", name, err)
		}
	}

	return ledger.New(db)
}

func createTestAccount(t *testing.T, store *ledger.Store, role models.Role, balance int64) *models.Account {
	t.Helper()

	suffix := uuid.NewString()[:8]
	account := &models.Account{
		Username:     "acct-" + suffix,
		Email:        suffix + "@test.local",
		PasswordHash: "unused",
		Role:         role,
		Status:       models.AccountStatusActive,
		Balance:      balance,
	}
	if err := store.DB().Create(account).Error; err != nil {
		t.Fatalf("create test account: %v", err)
	}
	return account
}

func createTestTreasury(t *testing.T, store *ledger.Store, balance int64) *models.Account {
	t.Helper()

	treasury := createTestAccount(t, store, models.RoleNone, balance)
	treasury.Treasury = true
	if err := store.DB().Save(treasury).Error; err != nil {
		t.Fatalf("mark treasury account: %v", err)
	}
	return treasury
}

func createTestAsset(t *testing.T, store *ledger.Store, owner uuid.UUID, fee int64, royaltyPct int) *models.IPAsset {
	t.Helper()

	id, err := store.NextID(models.SeqAssetID)
	if err != nil {
		t.Fatalf("allocate asset id: %v", err)
	}
	asset := &models.IPAsset{
		ID:         id,
		Name:       fmt.Sprintf("Asset %d", id),
		AssetType:  "music",
		OwnerID:    owner,
		LicenseFee: fee,
		RoyaltyPct: royaltyPct,
	}
	if err := store.CreateAsset(asset); err != nil {
		t.Fatalf("create test asset: %v", err)
	}
	return asset
}

func accountBalance(t *testing.T, store *ledger.Store, id uuid.UUID) int64 {
	t.Helper()

	account, err := store.GetAccount(id)
	if err != nil {
		t.Fatalf("read account: %v", err)
	}
	return account.Balance
}
