// internal/services/license_service_db_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
)

func newLicenseService(store *ledger.Store, ceiling int64) *LicenseService {
	return NewLicenseService(store, guard.New(ceiling), NewDistributionService())
}

func TestLicenseRequiresExactFee(t *testing.T) {
	store := newTestLedger(t)
	svc := newLicenseService(store, 100)

	owner := createTestAccount(t, store, models.RoleNone, 0)
	licensee := createTestAccount(t, store, models.RoleNone, 500)
	asset := createTestAsset(t, store, owner.ID, 100, 10)

	for _, payment := range []int64{50, 99, 101, 200} {
		_, err := svc.License(licensee.ID, asset.ID, &LicenseRequest{
			Payment:      payment,
			DurationSecs: 3600,
		})
		assert.True(t, models.IsKind(err, models.KindInvalidInput), "payment %d: got %v", payment, err)
	}

	// The rejected attempts moved no value and left no license slot.
	assert.Equal(t, int64(500), accountBalance(t, store, licensee.ID))
	assert.Equal(t, int64(0), accountBalance(t, store, owner.ID))
	_, err := store.GetLicense(asset.ID, licensee.ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestLicenseRejectedWhileDisputed(t *testing.T) {
	store := newTestLedger(t)
	svc := newLicenseService(store, 100)

	owner := createTestAccount(t, store, models.RoleNone, 0)
	licensee := createTestAccount(t, store, models.RoleNone, 500)
	asset := createTestAsset(t, store, owner.ID, 100, 10)

	asset.DisputeActive = true
	require.NoError(t, store.SaveAsset(asset))

	_, err := svc.License(licensee.ID, asset.ID, &LicenseRequest{
		Payment:      100,
		DurationSecs: 3600,
	})
	assert.True(t, models.IsKind(err, models.KindDisputeActive), "got %v", err)
	assert.Equal(t, int64(500), accountBalance(t, store, licensee.ID))
}

func TestLicenseDistributesFeeAcrossShares(t *testing.T) {
	store := newTestLedger(t)
	svc := newLicenseService(store, 100)

	owner := createTestAccount(t, store, models.RoleNone, 0)
	beneficiary := createTestAccount(t, store, models.RoleNone, 0)
	licensee := createTestAccount(t, store, models.RoleNone, 500)
	asset := createTestAsset(t, store, owner.ID, 100, 10)

	require.NoError(t, store.AddShare(&models.RevenueShare{
		AssetID:     asset.ID,
		Beneficiary: beneficiary.ID,
		Percentage:  30,
		Active:      true,
	}))

	license, err := svc.License(licensee.ID, asset.ID, &LicenseRequest{
		Payment:      100,
		DurationSecs: 3600,
		Renewable:    true,
	})
	require.NoError(t, err)

	assert.True(t, license.Active)
	assert.Equal(t, int64(400), accountBalance(t, store, licensee.ID))
	assert.Equal(t, int64(30), accountBalance(t, store, beneficiary.ID))
	assert.Equal(t, int64(70), accountBalance(t, store, owner.ID))

	fresh, err := store.GetAsset(asset.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Licensed)
}

func TestRenewRequiresRenewableAndExpired(t *testing.T) {
	store := newTestLedger(t)
	svc := newLicenseService(store, 100)

	owner := createTestAccount(t, store, models.RoleNone, 0)
	licensee := createTestAccount(t, store, models.RoleNone, 500)
	asset := createTestAsset(t, store, owner.ID, 100, 10)

	license := &models.License{
		AssetID:      asset.ID,
		Licensee:     licensee.ID,
		StartTime:    time.Now(),
		DurationSecs: 3600,
		Active:       true,
	}
	require.NoError(t, store.SaveLicense(license))

	// Not renewable, regardless of expiry.
	_, err := svc.Renew(licensee.ID, asset.ID, &RenewRequest{Payment: 100})
	assert.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)

	// Renewable but still running.
	license.Renewable = true
	require.NoError(t, store.SaveLicense(license))
	_, err = svc.Renew(licensee.ID, asset.ID, &RenewRequest{Payment: 100})
	assert.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)

	// Renewable and lapsed.
	license.StartTime = time.Now().Add(-2 * time.Hour)
	require.NoError(t, store.SaveLicense(license))
	renewed, err := svc.Renew(licensee.ID, asset.ID, &RenewRequest{Payment: 100})
	require.NoError(t, err)

	assert.True(t, renewed.Active)
	assert.True(t, renewed.ExpiresAt().After(time.Now()))
	assert.Equal(t, int64(400), accountBalance(t, store, licensee.ID))
	assert.Equal(t, int64(100), accountBalance(t, store, owner.ID))
}

// A rejected operation rolls its transaction back, counter increment
// included, so it must not burn lifetime quota.
func TestFailedOperationKeepsQuota(t *testing.T) {
	store := newTestLedger(t)
	svc := newLicenseService(store, 1)

	owner := createTestAccount(t, store, models.RoleNone, 0)
	licensee := createTestAccount(t, store, models.RoleNone, 500)
	asset := createTestAsset(t, store, owner.ID, 100, 10)

	// Wrong fee fails inside the transaction.
	_, err := svc.License(licensee.ID, asset.ID, &LicenseRequest{
		Payment:      50,
		DurationSecs: 3600,
	})
	require.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)

	// With a ceiling of one, the next valid operation is still admitted.
	_, err = svc.License(licensee.ID, asset.ID, &LicenseRequest{
		Payment:      100,
		DurationSecs: 3600,
	})
	require.NoError(t, err)

	// The committed operation consumed the one slot.
	err = svc.AuthorizeUser(licensee.ID, asset.ID, &AuthorizeUserRequest{UserID: owner.ID})
	assert.True(t, models.IsKind(err, models.KindRateLimited), "got %v", err)

	var opCount models.AccountOpCount
	require.NoError(t, store.DB().First(&opCount, "account_id = ?", licensee.ID).Error)
	assert.Equal(t, int64(1), opCount.Count)
}
