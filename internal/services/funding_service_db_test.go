// internal/services/funding_service_db_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipforge/registry/internal/config"
	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
)

func newFundingService(store *ledger.Store) *FundingService {
	return NewFundingService(store, guard.New(100), &config.PaymentConfig{UnitScale: 100})
}

// The pending-to-completed transition is conditional on the stored status,
// so a confirmation that raced another one must not credit a second time.
func TestFundingCreditAppliesOnce(t *testing.T) {
	store := newTestLedger(t)
	svc := newFundingService(store)
	account := createTestAccount(t, store, models.RoleNone, 0)

	intent := &models.FundingIntent{
		AccountID:        account.ID,
		Amount:           250,
		Status:           models.FundingStatusPending,
		PaymentReference: "pi_test_123",
	}
	require.NoError(t, store.DB().Create(intent).Error)

	err := store.WithTx(func(tx *ledger.Store) error {
		return svc.creditFunding(tx, intent)
	})
	require.NoError(t, err)
	assert.Equal(t, models.FundingStatusCompleted, intent.Status)
	assert.NotNil(t, intent.ProcessedAt)
	assert.Equal(t, int64(250), accountBalance(t, store, account.ID))

	// Replaying the credit fails and the failed transaction moves nothing.
	stale := &models.FundingIntent{}
	*stale = *intent
	stale.Status = models.FundingStatusPending
	err = store.WithTx(func(tx *ledger.Store) error {
		return svc.creditFunding(tx, stale)
	})
	assert.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)
	assert.Equal(t, int64(250), accountBalance(t, store, account.ID))
}

func TestFundingCreditRollsBackTogether(t *testing.T) {
	store := newTestLedger(t)
	svc := newFundingService(store)
	account := createTestAccount(t, store, models.RoleNone, 0)

	// A suspended destination makes the credit fail after the status flip;
	// the whole transaction must roll back, leaving the intent pending.
	account.Status = models.AccountStatusSuspended
	require.NoError(t, store.DB().Save(account).Error)

	intent := &models.FundingIntent{
		AccountID:        account.ID,
		Amount:           250,
		Status:           models.FundingStatusPending,
		PaymentReference: "pi_test_456",
	}
	require.NoError(t, store.DB().Create(intent).Error)

	err := store.WithTx(func(tx *ledger.Store) error {
		return svc.creditFunding(tx, intent)
	})
	assert.True(t, models.IsKind(err, models.KindPaymentFailed), "got %v", err)

	var fresh models.FundingIntent
	require.NoError(t, store.DB().First(&fresh, "id = ?", intent.ID).Error)
	assert.Equal(t, models.FundingStatusPending, fresh.Status)
}
