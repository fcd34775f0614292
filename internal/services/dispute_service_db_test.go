// internal/services/dispute_service_db_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipforge/registry/internal/guard"
	"github.com/ipforge/registry/internal/ledger"
	"github.com/ipforge/registry/internal/models"
)

type disputeFixture struct {
	store     *ledger.Store
	disputes  *DisputeService
	licenses  *LicenseService
	owner     *models.Account
	licensee  *models.Account
	moderator *models.Account
	treasury  *models.Account
	asset     *models.IPAsset
}

func newDisputeFixture(t *testing.T) *disputeFixture {
	t.Helper()

	store := newTestLedger(t)
	g := guard.New(100)

	f := &disputeFixture{
		store:     store,
		disputes:  NewDisputeService(store, g),
		licenses:  NewLicenseService(store, g, NewDistributionService()),
		owner:     createTestAccount(t, store, models.RoleNone, 0),
		licensee:  createTestAccount(t, store, models.RoleNone, 500),
		moderator: createTestAccount(t, store, models.RoleModerator, 0),
		treasury:  createTestTreasury(t, store, 1000),
	}
	f.asset = createTestAsset(t, store, f.owner.ID, 100, 10)
	return f
}

func (f *disputeFixture) licenseAndDispute(t *testing.T) *models.Dispute {
	t.Helper()

	_, err := f.licenses.License(f.licensee.ID, f.asset.ID, &LicenseRequest{
		Payment:      100,
		DurationSecs: 3600,
	})
	require.NoError(t, err)

	dispute, err := f.disputes.Open(f.licensee.ID, f.asset.ID, &OpenDisputeRequest{
		Description: "terms were misrepresented",
	})
	require.NoError(t, err)
	return dispute
}

func TestOpenDisputeFreezesAsset(t *testing.T) {
	f := newDisputeFixture(t)

	_, err := f.disputes.Open(f.owner.ID, f.asset.ID, &OpenDisputeRequest{
		Description: "counterfeit registration",
	})
	require.NoError(t, err)

	fresh, err := f.store.GetAsset(f.asset.ID)
	require.NoError(t, err)
	assert.True(t, fresh.DisputeActive)

	// Licensing is rejected while the flag is up.
	_, err = f.licenses.License(f.licensee.ID, f.asset.ID, &LicenseRequest{
		Payment:      100,
		DurationSecs: 3600,
	})
	assert.True(t, models.IsKind(err, models.KindDisputeActive), "got %v", err)
}

func TestOpenDisputeRequiresStanding(t *testing.T) {
	f := newDisputeFixture(t)
	outsider := createTestAccount(t, f.store, models.RoleNone, 0)

	_, err := f.disputes.Open(outsider.ID, f.asset.ID, &OpenDisputeRequest{
		Description: "unrelated grievance",
	})
	assert.True(t, models.IsKind(err, models.KindUnauthorized), "got %v", err)
}

func TestResolveRejectsUnknownDispute(t *testing.T) {
	f := newDisputeFixture(t)
	f.licenseAndDispute(t)

	_, err := f.disputes.Resolve(f.moderator.ID, f.asset.ID, 99, true)
	assert.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)

	// The asset stays frozen after the failed resolution.
	fresh, err := f.store.GetAsset(f.asset.ID)
	require.NoError(t, err)
	assert.True(t, fresh.DisputeActive)
}

func TestResolveRequiresModerator(t *testing.T) {
	f := newDisputeFixture(t)
	dispute := f.licenseAndDispute(t)

	_, err := f.disputes.Resolve(f.licensee.ID, f.asset.ID, dispute.ID, true)
	assert.True(t, models.IsKind(err, models.KindUnauthorized), "got %v", err)
}

func TestResolveClearsFlagAndRefundsInitiator(t *testing.T) {
	f := newDisputeFixture(t)
	dispute := f.licenseAndDispute(t)

	// Licensing debited the fee: 500 - 100.
	require.Equal(t, int64(400), accountBalance(t, f.store, f.licensee.ID))

	resolved, err := f.disputes.Resolve(f.moderator.ID, f.asset.ID, dispute.ID, true)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)

	fresh, err := f.store.GetAsset(f.asset.ID)
	require.NoError(t, err)
	assert.False(t, fresh.DisputeActive)
	assert.False(t, fresh.Licensed)

	// The fee came back from the treasury and the license was pulled.
	assert.Equal(t, int64(500), accountBalance(t, f.store, f.licensee.ID))
	assert.Equal(t, int64(900), accountBalance(t, f.store, f.treasury.ID))
	license, err := f.store.GetLicense(f.asset.ID, f.licensee.ID)
	require.NoError(t, err)
	assert.False(t, license.Active)

	// A second resolution of the same dispute is rejected.
	_, err = f.disputes.Resolve(f.moderator.ID, f.asset.ID, dispute.ID, true)
	assert.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)
}

func TestResolveWithoutRefundKeepsLicense(t *testing.T) {
	f := newDisputeFixture(t)
	dispute := f.licenseAndDispute(t)

	_, err := f.disputes.Resolve(f.moderator.ID, f.asset.ID, dispute.ID, false)
	require.NoError(t, err)

	fresh, err := f.store.GetAsset(f.asset.ID)
	require.NoError(t, err)
	assert.False(t, fresh.DisputeActive)
	assert.True(t, fresh.Licensed)

	assert.Equal(t, int64(400), accountBalance(t, f.store, f.licensee.ID))
	assert.Equal(t, int64(1000), accountBalance(t, f.store, f.treasury.ID))
	license, err := f.store.GetLicense(f.asset.ID, f.licensee.ID)
	require.NoError(t, err)
	assert.True(t, license.Active)
}

func TestVoteOncePerAccount(t *testing.T) {
	f := newDisputeFixture(t)
	dispute := f.licenseAndDispute(t)
	voter := createTestAccount(t, f.store, models.RoleNone, 0)

	voted, err := f.disputes.Vote(voter.ID, dispute.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.VoteCount)

	_, err = f.disputes.Vote(voter.ID, dispute.ID)
	assert.True(t, models.IsKind(err, models.KindInvalidInput), "got %v", err)
}
