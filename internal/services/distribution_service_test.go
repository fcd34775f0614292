// internal/services/distribution_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ipforge/registry/internal/models"
)

func share(beneficiary uuid.UUID, pct int, active bool) models.RevenueShare {
	return models.RevenueShare{Beneficiary: beneficiary, Percentage: pct, Active: active}
}

func TestComputePayouts(t *testing.T) {
	owner := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	tests := []struct {
		name     string
		amount   int64
		shares   []models.RevenueShare
		expected []Payout
	}{
		{
			name:   "two shares with owner remainder",
			amount: 100,
			shares: []models.RevenueShare{
				share(alice, 40, true),
				share(bob, 30, true),
			},
			expected: []Payout{
				{Beneficiary: alice, Amount: 40},
				{Beneficiary: bob, Amount: 30},
				{Beneficiary: owner, Amount: 30},
			},
		},
		{
			name:   "no shares sends everything to owner",
			amount: 57,
			shares: nil,
			expected: []Payout{
				{Beneficiary: owner, Amount: 57},
			},
		},
		{
			name:   "truncation dust flows to owner",
			amount: 10,
			shares: []models.RevenueShare{
				share(alice, 33, true),
				share(bob, 33, true),
			},
			// 10*33/100 truncates to 3 each; owner picks up 4.
			expected: []Payout{
				{Beneficiary: alice, Amount: 3},
				{Beneficiary: bob, Amount: 3},
				{Beneficiary: owner, Amount: 4},
			},
		},
		{
			name:   "inactive shares are skipped",
			amount: 100,
			shares: []models.RevenueShare{
				share(alice, 40, true),
				share(bob, 30, false),
			},
			expected: []Payout{
				{Beneficiary: alice, Amount: 40},
				{Beneficiary: owner, Amount: 60},
			},
		},
		{
			name:   "full allocation leaves zero owner remainder",
			amount: 100,
			shares: []models.RevenueShare{
				share(alice, 60, true),
				share(bob, 40, true),
			},
			expected: []Payout{
				{Beneficiary: alice, Amount: 60},
				{Beneficiary: bob, Amount: 40},
				{Beneficiary: owner, Amount: 0},
			},
		},
		{
			name:   "zero amount",
			amount: 0,
			shares: []models.RevenueShare{
				share(alice, 50, true),
			},
			expected: []Payout{
				{Beneficiary: alice, Amount: 0},
				{Beneficiary: owner, Amount: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payouts := ComputePayouts(tt.amount, tt.shares, owner)
			assert.Equal(t, tt.expected, payouts)
		})
	}
}

func TestComputePayoutsConservation(t *testing.T) {
	owner := uuid.New()
	shares := []models.RevenueShare{
		share(uuid.New(), 17, true),
		share(uuid.New(), 23, true),
		share(uuid.New(), 9, true),
		share(uuid.New(), 31, true),
	}

	for _, amount := range []int64{1, 7, 99, 100, 101, 12345, 1000000007} {
		var total int64
		for _, payout := range ComputePayouts(amount, shares, owner) {
			total += payout.Amount
		}
		assert.Equal(t, amount, total, "payouts must sum to the distributed amount")
	}
}

func TestComputePayoutsOrderIsStable(t *testing.T) {
	owner := uuid.New()
	first := uuid.New()
	second := uuid.New()

	shares := []models.RevenueShare{
		share(first, 50, true),
		share(second, 50, true),
	}

	payouts := ComputePayouts(101, shares, owner)
	assert.Equal(t, first, payouts[0].Beneficiary)
	assert.Equal(t, second, payouts[1].Beneficiary)
	assert.Equal(t, owner, payouts[2].Beneficiary)
	// 101*50/100 truncates to 50 for both; the odd unit lands on the owner.
	assert.Equal(t, int64(50), payouts[0].Amount)
	assert.Equal(t, int64(50), payouts[1].Amount)
	assert.Equal(t, int64(1), payouts[2].Amount)
}
