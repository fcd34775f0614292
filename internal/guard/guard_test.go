// internal/guard/guard_test.go
package guard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ipforge/registry/internal/models"
)

type fakeCounter struct {
	counts map[uuid.UUID]int64
	err    error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[uuid.UUID]int64)}
}

func (f *fakeCounter) IncrementOpCount(accountID uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[accountID]++
	return f.counts[accountID], nil
}

func TestEnterAndRelease(t *testing.T) {
	g := New(100)
	caller := uuid.New()

	release, err := g.Enter(caller)
	assert.NoError(t, err)
	release()

	// Sequential operations are fine after release.
	release, err = g.Enter(caller)
	assert.NoError(t, err)
	release()
}

func TestEnterRejectsWhenPaused(t *testing.T) {
	g := New(100)
	g.SetPaused(true)

	_, err := g.Enter(uuid.New())
	assert.True(t, models.IsKind(err, models.KindPaused))

	g.SetPaused(false)
	release, err := g.Enter(uuid.New())
	assert.NoError(t, err)
	release()
}

func TestEnterRejectsReentrancy(t *testing.T) {
	g := New(100)
	caller := uuid.New()

	release, err := g.Enter(caller)
	assert.NoError(t, err)

	_, err = g.Enter(caller)
	assert.True(t, models.IsKind(err, models.KindReentrancy))

	// A different caller is not blocked.
	otherRelease, err := g.Enter(uuid.New())
	assert.NoError(t, err)
	otherRelease()

	release()

	release, err = g.Enter(caller)
	assert.NoError(t, err)
	release()
}

func TestConsumeQuotaEnforcesCeiling(t *testing.T) {
	counter := newFakeCounter()
	g := New(3)
	caller := uuid.New()

	for i := 0; i < 3; i++ {
		assert.NoError(t, g.ConsumeQuota(counter, caller))
	}

	err := g.ConsumeQuota(counter, caller)
	assert.True(t, models.IsKind(err, models.KindRateLimited))

	// The ceiling is per account.
	assert.NoError(t, g.ConsumeQuota(counter, uuid.New()))
}

func TestConsumeQuotaPropagatesCounterError(t *testing.T) {
	counter := newFakeCounter()
	counter.err = models.E(models.KindInternal, "operation counter failed")
	g := New(100)

	err := g.ConsumeQuota(counter, uuid.New())
	assert.True(t, models.IsKind(err, models.KindInternal))
}

// Admission must not charge the counter: the charge belongs to the
// operation's transaction so a failed operation keeps its quota.
func TestEnterDoesNotChargeCounter(t *testing.T) {
	counter := newFakeCounter()
	g := New(1)
	caller := uuid.New()

	for i := 0; i < 5; i++ {
		release, err := g.Enter(caller)
		assert.NoError(t, err)
		release()
	}
	assert.Empty(t, counter.counts)

	assert.NoError(t, g.ConsumeQuota(counter, caller))
	assert.Equal(t, int64(1), counter.counts[caller])
}

func TestPausedFlag(t *testing.T) {
	g := New(100)
	assert.False(t, g.Paused())
	g.SetPaused(true)
	assert.True(t, g.Paused())
	g.SetPaused(false)
	assert.False(t, g.Paused())
}
