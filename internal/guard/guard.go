// internal/guard/guard.go

// Package guard implements the cross-cutting safety checks applied before
// every mutating registry operation: the pause circuit breaker, reentrancy
// exclusion, and the per-account operation ceiling.
package guard

import (
	"sync"

	"github.com/google/uuid"

	"github.com/ipforge/registry/internal/models"
)

// OpCounter tracks per-account lifetime operation counts. The ledger store
// satisfies it, both directly and as a transactional view.
type OpCounter interface {
	IncrementOpCount(accountID uuid.UUID) (int64, error)
}

type Guard struct {
	ceiling int64

	mtx      sync.Mutex
	paused   bool
	inFlight map[uuid.UUID]struct{}
}

func New(ceiling int64) *Guard {
	return &Guard{
		ceiling:  ceiling,
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

func (g *Guard) Paused() bool {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	return g.paused
}

func (g *Guard) SetPaused(paused bool) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	g.paused = paused
}

// Enter admits one mutating operation on behalf of caller and returns a
// release function that must be deferred. It rejects when the registry is
// paused or when the caller already has a mutating operation in flight
// (reentrancy exclusion around the distributor's transfers).
func (g *Guard) Enter(caller uuid.UUID) (func(), error) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if g.paused {
		return nil, models.E(models.KindPaused, "registry is paused")
	}
	if _, busy := g.inFlight[caller]; busy {
		return nil, models.E(models.KindReentrancy, "reentrant call rejected")
	}
	g.inFlight[caller] = struct{}{}

	return func() {
		g.mtx.Lock()
		delete(g.inFlight, caller)
		g.mtx.Unlock()
	}, nil
}

// ConsumeQuota charges one operation against the caller's lifetime ceiling.
// Callers pass the transaction-scoped counter: the increment commits with the
// operation, so a rolled-back operation keeps its quota.
//
// The counter is monotonic and never resets, so the ceiling is a lifetime
// cap rather than a sliding window; the HTTP layer applies a separate
// time-windowed limiter.
func (g *Guard) ConsumeQuota(counter OpCounter, caller uuid.UUID) error {
	count, err := counter.IncrementOpCount(caller)
	if err != nil {
		return err
	}
	if count > g.ceiling {
		return models.E(models.KindRateLimited, "operation limit reached for account")
	}
	return nil
}
