package outbox

import (
	"context"
	"sync"
	"time"
)

// IdempotencyGuard remembers delivered signatures so redelivered events do
// not repeat their side effects.
type IdempotencyGuard interface {
	// FirstDelivery reports whether this signature has not been seen before
	// and atomically records it. Exactly one caller per signature gets true.
	FirstDelivery(ctx context.Context, signature string) (bool, error)
	// Delivered reports whether the signature was already recorded, without
	// recording it. Handlers check this up front and call FirstDelivery only
	// once their work has succeeded, so a failed attempt stays retryable.
	Delivered(ctx context.Context, signature string) (bool, error)
}

// MemoryGuard implements IdempotencyGuard in process memory. Suitable for
// single-instance deployments and tests.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemoryGuard creates a guard that remembers signatures for ttl.
// A non-positive ttl means signatures never expire.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// FirstDelivery implements IdempotencyGuard.
func (g *MemoryGuard) FirstDelivery(ctx context.Context, signature string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if at, ok := g.seen[signature]; ok {
		if g.ttl <= 0 || now.Sub(at) < g.ttl {
			return false, nil
		}
	}
	g.seen[signature] = now
	return true, nil
}

// Delivered implements IdempotencyGuard.
func (g *MemoryGuard) Delivered(ctx context.Context, signature string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	at, ok := g.seen[signature]
	if !ok {
		return false, nil
	}
	if g.ttl > 0 && time.Since(at) >= g.ttl {
		return false, nil
	}
	return true, nil
}
