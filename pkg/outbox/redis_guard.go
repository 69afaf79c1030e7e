package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard implements IdempotencyGuard on Redis SETNX, so multiple worker
// instances share one delivery ledger.
type RedisGuard struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisGuard creates a guard over the given client. Signatures expire
// after ttl; zero ttl keeps them forever.
func NewRedisGuard(client redis.UniversalClient, ttl time.Duration) *RedisGuard {
	return &RedisGuard{
		client: client,
		prefix: "outbox:delivered:",
		ttl:    ttl,
	}
}

// FirstDelivery implements IdempotencyGuard.
func (g *RedisGuard) FirstDelivery(ctx context.Context, signature string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+signature, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record delivery signature: %w", err)
	}
	return ok, nil
}

// Delivered implements IdempotencyGuard.
func (g *RedisGuard) Delivered(ctx context.Context, signature string) (bool, error) {
	n, err := g.client.Exists(ctx, g.prefix+signature).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check delivery signature: %w", err)
	}
	return n > 0, nil
}
