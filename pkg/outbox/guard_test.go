package outbox_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/outbox"
	"github.com/dmitrymomot/reservekit/pkg/reservation"
)

func TestSignature(t *testing.T) {
	t.Parallel()

	a := outbox.Signature("res-1", reservation.Transition{
		Kind: reservation.TransitionStatusChanged,
		From: reservation.StatusPending,
		To:   reservation.StatusConfirmed,
	})
	b := outbox.Signature("res-1", reservation.Transition{
		Kind: reservation.TransitionStatusChanged,
		From: reservation.StatusPending,
		To:   reservation.StatusConfirmed,
	})
	c := outbox.Signature("res-2", reservation.Transition{
		Kind: reservation.TransitionStatusChanged,
		From: reservation.StatusPending,
		To:   reservation.StatusConfirmed,
	})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMemoryGuard_FirstDeliveryOnce(t *testing.T) {
	t.Parallel()

	g := outbox.NewMemoryGuard(0)
	ctx := context.Background()

	first, err := g.FirstDelivery(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := g.FirstDelivery(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := g.FirstDelivery(ctx, "sig-2")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestMemoryGuard_Concurrent(t *testing.T) {
	t.Parallel()

	g := outbox.NewMemoryGuard(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	var firsts atomic.Int32
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := g.FirstDelivery(ctx, "sig-1")
			require.NoError(t, err)
			if first {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), firsts.Load())
}

func TestMemoryGuard_TTLExpiry(t *testing.T) {
	t.Parallel()

	g := outbox.NewMemoryGuard(10 * time.Millisecond)
	ctx := context.Background()

	first, err := g.FirstDelivery(ctx, "sig-1")
	require.NoError(t, err)
	require.True(t, first)

	time.Sleep(20 * time.Millisecond)

	again, err := g.FirstDelivery(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, again)
}

func TestMemoryGuard_DeliveredDoesNotConsume(t *testing.T) {
	t.Parallel()

	g := outbox.NewMemoryGuard(0)
	ctx := context.Background()

	seen, err := g.Delivered(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, seen)

	// Checking must not record: the first real delivery still wins.
	first, err := g.FirstDelivery(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, first)

	seen, err = g.Delivered(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryGuard_DeliveredTTLExpiry(t *testing.T) {
	t.Parallel()

	g := outbox.NewMemoryGuard(10 * time.Millisecond)
	ctx := context.Background()

	_, err := g.FirstDelivery(ctx, "sig-1")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	seen, err := g.Delivered(ctx, "sig-1")
	require.NoError(t, err)
	assert.False(t, seen)
}
