package outbox_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/outbox"
)

func TestWorker_ProcessesEvent(t *testing.T) {
	t.Parallel()

	ms := outbox.NewMemoryStorage()
	defer ms.Close()
	ctx := context.Background()

	var processed atomic.Int32
	handler := func(ctx context.Context, event *outbox.Event) error {
		processed.Add(1)
		return nil
	}

	w, err := outbox.NewWorker(ms, handler,
		outbox.WithPollInterval(10*time.Millisecond),
		outbox.WithMaxConcurrent(2))
	require.NoError(t, err)

	require.NoError(t, ms.CreateEvent(ctx, newTestEvent("res-1")))
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.Eventually(t, func() bool {
		return processed.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_RetriesThenDLQ(t *testing.T) {
	t.Parallel()

	ms := outbox.NewMemoryStorage()
	defer ms.Close()
	ctx := context.Background()

	var attempts atomic.Int32
	handler := func(ctx context.Context, event *outbox.Event) error {
		attempts.Add(1)
		return errors.New("smtp down")
	}

	w, err := outbox.NewWorker(ms, handler,
		outbox.WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	event := newTestEvent("res-1")
	event.MaxRetries = 1
	require.NoError(t, ms.CreateEvent(ctx, event))

	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.Eventually(t, func() bool {
		return len(ms.DeadLetters()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestWorker_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	ms := outbox.NewMemoryStorage()
	defer ms.Close()
	ctx := context.Background()

	handler := func(ctx context.Context, event *outbox.Event) error {
		panic("boom")
	}

	w, err := outbox.NewWorker(ms, handler,
		outbox.WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	event := newTestEvent("res-1")
	event.MaxRetries = 1
	require.NoError(t, ms.CreateEvent(ctx, event))

	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.Eventually(t, func() bool {
		return len(ms.DeadLetters()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorker_SerializesPerReservation(t *testing.T) {
	t.Parallel()

	ms := outbox.NewMemoryStorage()
	defer ms.Close()
	ctx := context.Background()

	var mu sync.Mutex
	active := make(map[string]int)
	var overlap atomic.Bool
	var done atomic.Int32

	handler := func(ctx context.Context, event *outbox.Event) error {
		mu.Lock()
		active[event.ReservationID]++
		if active[event.ReservationID] > 1 {
			overlap.Store(true)
		}
		mu.Unlock()

		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		active[event.ReservationID]--
		mu.Unlock()
		done.Add(1)
		return nil
	}

	w, err := outbox.NewWorker(ms, handler,
		outbox.WithPollInterval(5*time.Millisecond),
		outbox.WithMaxConcurrent(4))
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, ms.CreateEvent(ctx, newTestEvent("res-1")))
	}

	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.Eventually(t, func() bool {
		return done.Load() == 3
	}, 3*time.Second, 20*time.Millisecond)

	assert.False(t, overlap.Load(), "events of one reservation ran concurrently")
}

func TestWorker_StartStop(t *testing.T) {
	t.Parallel()

	ms := outbox.NewMemoryStorage()
	defer ms.Close()

	w, err := outbox.NewWorker(ms, func(ctx context.Context, event *outbox.Event) error {
		return nil
	})
	require.NoError(t, err)

	require.ErrorIs(t, w.Stop(), outbox.ErrWorkerNotStarted)
	require.NoError(t, w.Start(context.Background()))
	require.ErrorIs(t, w.Start(context.Background()), outbox.ErrWorkerStarted)
	require.NoError(t, w.Stop())
}

func TestNewWorker_Validation(t *testing.T) {
	t.Parallel()

	_, err := outbox.NewWorker(nil, func(ctx context.Context, event *outbox.Event) error { return nil })
	require.ErrorIs(t, err, outbox.ErrStorageNil)

	ms := outbox.NewMemoryStorage()
	defer ms.Close()
	_, err = outbox.NewWorker(ms, nil)
	require.ErrorIs(t, err, outbox.ErrNoHandler)
}
