package notifier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/notifier"
)

func TestManager_CreateFillsDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := notifier.NewManager(notifier.NewMemoryStorage())

	created, err := m.Create(ctx, notifier.Notification{
		Title:         "New Reservation!",
		Body:          "Alice, 4 guests",
		Category:      notifier.CategoryNewReservation,
		Priority:      notifier.PriorityNormal,
		ReservationID: "res-1",
		TrackingToken: "tok-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.OperatorRead)
}

func TestManager_ViewMarksRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := notifier.NewManager(notifier.NewMemoryStorage())

	created, err := m.Create(ctx, notifier.Notification{
		Title: "t", Body: "b",
		Category: notifier.CategoryInfo, Priority: notifier.PriorityInfo,
		TrackingToken: "tok-1",
	})
	require.NoError(t, err)

	viewed, err := m.View(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, viewed.OperatorRead)
	assert.NotNil(t, viewed.OperatorReadAt)

	count, err := m.CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestManager_MarkAllReadIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := notifier.NewManager(notifier.NewMemoryStorage())

	for i, tok := range []string{"tok-1", "tok-2", "tok-3"} {
		_, err := m.Create(ctx, notifier.Notification{
			Title: "t", Body: "b",
			Category: notifier.CategoryInfo, Priority: notifier.PriorityInfo,
			TrackingToken: tok,
			ReservationID: "res-1",
			ID:            string(rune('a' + i)),
		})
		require.NoError(t, err)
	}

	require.NoError(t, m.MarkAllRead(ctx))
	count, err := m.CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Second run over an empty unread set is a no-op.
	require.NoError(t, m.MarkAllRead(ctx))
	count, err = m.CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestManager_ClearForReservation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := notifier.NewManager(notifier.NewMemoryStorage())

	_, err := m.Create(ctx, notifier.Notification{
		Title: "alert", Body: "b",
		Category: notifier.CategoryNewReservation, Priority: notifier.PriorityNormal,
		ReservationID: "res-1", TrackingToken: "tok-1",
	})
	require.NoError(t, err)
	_, err = m.Create(ctx, notifier.Notification{
		Title: "other", Body: "b",
		Category: notifier.CategoryNewReservation, Priority: notifier.PriorityNormal,
		ReservationID: "res-2", TrackingToken: "tok-2",
	})
	require.NoError(t, err)

	require.NoError(t, m.ClearForReservation(ctx, "res-1"))

	count, err := m.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
