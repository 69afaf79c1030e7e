package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reservekit/pkg/engine"
	"github.com/dmitrymomot/reservekit/pkg/mailcheck"
	"github.com/dmitrymomot/reservekit/pkg/mailer"
	"github.com/dmitrymomot/reservekit/pkg/notifier"
	"github.com/dmitrymomot/reservekit/pkg/outbox"
	"github.com/dmitrymomot/reservekit/pkg/reservation"
)

// stubSender records every send and fails when err is set.
type stubSender struct {
	mu   sync.Mutex
	err  error
	sent []mailer.SendEmailParams
}

func (s *stubSender) SendEmail(ctx context.Context, params mailer.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type testEnv struct {
	engine  *engine.Engine
	store   *reservation.MemoryStore
	events  *outbox.MemoryStorage
	manager *notifier.Manager
	sender  *stubSender
}

func setupEngine(t *testing.T) *testEnv {
	t.Helper()

	store := reservation.NewMemoryStore()
	events := outbox.NewMemoryStorage()
	t.Cleanup(func() { _ = events.Close() })

	enqueuer, err := outbox.NewEnqueuer(events)
	require.NoError(t, err)

	sender := &stubSender{}
	dispatcher, err := mailer.NewDispatcher(sender, mailer.NewRegistry(mailer.Identity{Name: "Resto Pecheur"}))
	require.NoError(t, err)

	manager := notifier.NewManager(notifier.NewMemoryStorage())

	eng, err := engine.New(
		store,
		enqueuer,
		outbox.NewMemoryGuard(0),
		mailcheck.New(mailcheck.WithSkipMX()),
		dispatcher,
		manager,
		engine.WithBaseURL("https://resto.example.com"),
	)
	require.NoError(t, err)

	return &testEnv{engine: eng, store: store, events: events, manager: manager, sender: sender}
}

// drain claims every due event and runs it through the engine, simulating
// the outbox worker synchronously.
func (env *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	workerID := uuid.New()
	for {
		event, err := env.events.ClaimEvent(ctx, workerID, nil, time.Minute)
		if errors.Is(err, outbox.ErrNoEventToClaim) {
			return
		}
		require.NoError(t, err)
		if err := env.engine.Handle(ctx, event); err != nil {
			require.NoError(t, env.events.FailEvent(ctx, event.ID, err.Error()))
			continue
		}
		require.NoError(t, env.events.CompleteEvent(ctx, event.ID))
	}
}

func (env *testEnv) notifications(t *testing.T) []notifier.Notification {
	t.Helper()
	list, err := env.manager.List(context.Background(), notifier.ListOptions{})
	require.NoError(t, err)
	return list
}

func TestEngine_CreatedWithValidEmail(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	ctx := context.Background()

	tr, err := env.engine.Save(ctx, &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, reservation.TransitionCreated, tr.Kind)

	env.drain(t)

	list := env.notifications(t)
	require.Len(t, list, 1)
	notif := list[0]
	assert.Equal(t, notifier.CategoryNewReservation, notif.Category)
	assert.Equal(t, notifier.PriorityNormal, notif.Priority)
	assert.True(t, notif.EmailSent)
	require.NotNil(t, notif.EmailSentAt)
	assert.False(t, notif.OperatorRead)
	assert.NotEmpty(t, notif.TrackingToken)

	require.Equal(t, 1, env.sender.count())
	assert.Contains(t, env.sender.sent[0].Body, "https://resto.example.com/track/"+notif.TrackingToken)
}

func TestEngine_CreatedWithoutAddress(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	_, err := env.engine.Save(context.Background(), &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Bob",
		CustomerPhone: "+33 1 23 45 67 89",
		Date:          "2025-08-02",
		Time:          "20:00",
		Guests:        2,
		Status:        reservation.StatusPending,
	})
	require.NoError(t, err)

	env.drain(t)

	list := env.notifications(t)
	require.Len(t, list, 1)
	assert.Equal(t, notifier.CategoryEmailFailed, list[0].Category)
	assert.Equal(t, notifier.PriorityUrgent, list[0].Priority)
	assert.False(t, list[0].EmailSent)
	assert.Contains(t, list[0].Body, "no email address provided")
	assert.Contains(t, list[0].Body, "+33 1 23 45 67 89")
	assert.Zero(t, env.sender.count())
}

func TestEngine_RejectedAddressIsTerminal(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	_, err := env.engine.Save(context.Background(), &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Mallory",
		CustomerEmail: "user@tempmail.org",
		Date:          "2025-08-03",
		Time:          "18:30",
		Guests:        3,
		Status:        reservation.StatusPending,
	})
	require.NoError(t, err)

	env.drain(t)

	list := env.notifications(t)
	require.Len(t, list, 1)
	assert.Equal(t, notifier.CategoryEmailFailed, list[0].Category)
	assert.Equal(t, notifier.PriorityUrgent, list[0].Priority)
	assert.Zero(t, env.sender.count())
}

func TestEngine_TypoSuggestionInFollowUp(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	_, err := env.engine.Save(context.Background(), &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Carol",
		CustomerEmail: "carol@gmial.com",
		Date:          "2025-08-04",
		Time:          "19:30",
		Guests:        2,
		Status:        reservation.StatusPending,
	})
	require.NoError(t, err)

	env.drain(t)

	list := env.notifications(t)
	require.Len(t, list, 1)
	assert.Equal(t, notifier.CategoryEmailFailed, list[0].Category)
	assert.Contains(t, list[0].Body, "carol@gmail.com")
}

func TestEngine_ConfirmClearsPriorUnread(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	ctx := context.Background()

	r := &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	}
	_, err := env.engine.Save(ctx, r)
	require.NoError(t, err)
	env.drain(t)

	r.Status = reservation.StatusConfirmed
	tr, err := env.engine.Save(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, reservation.TransitionStatusChanged, tr.Kind)
	env.drain(t)

	list := env.notifications(t)
	require.Len(t, list, 2)

	var prior, current *notifier.Notification
	for i := range list {
		switch list[i].Category {
		case notifier.CategoryNewReservation:
			prior = &list[i]
		case notifier.CategoryEmailSuccess:
			current = &list[i]
		}
	}
	require.NotNil(t, prior)
	require.NotNil(t, current)
	assert.True(t, prior.OperatorRead, "prior alert must be cleared by the confirmation")
	assert.False(t, current.OperatorRead)

	require.Equal(t, 2, env.sender.count())
}

func TestEngine_CompletedIsInfoWithoutEmail(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	ctx := context.Background()

	r := &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	}
	_, err := env.engine.Save(ctx, r)
	require.NoError(t, err)
	env.drain(t)
	sendsAfterCreate := env.sender.count()

	r.Status = reservation.StatusCompleted
	_, err = env.engine.Save(ctx, r)
	require.NoError(t, err)
	env.drain(t)

	list := env.notifications(t)
	require.Len(t, list, 2)
	var info *notifier.Notification
	for i := range list {
		if list[i].Category == notifier.CategoryInfo {
			info = &list[i]
		}
	}
	require.NotNil(t, info)
	assert.Equal(t, notifier.PriorityInfo, info.Priority)
	assert.False(t, info.EmailSent)
	assert.NotEmpty(t, info.TrackingToken)
	assert.Equal(t, sendsAfterCreate, env.sender.count(), "completion sends no email")
}

func TestEngine_DeleteSendsExactlyOneCancellation(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	ctx := context.Background()

	r := &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	}
	_, err := env.engine.Save(ctx, r)
	require.NoError(t, err)
	env.drain(t)
	sendsAfterCreate := env.sender.count()

	require.NoError(t, env.engine.Delete(ctx, "res-1"))
	env.drain(t)

	assert.Equal(t, sendsAfterCreate+1, env.sender.count(), "deletion makes exactly one send attempt")

	// Linked notifications are gone; only the detached notice remains.
	list := env.notifications(t)
	require.Len(t, list, 1)
	assert.Equal(t, notifier.CategoryCancelled, list[0].Category)
	assert.Empty(t, list[0].ReservationID)
}

func TestEngine_RedeliveredEventIsSkipped(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	ctx := context.Background()

	r := &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	}
	event := outbox.NewEvent(r, reservation.Transition{
		Kind: reservation.TransitionCreated,
		To:   reservation.StatusPending,
	})

	require.NoError(t, env.engine.Handle(ctx, event))
	require.NoError(t, env.engine.Handle(ctx, event))

	assert.Len(t, env.notifications(t), 1)
	assert.Equal(t, 1, env.sender.count())
}

func TestEngine_UnchangedWriteEnqueuesNothing(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	ctx := context.Background()

	r := &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	}
	_, err := env.engine.Save(ctx, r)
	require.NoError(t, err)
	env.drain(t)

	// Legacy spelling normalizes to the same status: no new event.
	r.Status = reservation.Status("en attente")
	tr, err := env.engine.Save(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, reservation.TransitionUnchanged, tr.Kind)
	env.drain(t)

	assert.Len(t, env.notifications(t), 1)
}

func TestEngine_SendReminder(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	ctx := context.Background()

	_, err := env.engine.Save(ctx, &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusConfirmed,
	})
	require.NoError(t, err)
	env.drain(t)
	sendsBefore := env.sender.count()

	require.NoError(t, env.engine.SendReminder(ctx, "res-1"))

	assert.Equal(t, sendsBefore+1, env.sender.count())
	list := env.notifications(t)
	var reminder *notifier.Notification
	for i := range list {
		if list[i].Category == notifier.CategoryInfo {
			reminder = &list[i]
		}
	}
	require.NotNil(t, reminder)
	assert.Equal(t, notifier.PriorityInfo, reminder.Priority)
	assert.True(t, reminder.EmailSent)

	require.ErrorIs(t, env.engine.SendReminder(ctx, "missing"), reservation.ErrNotFound)
}

func TestEngine_TransportFailureIsUrgent(t *testing.T) {
	t.Parallel()

	env := setupEngine(t)
	env.sender.err = mailer.ErrTransport
	ctx := context.Background()

	_, err := env.engine.Save(ctx, &reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	})
	require.NoError(t, err)
	env.drain(t)

	list := env.notifications(t)
	require.Len(t, list, 1)
	assert.Equal(t, notifier.CategoryEmailFailed, list[0].Category)
	assert.Equal(t, notifier.PriorityUrgent, list[0].Priority)
	assert.Contains(t, list[0].Body, string(mailer.FailureTransportError))
}

// flakyStorage fails the first Create calls, then behaves normally.
type flakyStorage struct {
	notifier.Storage
	mu       sync.Mutex
	failures int
}

func (s *flakyStorage) Create(ctx context.Context, notif notifier.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("storage unavailable")
	}
	return s.Storage.Create(ctx, notif)
}

func TestEngine_RetryAfterNotificationStorageFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := reservation.NewMemoryStore()
	events := outbox.NewMemoryStorage()
	t.Cleanup(func() { _ = events.Close() })

	enqueuer, err := outbox.NewEnqueuer(events)
	require.NoError(t, err)

	sender := &stubSender{}
	dispatcher, err := mailer.NewDispatcher(sender, mailer.NewRegistry(mailer.Identity{Name: "Resto Pecheur"}))
	require.NoError(t, err)

	storage := &flakyStorage{Storage: notifier.NewMemoryStorage(), failures: 1}
	manager := notifier.NewManager(storage)

	eng, err := engine.New(
		store,
		enqueuer,
		outbox.NewMemoryGuard(0),
		mailcheck.New(mailcheck.WithSkipMX()),
		dispatcher,
		manager,
		engine.WithBaseURL("https://resto.example.com"),
	)
	require.NoError(t, err)

	event := outbox.NewEvent(&reservation.Reservation{
		ID:            "res-1",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Date:          "2025-08-01",
		Time:          "19:00",
		Guests:        4,
		Status:        reservation.StatusPending,
	}, reservation.Transition{
		Kind: reservation.TransitionCreated,
		To:   reservation.StatusPending,
	})

	// First attempt sends the email but cannot persist the notification.
	require.Error(t, eng.Handle(ctx, event))
	assert.Equal(t, 1, sender.count())

	// The retry completes the work without mailing the customer again.
	require.NoError(t, eng.Handle(ctx, event))

	list, err := manager.List(ctx, notifier.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, notifier.CategoryNewReservation, list[0].Category)
	assert.True(t, list[0].EmailSent)
	assert.Equal(t, 1, sender.count())

	// Once recorded, a later redelivery is a no-op.
	require.NoError(t, eng.Handle(ctx, event))
	list, err = manager.List(ctx, notifier.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, sender.count())
}
