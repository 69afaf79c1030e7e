package outbox

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements Storage for testing and local development.
type MemoryStorage struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*Event
	dlq    map[uuid.UUID]*EventDlq

	byStatus map[EventStatus][]uuid.UUID

	lockTicker *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

// NewMemoryStorage creates a new in-memory outbox storage.
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		events:   make(map[uuid.UUID]*Event),
		dlq:      make(map[uuid.UUID]*EventDlq),
		byStatus: make(map[EventStatus][]uuid.UUID),
		done:     make(chan struct{}),
	}

	// Recover events locked by crashed workers.
	ms.lockTicker = time.NewTicker(time.Second)
	go ms.lockExpirationManager()

	return ms
}

// Close stops the background lock expiration goroutine.
func (ms *MemoryStorage) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.done)
		ms.lockTicker.Stop()
	})
	return nil
}

// CreateEvent implements EnqueuerStorage.
func (ms *MemoryStorage) CreateEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return ErrNilEvent
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Clone to prevent external modifications.
	eventCopy := *event
	ms.events[event.ID] = &eventCopy
	ms.byStatus[event.Status] = append(ms.byStatus[event.Status], event.ID)

	return nil
}

// ClaimEvent implements WorkerStorage. Events are claimed oldest first so
// transitions of one reservation are delivered roughly in order; the busy
// list keeps two events of the same reservation from being in flight at
// once.
func (ms *MemoryStorage) ClaimEvent(ctx context.Context, workerID uuid.UUID, busy []string, lockDuration time.Duration) (*Event, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Event

	for _, id := range ms.byStatus[EventStatusPending] {
		event := ms.events[id]

		if event.ScheduledAt.After(now) {
			continue
		}
		if event.LockedUntil != nil && event.LockedUntil.After(now) {
			continue
		}
		if event.ReservationID != "" && slices.Contains(busy, event.ReservationID) {
			continue
		}
		if best == nil || event.CreatedAt.Before(best.CreatedAt) {
			best = event
		}
	}

	if best == nil {
		return nil, ErrNoEventToClaim
	}

	lockUntil := now.Add(lockDuration)
	best.Status = EventStatusProcessing
	best.LockedUntil = &lockUntil
	best.LockedBy = &workerID

	ms.removeFromStatusIndex(best.ID, EventStatusPending)
	ms.byStatus[EventStatusProcessing] = append(ms.byStatus[EventStatusProcessing], best.ID)

	eventCopy := *best
	return &eventCopy, nil
}

// CompleteEvent implements WorkerStorage.
func (ms *MemoryStorage) CompleteEvent(ctx context.Context, eventID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	event, exists := ms.events[eventID]
	if !exists {
		return ErrEventNotFound
	}

	now := time.Now()
	event.Status = EventStatusCompleted
	event.ProcessedAt = &now
	event.LockedUntil = nil
	event.LockedBy = nil

	ms.removeFromStatusIndex(eventID, EventStatusProcessing)
	ms.byStatus[EventStatusCompleted] = append(ms.byStatus[EventStatusCompleted], eventID)

	return nil
}

// FailEvent implements WorkerStorage. While retries remain the event goes
// back to pending with linear backoff (30s, 60s, 90s...); otherwise it is
// marked failed and awaits MoveToDLQ.
func (ms *MemoryStorage) FailEvent(ctx context.Context, eventID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	event, exists := ms.events[eventID]
	if !exists {
		return ErrEventNotFound
	}

	event.RetryCount++
	event.Error = &errorMsg
	event.LockedUntil = nil
	event.LockedBy = nil

	ms.removeFromStatusIndex(eventID, EventStatusProcessing)
	if event.RetryCount >= event.MaxRetries {
		event.Status = EventStatusFailed
		ms.byStatus[EventStatusFailed] = append(ms.byStatus[EventStatusFailed], eventID)
	} else {
		event.Status = EventStatusPending
		ms.byStatus[EventStatusPending] = append(ms.byStatus[EventStatusPending], eventID)
		backoff := time.Duration(event.RetryCount) * 30 * time.Second
		event.ScheduledAt = time.Now().Add(backoff)
	}

	return nil
}

// MoveToDLQ implements WorkerStorage.
func (ms *MemoryStorage) MoveToDLQ(ctx context.Context, eventID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	event, exists := ms.events[eventID]
	if !exists {
		return ErrEventNotFound
	}

	entry := &EventDlq{
		ID:            uuid.New(),
		EventID:       event.ID,
		ReservationID: event.ReservationID,
		Kind:          event.Kind,
		Signature:     event.Signature,
		Reservation:   event.Reservation,
		RetryCount:    event.RetryCount,
		FailedAt:      time.Now(),
		CreatedAt:     event.CreatedAt,
	}
	if event.Error != nil {
		entry.Error = *event.Error
	}
	ms.dlq[entry.ID] = entry

	ms.removeFromStatusIndex(eventID, event.Status)
	delete(ms.events, eventID)

	return nil
}

// DeadLetters returns a snapshot of the dead letter queue.
func (ms *MemoryStorage) DeadLetters() []EventDlq {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]EventDlq, 0, len(ms.dlq))
	for _, entry := range ms.dlq {
		out = append(out, *entry)
	}
	return out
}

func (ms *MemoryStorage) removeFromStatusIndex(eventID uuid.UUID, status EventStatus) {
	ms.byStatus[status] = slices.DeleteFunc(ms.byStatus[status], func(id uuid.UUID) bool {
		return id == eventID
	})
}

// lockExpirationManager resets events whose worker lock has expired back to
// pending so they can be claimed again. Keeps claimed events from being
// lost when a worker dies mid-flight.
func (ms *MemoryStorage) lockExpirationManager() {
	for {
		select {
		case <-ms.lockTicker.C:
			ms.expireLocks()
		case <-ms.done:
			return
		}
	}
}

func (ms *MemoryStorage) expireLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Collect first: removeFromStatusIndex rewrites the slice being
	// iterated, which would leave zeroed ids under the cursor.
	now := time.Now()
	var expired []uuid.UUID
	for _, id := range ms.byStatus[EventStatusProcessing] {
		event := ms.events[id]
		if event.LockedUntil != nil && event.LockedUntil.Before(now) {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		event := ms.events[id]
		event.Status = EventStatusPending
		event.LockedUntil = nil
		event.LockedBy = nil

		ms.removeFromStatusIndex(id, EventStatusProcessing)
		ms.byStatus[EventStatusPending] = append(ms.byStatus[EventStatusPending], id)
	}
}
