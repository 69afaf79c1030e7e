package reservation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	mu           sync.RWMutex
	reservations map[string]Reservation
}

// NewMemoryStore creates a new in-memory reservation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reservations: make(map[string]Reservation),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to prevent external mutation of stored data
	return &r, nil
}

// Save writes the record and classifies the transition under one lock, so
// the previous status never has to be tracked outside this call.
func (s *MemoryStore) Save(ctx context.Context, r *Reservation) (Transition, error) {
	if r == nil {
		return Transition{}, ErrNilReservation
	}
	if r.ID == "" {
		return Transition{}, ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	r.Status = NormalizeStatus(string(r.Status))
	r.UpdatedAt = now

	prev, exists := s.reservations[r.ID]
	if !exists {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		s.stampStatusTimes(r, now)
		s.reservations[r.ID] = *r
		return Transition{Kind: TransitionCreated, To: r.Status}, nil
	}

	// Write-once timestamps survive any later transition.
	r.CreatedAt = prev.CreatedAt
	if prev.ConfirmedAt != nil {
		r.ConfirmedAt = prev.ConfirmedAt
	}
	if prev.CancelledAt != nil {
		r.CancelledAt = prev.CancelledAt
	}

	from := NormalizeStatus(string(prev.Status))
	if from == r.Status {
		s.reservations[r.ID] = *r
		return Transition{Kind: TransitionUnchanged, From: from, To: r.Status}, nil
	}

	s.stampStatusTimes(r, now)
	s.reservations[r.ID] = *r
	return Transition{Kind: TransitionStatusChanged, From: from, To: r.Status}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (*Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.reservations, id)
	return &r, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, r)
	}
	return out, nil
}

// stampStatusTimes sets ConfirmedAt/CancelledAt on first entry into the
// matching status. Already-set values are never overwritten.
func (s *MemoryStore) stampStatusTimes(r *Reservation, now time.Time) {
	switch r.Status {
	case StatusConfirmed:
		if r.ConfirmedAt == nil {
			r.ConfirmedAt = &now
		}
	case StatusCancelled:
		if r.CancelledAt == nil {
			r.CancelledAt = &now
		}
	}
}
