package notifier

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu      sync.RWMutex
	byID    map[string]*Notification
	byToken map[string]string // token -> notification ID
	order   []string          // insertion order of IDs
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:    make(map[string]*Notification),
		byToken: make(map[string]string),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return ErrMissingID
	}
	if notif.TrackingToken == "" {
		return ErrMissingToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byToken[notif.TrackingToken]; exists {
		return ErrDuplicateToken
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}
	// Created unread regardless of what the caller passed in.
	notif.OperatorRead = false
	notif.OperatorReadAt = nil

	stored := notif
	s.byID[notif.ID] = &stored
	s.byToken[notif.TrackingToken] = notif.ID
	s.order = append(s.order, notif.ID)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *MemoryStorage) GetByToken(ctx context.Context, token string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStorage) List(ctx context.Context, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	// Walk newest first.
	for i := len(s.order) - 1; i >= 0; i-- {
		n := s.byID[s.order[i]]
		if opts.OnlyUnread && n.OperatorRead {
			continue
		}
		if opts.ReservationID != "" && n.ReservationID != opts.ReservationID {
			continue
		}
		if len(opts.Categories) > 0 && !slices.Contains(opts.Categories, n.Category) {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, *n)
	}

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.byID {
		if !n.OperatorRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, id := range ids {
		if n, ok := s.byID[id]; ok && !n.OperatorRead {
			n.OperatorRead = true
			n.OperatorReadAt = &now
		}
	}
	return nil
}

func (s *MemoryStorage) MarkUnread(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if n, ok := s.byID[id]; ok {
			n.OperatorRead = false
			n.OperatorReadAt = nil
		}
	}
	return nil
}

func (s *MemoryStorage) MarkReadByReservation(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, n := range s.byID {
		if n.ReservationID == reservationID && !n.OperatorRead {
			n.OperatorRead = true
			n.OperatorReadAt = &now
		}
	}
	return nil
}

func (s *MemoryStorage) DeleteByReservation(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.byID {
		if n.ReservationID == reservationID {
			delete(s.byToken, n.TrackingToken)
			delete(s.byID, id)
			if i := slices.Index(s.order, id); i >= 0 {
				s.order = slices.Delete(s.order, i, i+1)
			}
		}
	}
	return nil
}

func (s *MemoryStorage) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	n.EmailSent = true
	n.EmailSentAt = &at
	return nil
}

// MarkEmailOpened is the single conditional update backing first-open
// attribution: the check and the set happen under one lock.
func (s *MemoryStorage) MarkEmailOpened(ctx context.Context, token string, at time.Time, clientIP, userAgent string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byToken[token]
	if !ok {
		return false, ErrTokenNotFound
	}
	n := s.byID[id]
	if n.EmailOpened {
		return false, nil
	}
	n.EmailOpened = true
	n.EmailOpenedAt = &at
	n.ClientIP = clientIP
	n.ClientUserAgent = userAgent
	return true, nil
}
