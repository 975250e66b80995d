package confirm

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps confirmation slots in process memory. Used when redis is
// not configured; state does not survive a restart, which only means a
// pending prompt has to be re-issued.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	slots map[string]Pending
	now   func() time.Time
}

// NewMemoryStore returns a store expiring slots after ttl (DefaultTTL when
// ttl is zero).
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, slots: map[string]Pending{}, now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, requester string, p Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.slots[requester]; ok && !s.expired(cur) {
		return ErrAlreadyPending
	}
	p.CreatedAt = s.now().UTC()
	s.slots[requester] = p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, requester string) (Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.slots[requester]
	if !ok || s.expired(cur) {
		delete(s.slots, requester)
		return Pending{}, ErrNoPending
	}
	return cur, nil
}

func (s *MemoryStore) Clear(_ context.Context, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[requester]; !ok {
		return ErrNoPending
	}
	delete(s.slots, requester)
	return nil
}

func (s *MemoryStore) expired(p Pending) bool {
	return s.now().Sub(p.CreatedAt) > s.ttl
}
