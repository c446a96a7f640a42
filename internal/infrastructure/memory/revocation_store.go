package memory

import (
	"context"
	"sync"
	"time"
)

type Clock interface{ Now() time.Time }

// RevocationStore keeps revoked token keys in process memory. Used when no
// redis is configured; revocations do not survive restarts.
type RevocationStore struct {
	mu    sync.Mutex
	clock Clock
	until map[string]time.Time
}

func NewRevocationStore(clock Clock) *RevocationStore {
	return &RevocationStore{clock: clock, until: map[string]time.Time{}}
}

func (s *RevocationStore) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.until[key] = now.Add(ttl)

	// drop expired entries while we hold the lock
	for k, exp := range s.until {
		if !now.Before(exp) {
			delete(s.until, k)
		}
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.until[key]
	if !ok {
		return false, nil
	}
	if !s.clock.Now().Before(exp) {
		delete(s.until, key)
		return false, nil
	}
	return true, nil
}
