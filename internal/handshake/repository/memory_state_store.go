// Package repository provides storage for handshake state values and the local
// connection marker.
package repository

import (
	"context"
	"sync"
	"time"
)

type pendingState struct {
	value     string
	expiresAt time.Time
}

// MemoryStateStore keeps pending handshake states in process memory.
type MemoryStateStore struct {
	mu      sync.Mutex
	pending map[string]pendingState
	now     func() time.Time
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		pending: make(map[string]pendingState),
		now:     time.Now,
	}
}

// Put stores state for session, replacing any pending value.
func (s *MemoryStateStore) Put(_ context.Context, session, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, p := range s.pending {
		if !now.Before(p.expiresAt) {
			delete(s.pending, key)
		}
	}

	s.pending[session] = pendingState{value: state, expiresAt: now.Add(ttl)}
	return nil
}

// Take returns and removes the state for session. Expired values are reported as absent.
func (s *MemoryStateStore) Take(_ context.Context, session string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[session]
	if !ok {
		return "", false, nil
	}
	delete(s.pending, session)

	if !s.now().Before(p.expiresAt) {
		return "", false, nil
	}
	return p.value, true, nil
}
