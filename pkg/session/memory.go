package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and local runs without redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	p       Principal
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, p Principal, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = memoryEntry{p: p, expires: s.now().Add(ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok || s.now().After(e.expires) {
		delete(s.sessions, token)
		return Principal{}, ErrNoSession
	}
	return e.p, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
