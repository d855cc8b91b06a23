package localstore

import (
	"context"
	"sync"
)

// MemoryStore holds the session in process memory only. Used in tests and
// when durable persistence is explicitly disabled.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  []byte
	set   bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveSession(_ context.Context, token string, userJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = append([]byte(nil), userJSON...)
	s.set = true
	return nil
}

func (s *MemoryStore) LoadSession(_ context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return "", nil, ErrNoSession
	}
	return s.token, append([]byte(nil), s.user...), nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.set = false
	return nil
}

func (s *MemoryStore) Close() error { return nil }
