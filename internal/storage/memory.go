package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process snapshot store for tests and ephemeral
// runs. It honors the same quota semantics as the SQLite store and
// counts writes so tests can assert how often a collection persisted.
type MemoryStore struct {
	mu         sync.Mutex
	values     map[string][]byte
	quotaBytes int
	putCounts  map[string]int
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryQuota sets the per-snapshot byte cap. Zero disables it.
func WithMemoryQuota(bytes int) MemoryOption {
	return func(s *MemoryStore) {
		s.quotaBytes = bytes
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		values:    make(map[string][]byte),
		putCounts: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quotaBytes > 0 && len(value) > s.quotaBytes {
		return fmt.Errorf("snapshot %q is %d bytes (cap %d): %w",
			key, len(value), s.quotaBytes, ErrQuotaExceeded)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	s.putCounts[key]++
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// PutCount returns how many times key has been written. Test hook.
func (s *MemoryStore) PutCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putCounts[key]
}
