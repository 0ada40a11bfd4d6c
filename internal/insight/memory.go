package insight

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

// MemoryStore is the default in-process Store. A zero ttl keeps entries forever.
type MemoryStore[T any] struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
}

func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{ttl: ttl, entries: make(map[string]memoryEntry[T])}
}

func (s *MemoryStore[T]) Get(_ context.Context, key string) (T, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		var zero T
		return zero, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		var zero T
		return zero, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore[T]) Set(_ context.Context, key string, value T) error {
	e := memoryEntry[T]{value: value}
	if s.ttl > 0 {
		e.expires = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}
