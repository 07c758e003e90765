package kv

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process Store implementation. It backs local
// development and tests; production deployments use RedisStore so counters
// and cache entries are shared across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero = never expires
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) get(key string) (memoryEntry, bool) {
	ent, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !ent.expiresAt.IsZero() && s.now().After(ent.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return ent, true
}

// Get returns the value stored under key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return ent.value, nil
}

// Put stores value under key with the given TTL.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := memoryEntry{value: value}
	if ttl > 0 {
		ent.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = ent
	return nil
}

// Incr atomically increments the counter under key and returns the new value.
func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	ent, ok := s.get(key)
	if ok {
		parsed, err := strconv.ParseInt(string(ent.value), 10, 64)
		if err == nil {
			count = parsed
		}
	}
	count++

	next := memoryEntry{value: []byte(strconv.FormatInt(count, 10))}
	if ok {
		// Keep the expiration set on first increment.
		next.expiresAt = ent.expiresAt
	} else if ttl > 0 {
		next.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = next
	return count, nil
}

// SetNow overrides the store's clock (for testing expiration).
func (s *MemoryStore) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Len returns the number of live entries (for testing).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
