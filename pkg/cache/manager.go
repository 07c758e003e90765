package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dividendspro/edge-gateway/pkg/config"
	"github.com/dividendspro/edge-gateway/pkg/kv"
)

var (
	// ErrCacheMiss indicates no servable entry exists for the key
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Result is a servable cache read: the entry plus its freshness at read time.
type Result struct {
	Entry     *Entry
	Freshness Freshness
	Age       time.Duration
}

// Manager handles response caching against the kv store.
type Manager struct {
	store kv.Store
	now   func() time.Time
}

// NewManager creates a cache manager backed by the given store.
func NewManager(store kv.Store) *Manager {
	if store == nil {
		panic("kv store cannot be nil")
	}
	return &Manager{
		store: store,
		now:   time.Now,
	}
}

// Get retrieves a servable cache entry for path+query under the given rule.
// Returns ErrCacheMiss when the entry is absent or past its SWR window, and
// wraps store errors so callers can degrade to a miss.
func (m *Manager) Get(ctx context.Context, path, rawQuery string, rule config.CacheRule) (*Result, error) {
	data, err := m.store.Get(ctx, Key(path, rawQuery))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	now := m.now()
	freshness := entry.FreshnessAt(now, rule.TTL(), rule.SWR())
	if freshness == Expired {
		// Too stale to serve at all. The store's own TTL will evict it.
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	switch freshness {
	case Fresh:
		CacheHits.WithLabelValues("hit").Inc()
	case Stale:
		CacheHits.WithLabelValues("stale").Inc()
	}

	return &Result{
		Entry:     &entry,
		Freshness: freshness,
		Age:       entry.Age(now),
	}, nil
}

// Set stores a captured origin response. The store expiration equals the SWR
// window so entries self-evict once they are no longer servable.
func (m *Manager) Set(ctx context.Context, path, rawQuery string, entry *Entry, rule config.CacheRule) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.store.Put(ctx, Key(path, rawQuery), data, rule.SWR()); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("cache set: %w", err)
	}

	CacheWrites.Inc()
	return nil
}

// SetNow overrides the manager's clock (for testing freshness windows).
func (m *Manager) SetNow(now func() time.Time) {
	m.now = now
}
