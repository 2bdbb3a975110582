package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryCache is an in-process Cache with lazy expiry.
type MemoryCache struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock sets the clock used for expiry. Default: the wall clock.
func WithClock(c clockwork.Clock) MemoryOption {
	return func(m *MemoryCache) {
		if c != nil {
			m.clock = c
		}
	}
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	m := &MemoryCache{
		clock:   clockwork.NewRealClock(),
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the stored value. Expired entries are removed.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return append([]byte(nil), entry.value...), true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		value:     append([]byte(nil), value...),
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, including expired ones not yet
// purged.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge removes every expired entry and returns how many were removed.
func (c *MemoryCache) Purge() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

var _ Cache = (*MemoryCache)(nil)
