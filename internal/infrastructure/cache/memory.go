package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gadai/backend/internal/domain"
)

const defaultCleanupInterval = 10 * time.Minute

// entry is one cached JSON document with its expiry
type entry struct {
	payload   []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// Values are stored as JSON so callers decode into their own types,
// the same contract a Redis-backed cache would offer.
type MemoryCache struct {
	entries map[string]entry
	mutex   sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries
// every cleanupInterval (10 minutes when zero)
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	c := &MemoryCache{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go c.sweep(cleanupInterval)

	return c
}

// Get returns the JSON payload stored under key
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, domain.ErrCacheMiss
	}

	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out, nil
}

// Set stores value as JSON under key for ttl
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.entries[key]
	return ok && !e.expired(time.Now()), nil
}

// Size returns the number of stored entries, expired ones included until swept
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Clear removes all entries
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]entry)
}

// Close stops the background sweeper. Safe to call more than once.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.removeExpired(now)
		}
	}
}

func (c *MemoryCache) removeExpired(now time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}
