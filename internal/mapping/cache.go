package mapping

import (
	"sync"
	"time"
)

// Cache holds per-source mapping dictionaries with a TTL and explicit
// invalidate-on-write. It replaces the module-level dictionaries the legacy
// tooling kept, which went stale across concurrent callers.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data     map[string]string
	loadedAt time.Time
}

// NewCache creates a cache. A non-positive TTL disables expiry (entries live
// until invalidated).
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached dictionary for key if present and fresh.
func (c *Cache) Get(key string) (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.loadedAt) > c.ttl {
		return nil, false
	}
	return entry.data, true
}

// Put stores a dictionary under key.
func (c *Cache) Put(key string, data map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, loadedAt: time.Now()}
}

// Invalidate drops all entries for a source (both store and customer
// dictionaries).
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, storeCacheKey(source))
	delete(c.entries, customerCacheKey(source))
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func storeCacheKey(source string) string    { return source + "_store_mapping" }
func customerCacheKey(source string) string { return source + "_customer_mapping" }
