package cache

import (
	"context"
	"sync"
	"time"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// MemoryCache is an in-process ResponseCache with TTL expiry and a hard
// entry cap. When full, the entry closest to expiry is evicted. Expired
// entries are dropped lazily on read and by a background sweep.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryCacheEntry
	maxEntries int

	stopSweep chan struct{}
	stopOnce  sync.Once

	// now is swappable for tests.
	now func() time.Time
}

type memoryCacheEntry struct {
	result    *models.QueryResult
	expiresAt time.Time
}

// NewMemoryCache creates a cache capped at maxEntries. sweepInterval <= 0
// disables the background sweep; lazy expiry still applies.
func NewMemoryCache(maxEntries int, sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]memoryCacheEntry),
		maxEntries: maxEntries,
		stopSweep:  make(chan struct{}),
		now:        time.Now,
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

var _ ResponseCache = (*MemoryCache)(nil)

// Get implements ResponseCache.
func (c *MemoryCache) Get(ctx context.Context, key string) (*models.QueryResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.result, true, nil
}

// Set implements ResponseCache.
func (c *MemoryCache) Set(ctx context.Context, key string, result *models.QueryResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.entries[key] = memoryCacheEntry{
		result:    result,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// evictOldestLocked removes the entry closest to expiry.
func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for key, entry := range c.entries {
		if first || entry.expiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopSweep:
			return
		}
	}
}

func (c *MemoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Len returns the current entry count.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background sweep.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopSweep) })
	return nil
}
