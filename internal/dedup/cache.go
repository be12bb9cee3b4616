// Package dedup suppresses repeated clicks from the same client on the same
// short key inside a configured window.
package dedup

import (
	"sync"
	"time"
)

// Cache maps "client:key" to the time of the last accepted click.
// Entries only influence whether a click is counted; dropping one at any
// time is safe.
type Cache struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]time.Time
}

func NewCache(window time.Duration) *Cache {
	return &Cache{
		window:  window,
		entries: make(map[string]time.Time),
	}
}

func cacheKey(clientID, key string) string {
	return clientID + ":" + key
}

// IsDuplicate reports whether a click accepted less than one window before
// now already exists for the pair.
func (c *Cache) IsDuplicate(clientID, key string, now time.Time) bool {
	c.mu.Lock()
	last, ok := c.entries[cacheKey(clientID, key)]
	c.mu.Unlock()

	return ok && now.Sub(last) < c.window
}

// Record stores now as the last accepted click, overwriting any earlier entry.
func (c *Cache) Record(clientID, key string, now time.Time) {
	c.mu.Lock()
	c.entries[cacheKey(clientID, key)] = now
	c.mu.Unlock()
}

// EvictOlderThan deletes entries recorded before cutoff and returns how many
// were removed.
func (c *Cache) EvictOlderThan(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, last := range c.entries {
		if last.Before(cutoff) {
			delete(c.entries, k)
			removed++
		}
	}

	return removed
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
