package render

import (
	"fmt"
	"image"
	"sync"
)

// Cache is the shared in-memory render cache, keyed by
// (traitID, seed, width, height). Read-many/write-once per key:
// entries are immutable once stored.
//
// Injected explicitly into the Dispatcher (never a package-level
// singleton) so tests get a fresh cache per test.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*image.RGBA
}

// NewCache creates an empty render cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*image.RGBA)}
}

// CacheKey builds the canonical cache key for a trait render.
func CacheKey(traitID, seed string, width, height int) string {
	return fmt.Sprintf("%s\x00%s\x00%dx%d", traitID, seed, width, height)
}

// Get returns the cached surface for key, if present.
func (c *Cache) Get(key string) (*image.RGBA, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	surface, ok := c.entries[key]
	return surface, ok
}

// Put stores a surface. Last writer wins; since renders are pure
// functions of the key's inputs, racing writers store identical
// content.
func (c *Cache) Put(key string, surface *image.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = surface
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
