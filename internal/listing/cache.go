// Package listing caches the public storefront item list. A monotonically
// increasing fetch generation guards against refreshes that resolve out of
// order: results from an older refresh never overwrite a newer snapshot.
package listing

import (
	"sync"

	"consignpos/m/domain"
)

// Cache holds the latest storefront listing snapshot.
type Cache struct {
	mu     sync.RWMutex
	gen    uint64
	loaded bool
	items  []domain.Item
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Begin marks the start of a refresh and returns its generation. The fetch
// itself is not cancelled when superseded; only its result is ignored.
func (c *Cache) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// Complete installs the results of the refresh started at gen. Returns false
// when the refresh is stale (a newer Begin or Invalidate happened since).
func (c *Cache) Complete(gen uint64, items []domain.Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.items = items
	c.loaded = true
	return true
}

// Invalidate drops the snapshot and bumps the generation so any in-flight
// refresh is discarded. Called after item mutations.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loaded = false
	c.items = nil
}

// Get returns the cached snapshot, if one is loaded.
func (c *Cache) Get() ([]domain.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return c.items, true
}
