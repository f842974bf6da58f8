package store

import (
	"sync"

	"odds-sync-service/internal/domain"
)

// CategoryCache keeps the latest match set per category in memory. Each
// category loop writes only its own slot; reads take the union. A failed
// cycle leaves its slot untouched, so stale data survives upstream trouble.
type CategoryCache struct {
	mu    sync.RWMutex
	slots map[domain.Category][]domain.Match
}

// NewCategoryCache constructs an empty cache.
func NewCategoryCache() *CategoryCache {
	return &CategoryCache{
		slots: make(map[domain.Category][]domain.Match),
	}
}

// SetCategory replaces one category's slot wholesale.
func (c *CategoryCache) SetCategory(category domain.Category, matches []domain.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[category] = matches
}

// Category returns a copy of one category's slot.
func (c *CategoryCache) Category(category domain.Category) []domain.Match {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Match(nil), c.slots[category]...)
}

// Snapshot builds the combined document from all three slots.
func (c *CategoryCache) Snapshot(timestampMS int64) domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.NewSnapshot(timestampMS,
		c.slots[domain.CategoryLive],
		c.slots[domain.CategoryToday],
		c.slots[domain.CategoryEarly],
	)
}
