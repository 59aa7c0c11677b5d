package cache

import (
	"context"
	"sync"
	"time"

	"geoprospect/domain/geochem"
)

type memoryItem struct {
	analysis *geochem.Analysis
	expires  time.Time
	added    time.Time
}

// MemoryCache is a bounded in-process analysis cache
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[string]memoryItem
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewMemoryCache creates a cache. ttl <= 0 keeps entries until evicted.
func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	return &MemoryCache{
		items:    make(map[string]memoryItem),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns a cached analysis
func (c *MemoryCache) Get(ctx context.Context, key string) (*geochem.Analysis, bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && c.now().After(item.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return item.analysis, true, nil
}

// Set stores an analysis, evicting the oldest entry when full
func (c *MemoryCache) Set(ctx context.Context, key string, analysis *geochem.Analysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.items[key]; !exists && c.capacity > 0 && len(c.items) >= c.capacity {
		c.evictOldestLocked()
	}
	item := memoryItem{analysis: analysis, added: now}
	if c.ttl > 0 {
		item.expires = now.Add(c.ttl)
	}
	c.items[key] = item
	return nil
}

// Len returns the number of cached entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, item := range c.items {
		if oldestKey == "" || item.added.Before(oldest) {
			oldestKey, oldest = k, item.added
		}
	}
	delete(c.items, oldestKey)
}
