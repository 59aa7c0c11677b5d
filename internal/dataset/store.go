package dataset

import (
	"context"
	"log"
	"sync"
	"time"

	"geoprospect/domain/core"
	"geoprospect/domain/dataset"
	apperrors "geoprospect/internal/errors"
)

type entry struct {
	ds         *dataset.Dataset
	lastAccess time.Time
}

// MemoryStore keeps uploaded datasets in memory. Entries expire after ttl
// without access; when full, the least recently used entry is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[core.DatasetID]*entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewMemoryStore creates a store. ttl <= 0 disables expiry, capacity <= 0 disables eviction.
func NewMemoryStore(ttl time.Duration, capacity int) *MemoryStore {
	return &MemoryStore{
		entries:  make(map[core.DatasetID]*entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Put stores a dataset, evicting expired entries and then the least recently used
func (s *MemoryStore) Put(ctx context.Context, ds *dataset.Dataset) error {
	if ds == nil || ds.ID == "" {
		return apperrors.InvalidInput("dataset must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeLocked(now)
	if _, exists := s.entries[ds.ID]; !exists && s.capacity > 0 {
		for len(s.entries) >= s.capacity {
			s.evictOldestLocked()
		}
	}
	s.entries[ds.ID] = &entry{ds: ds, lastAccess: now}
	return nil
}

// Get returns a dataset and refreshes its expiry
func (s *MemoryStore) Get(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, apperrors.NotFound("dataset")
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.entries, id)
		return nil, apperrors.NotFound("dataset")
	}
	e.lastAccess = now
	return e.ds, nil
}

// Delete removes a dataset; deleting an unknown ID is not an error
func (s *MemoryStore) Delete(ctx context.Context, id core.DatasetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of live datasets
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

// Purge drops expired datasets and returns how many were removed
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked(s.now())
}

// Run purges expired datasets every interval until ctx is done
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Purge(); n > 0 {
				log.Printf("[DatasetStore] Purged %d expired datasets", n)
			}
		}
	}
}

func (s *MemoryStore) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastAccess) > s.ttl
}

func (s *MemoryStore) purgeLocked(now time.Time) int {
	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) evictOldestLocked() {
	var oldestID core.DatasetID
	var oldest time.Time
	first := true
	for id, e := range s.entries {
		if first || e.lastAccess.Before(oldest) {
			oldestID, oldest, first = id, e.lastAccess, false
		}
	}
	if !first {
		log.Printf("[DatasetStore] Evicting dataset %s", oldestID)
		delete(s.entries, oldestID)
	}
}
