package memory

import (
	"context"
	"sync"
	"time"

	"gangablog-backend/application/ports"
	appErrors "gangablog-backend/pkg/errors"
)

// CacheStore is an in-memory implementation of ports.CacheStore. Entries
// are never aged out here: staleness is a read-side decision made by the
// surface cache, and stale entries must survive failed refreshes.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]*ports.CacheEntry
}

// Compile-time interface check
var _ ports.CacheStore = (*CacheStore)(nil)

// NewCacheStore creates an empty in-memory cache store
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]*ports.CacheEntry)}
}

// Get fetches the entry for a key
func (s *CacheStore) Get(ctx context.Context, key string) (*ports.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, appErrors.NewNotFound("cache entry not found: " + key)
	}

	copied := *entry
	copied.Payload = append([]byte(nil), entry.Payload...)
	return &copied, nil
}

// Put overwrites the entry for a key with a fresh timestamp
func (s *CacheStore) Put(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return appErrors.NewValidation("cache key required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &ports.CacheEntry{
		Key:       key,
		Timestamp: time.Now().UTC(),
		Payload:   append([]byte(nil), payload...),
	}
	return nil
}

// Delete removes the entry for a key; missing keys are a no-op
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
