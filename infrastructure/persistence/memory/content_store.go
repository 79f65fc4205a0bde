// Package memory provides in-memory store implementations used by local
// development and tests. Guarded by RWMutex; good enough for a single
// process, never for production.
package memory

import (
	"context"
	"sort"
	"sync"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	appErrors "gangablog-backend/pkg/errors"
)

// ContentStore is an in-memory implementation of ports.ContentStore
type ContentStore struct {
	mu    sync.RWMutex
	items map[string]*content.Item
}

// Compile-time interface check
var _ ports.ContentStore = (*ContentStore)(nil)

// NewContentStore creates an empty in-memory content store
func NewContentStore() *ContentStore {
	return &ContentStore{items: make(map[string]*content.Item)}
}

// Put inserts or replaces an item. Test/seed helper; the pipeline itself
// never writes content.
func (s *ContentStore) Put(item *content.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *item
	s.items[item.ID] = &copied
}

// Remove deletes an item by ID. Test/seed helper.
func (s *ContentStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// GetByID fetches an item by identity
func (s *ContentStore) GetByID(ctx context.Context, id string) (*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, appErrors.NewNotFound("content item not found: " + id)
	}
	copied := *item
	return &copied, nil
}

// GetBySlug fetches an item whose canonical slug matches exactly
func (s *ContentStore) GetBySlug(ctx context.Context, slug string) (*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.CanonicalSlug() == slug {
			copied := *item
			return &copied, nil
		}
	}
	return nil, appErrors.NewNotFound("content item not found for slug: " + slug)
}

// ListPublished returns published items most-recent-first
func (s *ContentStore) ListPublished(ctx context.Context, limit int) ([]*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*content.Item
	for _, item := range s.items {
		if item.IsPublished() {
			copied := *item
			out = append(out, &copied)
		}
	}
	sortRecentFirst(out)
	return bounded(out, limit), nil
}

// ListByCategory returns published items in a category, most-recent-first
func (s *ContentStore) ListByCategory(ctx context.Context, categorySlug string, limit int) ([]*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*content.Item
	for _, item := range s.items {
		if item.IsPublished() && item.CategorySlug == categorySlug {
			copied := *item
			out = append(out, &copied)
		}
	}
	sortRecentFirst(out)
	return bounded(out, limit), nil
}

// ListCategoriesInUse returns the categories referenced by published items
func (s *ContentStore) ListCategoriesInUse(ctx context.Context) ([]content.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]content.Category)
	for _, item := range s.items {
		if item.IsPublished() && item.CategorySlug != "" {
			seen[item.CategorySlug] = content.Category{
				ID:   item.CategoryID,
				Slug: item.CategorySlug,
				Name: item.CategoryName,
			}
		}
	}

	out := make([]content.Category, 0, len(seen))
	for _, cat := range seen {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func sortRecentFirst(items []*content.Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastModified().After(items[j].LastModified())
	})
}

func bounded(items []*content.Item, limit int) []*content.Item {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
