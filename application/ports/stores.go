// Package ports defines the narrow interfaces the pipeline depends on.
// Implementations live under infrastructure/persistence; the application
// layer never imports a concrete store.
package ports

import (
	"context"
	"time"

	"gangablog-backend/domain/content"
)

// ContentStore is the authoritative record of content items. The pipeline
// only reads it; missing records surface as NotFound errors, transport
// failures as anything else.
type ContentStore interface {
	// GetByID fetches the full item including category references
	GetByID(ctx context.Context, id string) (*content.Item, error)

	// GetBySlug fetches an item whose stored slug matches exactly
	GetBySlug(ctx context.Context, slug string) (*content.Item, error)

	// ListPublished returns published items most-recent-first, bounded by limit
	ListPublished(ctx context.Context, limit int) ([]*content.Item, error)

	// ListByCategory returns published items in a category, most-recent-first
	ListByCategory(ctx context.Context, categorySlug string, limit int) ([]*content.Item, error)

	// ListCategoriesInUse returns every category referenced by at least one
	// published item
	ListCategoriesInUse(ctx context.Context) ([]content.Category, error)
}

// ArtifactStore is the blob store holding rendered documents keyed by slug
type ArtifactStore interface {
	// Put writes or overwrites the artifact stored under its slug
	Put(ctx context.Context, artifact *content.Artifact) error

	// Get fetches an artifact by slug; NotFound when absent
	Get(ctx context.Context, slug string) (*content.Artifact, error)

	// Delete removes the artifact for a slug; deleting a missing slug is a no-op
	Delete(ctx context.Context, slug string) error

	// ListSlugs returns the slug of every stored artifact
	ListSlugs(ctx context.Context) ([]string, error)
}

// CacheEntry is a timestamped payload stored under a per-surface key
type CacheEntry struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Payload   []byte    `json:"payload"`
}

// CacheStore is the storage substrate beneath the surface cache. Per-key
// read/write atomicity is the only concurrency guarantee it provides.
type CacheStore interface {
	// Get fetches the entry for a key; NotFound when absent
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Put overwrites the entry for a key with a fresh timestamp
	Put(ctx context.Context, key string, payload []byte) error

	// Delete removes the entry for a key; missing keys are a no-op
	Delete(ctx context.Context, key string) error
}
