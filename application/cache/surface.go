// Package cache implements the read-through surface cache. Every content
// surface (hero, sidebar, category rails, article snapshots) owns an
// independent key; a read paints the latest snapshot immediately and a
// refresh reconciles with the authoritative store in the background.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gangablog-backend/application/ports"
	appErrors "gangablog-backend/pkg/errors"

	"go.uber.org/zap"
)

// Surface key namespaces
const (
	KeyHomeHero    = "home:hero"
	KeyHomeSidebar = "home:sidebar"
)

// CategoryKey builds the cache key for a category surface
func CategoryKey(slug string) string {
	return "category:" + slug
}

// ArticleKey builds the cache key for a single-article snapshot
func ArticleKey(id string) string {
	return "article:id:" + id
}

// Fetcher produces the live payload for one surface
type Fetcher func(ctx context.Context) ([]byte, error)

// SurfaceCache provides optimistic reads with background reconciliation.
// Failures on one key never touch another: the only shared state is the
// storage substrate, and it guarantees per-key atomicity.
type SurfaceCache struct {
	store    ports.CacheStore
	detector *Detector
	ttl      atomic.Int64 // nanoseconds, runtime-tunable
	logger   *zap.Logger

	// onPurge is invoked with the signature name when a corrupted entry
	// is evicted; used for metrics, may be nil
	onPurge func(signature string)
}

// NewSurfaceCache creates a surface cache. The TTL governs only whether a
// cached payload is fresh enough to skip a background refresh; it never
// blocks an optimistic read.
func NewSurfaceCache(store ports.CacheStore, detector *Detector, ttl time.Duration, logger *zap.Logger) *SurfaceCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := &SurfaceCache{
		store:    store,
		detector: detector,
		logger:   logger,
	}
	c.ttl.Store(int64(ttl))
	return c
}

// OnPurge registers a callback fired when a corrupted entry is purged
func (c *SurfaceCache) OnPurge(fn func(signature string)) {
	c.onPurge = fn
}

// SetTTL swaps the freshness window at runtime. Entries already written
// are re-judged against the new window on their next read.
func (c *SurfaceCache) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		c.ttl.Store(int64(ttl))
	}
}

// Read returns the most recent snapshot for the key, or nil on a cold
// cache. An entry past its TTL is still returned, accompanied by a
// StaleCacheWarning the caller may use to schedule a refresh. Corrupted
// entries are purged and reported as a cold cache.
func (c *SurfaceCache) Read(ctx context.Context, key string) (*ports.CacheEntry, error) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, "cache read failed")
	}

	if signature, corrupted := c.detector.Scan(entry.Payload); corrupted {
		c.logger.Warn("purging corrupted cache entry",
			zap.String("key", key),
			zap.String("signature", signature))
		if c.onPurge != nil {
			c.onPurge(signature)
		}
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			c.logger.Error("corrupted cache entry could not be deleted",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, nil
	}

	if time.Since(entry.Timestamp) > time.Duration(c.ttl.Load()) {
		return entry, fmt.Errorf("surface %s: %w", key, appErrors.StaleCacheWarning)
	}
	return entry, nil
}

// Refresh always issues the live fetch. On success the entry is
// overwritten with a fresh timestamp and the new payload returned. On
// failure the stale entry is left untouched and the error propagated;
// transient failures never evict.
func (c *SurfaceCache) Refresh(ctx context.Context, key string, fetch Fetcher) ([]byte, error) {
	payload, err := fetch(ctx)
	if err != nil {
		c.logger.Warn("surface refresh failed, keeping stale entry",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	if err := c.store.Put(ctx, key, payload); err != nil {
		// The fresh payload is still good for this render even if the
		// snapshot write failed.
		c.logger.Warn("surface cache write failed",
			zap.String("key", key), zap.Error(err))
	}
	return payload, nil
}

// ReadThrough implements stale-while-revalidate for one surface: a fresh
// snapshot is returned as-is, a stale one is returned immediately while a
// detached background refresh reconciles, and a cold cache blocks on the
// live fetch. The boolean reports whether the payload came from cache.
func (c *SurfaceCache) ReadThrough(ctx context.Context, key string, fetch Fetcher) ([]byte, bool, error) {
	entry, err := c.Read(ctx, key)
	if entry == nil {
		if err != nil {
			// Substrate failure: fall through to the live fetch rather
			// than failing the surface outright.
			c.logger.Warn("cache substrate unavailable, fetching live",
				zap.String("key", key), zap.Error(err))
		}
		payload, fetchErr := c.Refresh(ctx, key, fetch)
		if fetchErr != nil {
			return nil, false, fetchErr
		}
		return payload, false, nil
	}

	if err != nil && appErrors.IsStale(err) {
		// Optimistic paint now, reconcile in the background. The refresh
		// outlives the request, so detach it from the caller's cancelation.
		bg := context.WithoutCancel(ctx)
		go func() {
			if _, refreshErr := c.Refresh(bg, key, fetch); refreshErr != nil {
				c.logger.Debug("background refresh failed",
					zap.String("key", key), zap.Error(refreshErr))
			}
		}()
	}

	return entry.Payload, true, nil
}
