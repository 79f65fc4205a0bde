package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gangablog-backend/domain/content"
	"gangablog-backend/infrastructure/persistence/memory"
	appErrors "gangablog-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCache(ttl time.Duration) (*SurfaceCache, *memory.CacheStore) {
	store := memory.NewCacheStore()
	return NewSurfaceCache(store, NewDetector(nil), ttl, zap.NewNop()), store
}

func TestRead_ColdCache(t *testing.T) {
	cache, _ := newCache(time.Minute)

	entry, err := cache.Read(context.Background(), KeyHomeHero)
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRead_IdempotentBetweenRefreshes(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Minute)
	require.NoError(t, store.Put(ctx, KeyHomeHero, []byte(`{"title":"Hero"}`)))

	first, err := cache.Read(ctx, KeyHomeHero)
	require.NoError(t, err)
	second, err := cache.Read(ctx, KeyHomeHero)
	require.NoError(t, err)

	assert.Equal(t, first.Payload, second.Payload, "byte-identical without an intervening refresh")
}

func TestRead_StaleEntryStillReturned(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Nanosecond)
	require.NoError(t, store.Put(ctx, KeyHomeHero, []byte(`{"title":"Old Hero"}`)))
	time.Sleep(time.Millisecond)

	entry, err := cache.Read(ctx, KeyHomeHero)
	require.NotNil(t, entry, "TTL never blocks the optimistic read")
	assert.Equal(t, []byte(`{"title":"Old Hero"}`), entry.Payload)
	assert.True(t, appErrors.IsStale(err))
}

func TestRead_CorruptedEntryPurged(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Minute)

	var purged atomic.Value
	cache.OnPurge(func(signature string) { purged.Store(signature) })

	require.NoError(t, store.Put(ctx, KeyHomeHero,
		[]byte(`{"title":"Hero","imageUrl":"https://cdn.x/assets/placeholder.png"}`)))

	entry, err := cache.Read(ctx, KeyHomeHero)
	assert.NoError(t, err)
	assert.Nil(t, entry, "placeholder payload treated as cold cache")
	assert.Equal(t, "placeholder_image", purged.Load())

	// Entry is gone from the substrate, not just skipped.
	_, getErr := store.Get(ctx, KeyHomeHero)
	assert.True(t, appErrors.IsNotFound(getErr))
}

func TestRead_EmptyTitlePurged(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Minute)
	require.NoError(t, store.Put(ctx, "category:slots", []byte(`[{"title":"","slug":"x"}]`)))

	entry, err := cache.Read(ctx, "category:slots")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRefresh_SuccessOverwrites(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Minute)
	require.NoError(t, store.Put(ctx, KeyHomeHero, []byte(`{"title":"Old"}`)))

	payload, err := cache.Refresh(ctx, KeyHomeHero, func(context.Context) ([]byte, error) {
		return []byte(`{"title":"New"}`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"title":"New"}`), payload)

	entry, err := store.Get(ctx, KeyHomeHero)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"title":"New"}`), entry.Payload)
}

func TestRefresh_FailureKeepsStaleEntry(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Minute)
	require.NoError(t, store.Put(ctx, KeyHomeHero, []byte(`{"title":"Stale"}`)))

	_, err := cache.Refresh(ctx, KeyHomeHero, func(context.Context) ([]byte, error) {
		return nil, errors.New("origin down")
	})
	require.Error(t, err)

	entry, getErr := store.Get(ctx, KeyHomeHero)
	require.NoError(t, getErr)
	assert.Equal(t, []byte(`{"title":"Stale"}`), entry.Payload, "transient failure never evicts")
}

func TestReadThrough_ColdCacheBlocksOnLiveFetch(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Minute)

	payload, fromCache, err := cache.ReadThrough(ctx, KeyHomeHero, func(context.Context) ([]byte, error) {
		return []byte(`{"title":"Fresh"}`), nil
	})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, []byte(`{"title":"Fresh"}`), payload)

	// The live fetch persisted a snapshot for the next visit.
	entry, err := store.Get(ctx, KeyHomeHero)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"title":"Fresh"}`), entry.Payload)
}

func TestReadThrough_FreshEntrySkipsFetch(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Hour)
	require.NoError(t, store.Put(ctx, KeyHomeHero, []byte(`{"title":"Cached"}`)))

	var fetched atomic.Bool
	payload, fromCache, err := cache.ReadThrough(ctx, KeyHomeHero, func(context.Context) ([]byte, error) {
		fetched.Store(true)
		return []byte(`{"title":"Live"}`), nil
	})
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, []byte(`{"title":"Cached"}`), payload)
	assert.False(t, fetched.Load(), "fresh entry skips the background refresh")
}

func TestReadThrough_StaleEntryPaintsThenReconciles(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Nanosecond)
	require.NoError(t, store.Put(ctx, KeyHomeHero, []byte(`{"title":"Stale"}`)))
	time.Sleep(time.Millisecond)

	refreshed := make(chan struct{})
	payload, fromCache, err := cache.ReadThrough(ctx, KeyHomeHero, func(context.Context) ([]byte, error) {
		defer close(refreshed)
		return []byte(`{"title":"Reconciled"}`), nil
	})
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, []byte(`{"title":"Stale"}`), payload, "stale snapshot paints immediately")

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("background refresh never ran")
	}

	require.Eventually(t, func() bool {
		entry, err := store.Get(ctx, KeyHomeHero)
		return err == nil && string(entry.Payload) == `{"title":"Reconciled"}`
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReadThrough_IndependentKeys(t *testing.T) {
	ctx := context.Background()
	cache, store := newCache(time.Hour)
	require.NoError(t, store.Put(ctx, CategoryKey("slots"), []byte(`{"title":"Slots"}`)))

	// A failing refresh on one surface leaves the other's entry intact.
	_, _, err := cache.ReadThrough(ctx, KeyHomeHero, func(context.Context) ([]byte, error) {
		return nil, errors.New("hero origin down")
	})
	require.Error(t, err)

	payload, fromCache, err := cache.ReadThrough(ctx, CategoryKey("slots"), func(context.Context) ([]byte, error) {
		return []byte(`ignored`), nil
	})
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, []byte(`{"title":"Slots"}`), payload)
}

func TestFetchers_ForKey(t *testing.T) {
	store := memory.NewContentStore()
	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.Put(&content.Item{
		ID:           "item-1",
		Title:        "Best Slots Tips",
		Description:  "tips",
		Body:         "<p>body</p>",
		ImageURL:     "https://cdn.gangagames.com/covers/item-1.jpg",
		CategorySlug: "slots",
		CategoryName: "Slots",
		State:        content.StatePublished,
		CreatedAt:    published,
		UpdatedAt:    published,
		PublishedAt:  &published,
	})

	fetchers := NewFetchers(store, "https://blog.gangagames.com")

	cases := []string{KeyHomeHero, KeyHomeSidebar, CategoryKey("slots"), ArticleKey("item-1")}
	for _, key := range cases {
		fetch := fetchers.ForKey(key)
		require.NotNil(t, fetch, key)
		payload, err := fetch(context.Background())
		require.NoError(t, err, key)
		assert.Contains(t, string(payload), "best-slots-tips", key)
	}

	assert.Nil(t, fetchers.ForKey("unknown:namespace"))
}

func TestFetchers_HeroPayloadShape(t *testing.T) {
	store := memory.NewContentStore()
	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.Put(&content.Item{
		ID:           "item-1",
		Title:        "Best Slots Tips",
		ImageURL:     "https://cdn.gangagames.com/covers/item-1.jpg",
		CategorySlug: "slots",
		State:        content.StatePublished,
		PublishedAt:  &published,
	})

	payload, err := NewFetchers(store, "https://blog.gangagames.com").Hero()(context.Background())
	require.NoError(t, err)

	var snap PostSnapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	assert.Equal(t, "best-slots-tips", snap.Slug)
	assert.Equal(t, "https://blog.gangagames.com/slots/best-slots-tips/", snap.URL)

	// The snapshot passes its own corruption scan.
	_, corrupted := NewDetector(nil).Scan(payload)
	assert.False(t, corrupted)
}

func TestFetchers_HeroEmptySiteIsCacheable(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(time.Hour)
	hero := NewFetchers(memory.NewContentStore(), "https://blog.gangagames.com").Hero()

	payload, fromCache, err := cache.ReadThrough(ctx, KeyHomeHero, hero)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, []byte("null"), payload)

	// The sentinel survives the corruption scan, so the second visit
	// serves from cache instead of purging and refetching.
	payload, fromCache, err = cache.ReadThrough(ctx, KeyHomeHero, hero)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, []byte("null"), payload)
}
