package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gangablog-backend/application/cache"
	"gangablog-backend/application/resolver"
	"gangablog-backend/application/sync"
	"gangablog-backend/domain/content"
	"gangablog-backend/infrastructure/persistence/memory"
	"gangablog-backend/infrastructure/render"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDomain = "https://blog.gangagames.com"

type fixture struct {
	contentStore  *memory.ContentStore
	artifactStore *memory.ArtifactStore
	cacheStore    *memory.CacheStore

	articles *ArticleHandler
	shells   *ShellHandler
	surfaces *SurfaceHandler
	syncs    *SyncHandler
	sitemap  *SitemapHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	contentStore := memory.NewContentStore()
	artifactStore := memory.NewArtifactStore()
	cacheStore := memory.NewCacheStore()

	indexer := sync.NewSiteIndexer(contentStore, artifactStore, testDomain, nil, 0, logger)
	pub := sync.NewPublicationSync(
		contentStore, artifactStore, indexer, nil, render.Default(), testDomain, logger)
	res := resolver.NewResolver(artifactStore, contentStore,
		resolver.Options{Domain: testDomain}, logger)
	surfaceCache := cache.NewSurfaceCache(cacheStore, cache.NewDetector(cache.DefaultSignatures()), 30*time.Minute, logger)
	fetchers := cache.NewFetchers(contentStore, testDomain)

	shells := NewShellHandler(contentStore, testDomain, logger)
	return &fixture{
		contentStore:  contentStore,
		artifactStore: artifactStore,
		cacheStore:    cacheStore,
		articles:      NewArticleHandler(res, shells, nil, logger),
		shells:        shells,
		surfaces:      NewSurfaceHandler(surfaceCache, fetchers, nil, logger),
		syncs:         NewSyncHandler(pub, nil, logger),
		sitemap:       NewSitemapHandler(artifactStore, indexer, logger),
	}
}

func publishedItem(id, slug string) *content.Item {
	now := time.Now().UTC()
	published := now.Add(-time.Hour)
	return &content.Item{
		ID:           id,
		Title:        "Best Slots Tips",
		Slug:         slug,
		Description:  "How to pick a slot that suits you",
		Body:         "<p>Volatility matters more than theme.</p>",
		ImageURL:     "https://cdn.gangagames.com/slots.jpg",
		CategoryID:   "cat-1",
		CategorySlug: "slots",
		CategoryName: "Slots",
		State:        content.StatePublished,
		CreatedAt:    now.Add(-48 * time.Hour),
		UpdatedAt:    now,
		PublishedAt:  &published,
	}
}

// get dispatches a request through a minimal chi route so URL parameters
// resolve the same way they do in the full router
func get(t *testing.T, pattern, target string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get(pattern, handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(t *testing.T, pattern, target, body string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Post(pattern, handler)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestResolveSlug_ArtifactHit(t *testing.T) {
	f := newFixture(t)
	item := publishedItem("item-1", "best-slots-tips")
	f.contentStore.Put(item)

	require.Equal(t, http.StatusOK,
		post(t, "/api/v1/sync/{id}", "/api/v1/sync/item-1", `{"event":"publish"}`, f.syncs.Trigger).Code)

	rec := get(t, "/{slug}", "/best-slots-tips", f.articles.ResolveSlug)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=")
	assert.Contains(t, rec.Body.String(), "Best Slots Tips")
	assert.Contains(t, rec.Body.String(), testDomain+"/slots/best-slots-tips/")
}

func TestResolveSlug_CaseVariationStillHits(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))
	post(t, "/api/v1/sync/{id}", "/api/v1/sync/item-1", `{"event":"publish"}`, f.syncs.Trigger)

	rec := get(t, "/{slug}", "/Best-Slots-Tips", f.articles.ResolveSlug)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Best Slots Tips")
}

func TestResolveSlug_UnknownRedirectsToShell(t *testing.T) {
	f := newFixture(t)

	rec := get(t, "/{slug}", "/no-such-post", f.articles.ResolveSlug)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "/article?")
	assert.Contains(t, location, "slug=no-such-post")
}

func TestResolveSlug_ContentMatchRedirectsWithIdentity(t *testing.T) {
	f := newFixture(t)
	// Known item but no artifact yet: resolution should hand the shell the
	// item's identity so it can render live.
	f.contentStore.Put(publishedItem("item-9", "best-slots-tips"))

	rec := get(t, "/{slug}", "/best-slots-tips", f.articles.ResolveSlug)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "id=item-9")
}

func TestResolveCategorySlug_ServesCanonicalArtifact(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))
	post(t, "/api/v1/sync/{id}", "/api/v1/sync/item-1", `{"event":"publish"}`, f.syncs.Trigger)

	rec := get(t, "/{category}/{slug}", "/slots/best-slots-tips", f.articles.ResolveCategorySlug)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Best Slots Tips")
}

func TestArticleShell_RendersLiveItem(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))

	rec := get(t, "/article", "/article?slug=best-slots-tips&id=item-1", f.shells.Article)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Best Slots Tips")
	assert.Contains(t, rec.Body.String(), "Volatility matters")
}

func TestArticleShell_MissRendersEmptyStateNotError(t *testing.T) {
	f := newFixture(t)

	rec := get(t, "/article", "/article?slug=gone-post", f.shells.Article)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "couldn't find that post")
	assert.Contains(t, rec.Body.String(), "noindex")
}

func TestArticleShell_DraftNotServed(t *testing.T) {
	f := newFixture(t)
	draft := publishedItem("item-1", "best-slots-tips")
	draft.State = content.StateDraft
	f.contentStore.Put(draft)

	rec := get(t, "/article", "/article?id=item-1&slug=best-slots-tips", f.shells.Article)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "couldn't find that post")
}

func TestSurfaceGet_ColdCacheMiss(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))

	rec := get(t, "/api/v1/surfaces/{key}", "/api/v1/surfaces/home:hero", f.surfaces.Get)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Best Slots Tips")
}

func TestSurfaceGet_SecondReadHits(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))

	get(t, "/api/v1/surfaces/{key}", "/api/v1/surfaces/home:hero", f.surfaces.Get)
	rec := get(t, "/api/v1/surfaces/{key}", "/api/v1/surfaces/home:hero", f.surfaces.Get)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get("X-Cache"))
}

func TestSurfaceGet_UnknownKey(t *testing.T) {
	f := newFixture(t)

	rec := get(t, "/api/v1/surfaces/{key}", "/api/v1/surfaces/banner:promo", f.surfaces.Get)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncTrigger_InvalidEvent(t *testing.T) {
	f := newFixture(t)

	rec := post(t, "/api/v1/sync/{id}", "/api/v1/sync/item-1", `{"event":"archive"}`, f.syncs.Trigger)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncTrigger_FetchFailure(t *testing.T) {
	f := newFixture(t)
	// Valid event for an item the content store does not have.
	rec := post(t, "/api/v1/sync/{id}", "/api/v1/sync/missing", `{"event":"publish"}`, f.syncs.Trigger)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "FETCH")
}

func TestSyncTrigger_UnpublishRemovesArtifact(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))
	post(t, "/api/v1/sync/{id}", "/api/v1/sync/item-1", `{"event":"publish"}`, f.syncs.Trigger)

	rec := post(t, "/api/v1/sync/{id}", "/api/v1/sync/item-1", `{"event":"unpublish"}`, f.syncs.Trigger)
	require.Equal(t, http.StatusOK, rec.Code)

	resolved := get(t, "/{slug}", "/best-slots-tips", f.articles.ResolveSlug)
	assert.Equal(t, http.StatusTemporaryRedirect, resolved.Code)
}

func TestSitemap_BuildsOnDemandWhenMissing(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))

	rec := get(t, "/sitemap.xml", "/sitemap.xml", f.sitemap.Get)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, rec.Body.String(), "<urlset")
	assert.Contains(t, rec.Body.String(), testDomain+"/slots/best-slots-tips/")
}

func TestSitemap_ServesStoredIndexAfterSync(t *testing.T) {
	f := newFixture(t)
	f.contentStore.Put(publishedItem("item-1", "best-slots-tips"))
	post(t, "/api/v1/sync/{id}", "/api/v1/sync/item-1", `{"event":"publish"}`, f.syncs.Trigger)

	rec := get(t, "/sitemap.xml", "/sitemap.xml", f.sitemap.Get)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), testDomain+"/slots/best-slots-tips/")
}
