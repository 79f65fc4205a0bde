package resolver

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"gangablog-backend/domain/content"
	"gangablog-backend/infrastructure/persistence/memory"
	appErrors "gangablog-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDomain = "https://blog.gangagames.com"

func seedArtifact(t *testing.T, store *memory.ArtifactStore, slug string) {
	t.Helper()
	err := store.Put(context.Background(), &content.Artifact{
		Slug:         slug,
		HTML:         `<html><head><link rel="canonical" href="https://old.example/x/"/></head><body>doc</body></html>`,
		CanonicalURL: testDomain + "/slots/" + slug + "/",
	})
	require.NoError(t, err)
}

func seedItem(store *memory.ContentStore, id, title string) {
	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.Put(&content.Item{
		ID:           id,
		Title:        title,
		Body:         "<p>body</p>",
		CategorySlug: "slots",
		CategoryName: "Slots",
		State:        content.StatePublished,
		CreatedAt:    published,
		UpdatedAt:    published,
		PublishedAt:  &published,
	})
}

func newResolver(artifacts *memory.ArtifactStore, contents *memory.ContentStore) *Resolver {
	return NewResolver(artifacts, contents, Options{Domain: testDomain}, zap.NewNop())
}

func TestResolve_ExactArtifactHit(t *testing.T) {
	artifacts := memory.NewArtifactStore()
	contents := memory.NewContentStore()
	seedArtifact(t, artifacts, "best-slots-tips")

	res, err := newResolver(artifacts, contents).Resolve(context.Background(), "best-slots-tips")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, TierArtifact, res.Tier)
	assert.Contains(t, res.CacheControl, "max-age=14400")

	// Canonical rewritten at serve time.
	assert.True(t, res.CanonicalInDocument)
	assert.Contains(t, res.HTML, `href="`+testDomain+`/slots/best-slots-tips/"`)
	assert.NotContains(t, res.HTML, "old.example")
}

func TestResolve_CaseDivergentPath_HitsVariationTier(t *testing.T) {
	artifacts := memory.NewArtifactStore()
	contents := memory.NewContentStore()
	seedArtifact(t, artifacts, "best-slots-tips")

	res, err := newResolver(artifacts, contents).Resolve(context.Background(), "Best-Slots-Tips")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, TierVariation, res.Tier)
}

func TestResolve_SeparatorSwap_HitsVariationTier(t *testing.T) {
	artifacts := memory.NewArtifactStore()
	contents := memory.NewContentStore()
	seedArtifact(t, artifacts, "best-slots-tips")

	res, err := newResolver(artifacts, contents).Resolve(context.Background(), "best_slots_tips")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestResolve_ContentMatchWithoutArtifact_RedirectsWithIdentity(t *testing.T) {
	artifacts := memory.NewArtifactStore()
	contents := memory.NewContentStore()
	seedItem(contents, "item-1", "Best Slots Tips")

	res, err := newResolver(artifacts, contents).Resolve(context.Background(), "Best-Slots-Tips")
	require.NoError(t, err)

	assert.Equal(t, http.StatusTemporaryRedirect, res.Status)
	assert.Contains(t, res.RedirectURL, "/article?")
	assert.Contains(t, res.RedirectURL, "slug=best-slots-tips")
	assert.Contains(t, res.RedirectURL, "id=item-1")
	assert.Contains(t, res.CacheControl, "max-age=300")
}

func TestResolve_NoMatchAnywhere_StillRedirects(t *testing.T) {
	res, err := newResolver(memory.NewArtifactStore(), memory.NewContentStore()).
		Resolve(context.Background(), "never-written")
	require.NoError(t, err)

	// Never a hard 404 for a plausibly valid content path.
	assert.Equal(t, http.StatusTemporaryRedirect, res.Status)
	assert.Contains(t, res.RedirectURL, "slug=never-written")
	assert.NotContains(t, res.RedirectURL, "id=")
}

func TestResolve_ContentScanFailure_DegradesToShell(t *testing.T) {
	artifacts := memory.NewArtifactStore()
	failing := &failingContentStore{}

	res, err := NewResolver(artifacts, failing, Options{Domain: testDomain}, zap.NewNop()).
		Resolve(context.Background(), "some-article")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, res.Status)
}

func TestResolve_AllStoresUnreachable_IsUpstreamFetchError(t *testing.T) {
	_, err := NewResolver(&failingArtifactStore{}, &failingContentStore{},
		Options{Domain: testDomain}, zap.NewNop()).
		Resolve(context.Background(), "some-article")

	require.Error(t, err)
	assert.True(t, appErrors.IsUpstreamFetch(err))
	assert.False(t, appErrors.IsNotFound(err), "transport failure never reported as absence")
}

type failingContentStore struct{}

func (f *failingContentStore) GetByID(ctx context.Context, id string) (*content.Item, error) {
	return nil, errors.New("content store unreachable")
}
func (f *failingContentStore) GetBySlug(ctx context.Context, slug string) (*content.Item, error) {
	return nil, errors.New("content store unreachable")
}
func (f *failingContentStore) ListPublished(ctx context.Context, limit int) ([]*content.Item, error) {
	return nil, errors.New("content store unreachable")
}
func (f *failingContentStore) ListByCategory(ctx context.Context, categorySlug string, limit int) ([]*content.Item, error) {
	return nil, errors.New("content store unreachable")
}
func (f *failingContentStore) ListCategoriesInUse(ctx context.Context) ([]content.Category, error) {
	return nil, errors.New("content store unreachable")
}

type failingArtifactStore struct{}

func (f *failingArtifactStore) Put(ctx context.Context, artifact *content.Artifact) error {
	return errors.New("artifact store unreachable")
}
func (f *failingArtifactStore) Get(ctx context.Context, slug string) (*content.Artifact, error) {
	return nil, errors.New("artifact store unreachable")
}
func (f *failingArtifactStore) Delete(ctx context.Context, slug string) error {
	return errors.New("artifact store unreachable")
}
func (f *failingArtifactStore) ListSlugs(ctx context.Context) ([]string, error) {
	return nil, errors.New("artifact store unreachable")
}
