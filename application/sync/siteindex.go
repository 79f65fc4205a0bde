package sync

import (
	"context"
	"strings"
	"time"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	"gangablog-backend/domain/sitemap"

	"go.uber.org/zap"
)

// IndexSlug is the reserved artifact key the generated site index is
// stored under. Reserved keys never appear as orphan entries.
const IndexSlug = "sitemap.xml"

// SiteIndexer regenerates the site index wholesale. It is deliberately
// not incremental: the index is a cheap deterministic projection of the
// stores at the instant of regeneration, so rebuilding from scratch on
// every event avoids partial-state drift.
type SiteIndexer struct {
	contentStore  ports.ContentStore
	artifactStore ports.ArtifactStore
	logger        *zap.Logger

	domain         string
	staticPages    []string
	publishedLimit int
}

// NewSiteIndexer creates a site indexer
func NewSiteIndexer(
	contentStore ports.ContentStore,
	artifactStore ports.ArtifactStore,
	domain string,
	staticPages []string,
	publishedLimit int,
	logger *zap.Logger,
) *SiteIndexer {
	if publishedLimit <= 0 {
		publishedLimit = 500
	}
	return &SiteIndexer{
		contentStore:   contentStore,
		artifactStore:  artifactStore,
		domain:         domain,
		staticPages:    staticPages,
		publishedLimit: publishedLimit,
		logger:         logger,
	}
}

// Build assembles the index from the current store state without writing it
func (s *SiteIndexer) Build(ctx context.Context) (*sitemap.Index, error) {
	idx := sitemap.NewIndex()

	// Base page plus static utility pages.
	idx.Add(s.domain+"/", time.Time{}, sitemap.ChangeDaily, "1.0")
	for _, page := range s.staticPages {
		idx.Add(s.domain+"/"+strings.Trim(page, "/")+"/", time.Time{}, sitemap.ChangeMonthly, "0.3")
	}

	// One entry per category in use.
	categories, err := s.contentStore.ListCategoriesInUse(ctx)
	if err != nil {
		return nil, err
	}
	for _, cat := range categories {
		idx.Add(s.domain+"/"+cat.Slug+"/", time.Time{}, sitemap.ChangeWeekly, "0.6")
	}

	// One entry per published item at its canonical URL.
	items, err := s.contentStore.ListPublished(ctx, s.publishedLimit)
	if err != nil {
		return nil, err
	}
	itemSlugs := make(map[string]struct{}, len(items))
	for _, item := range items {
		slug := item.CanonicalSlug()
		itemSlugs[slug] = struct{}{}
		idx.Add(content.CanonicalURL(s.domain, item.CategorySlug, slug),
			item.LastModified(), sitemap.ChangeWeekly, "0.8")
	}

	// Orphan artifacts: rendered documents whose content record is gone
	// still serve, so they stay discoverable until cleaned up.
	slugs, err := s.artifactStore.ListSlugs(ctx)
	if err != nil {
		return nil, err
	}
	for _, slug := range slugs {
		if slug == IndexSlug {
			continue
		}
		if _, ok := itemSlugs[slug]; ok {
			continue
		}
		loc := s.domain + "/" + slug + "/"
		if artifact, err := s.artifactStore.Get(ctx, slug); err == nil && artifact.CanonicalURL != "" {
			loc = artifact.CanonicalURL
		}
		idx.Add(loc, time.Time{}, sitemap.ChangeMonthly, "0.5")
	}

	return idx, nil
}

// Regenerate builds the index and stores it under the reserved slug
func (s *SiteIndexer) Regenerate(ctx context.Context) error {
	idx, err := s.Build(ctx)
	if err != nil {
		return err
	}

	xml, err := idx.XML()
	if err != nil {
		return err
	}

	err = s.artifactStore.Put(ctx, &content.Artifact{
		Slug:       IndexSlug,
		HTML:       string(xml),
		RenderedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	s.logger.Info("site index regenerated", zap.Int("entries", idx.Len()))
	return nil
}
