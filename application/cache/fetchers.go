package cache

import (
	"context"
	"encoding/json"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	appErrors "gangablog-backend/pkg/errors"
)

// PostSnapshot is the payload shape cached for list surfaces
type PostSnapshot struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	CategorySlug string `json:"categorySlug"`
	CategoryName string `json:"categoryName"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	URL          string `json:"url"`
}

// ArticleSnapshot is the payload shape cached for a single article
type ArticleSnapshot struct {
	PostSnapshot
	Body string   `json:"body"`
	Tags []string `json:"tags,omitempty"`
}

func snapshotOf(item *content.Item, domain string) PostSnapshot {
	slug := item.CanonicalSlug()
	snap := PostSnapshot{
		ID:           item.ID,
		Title:        item.Title,
		Slug:         slug,
		Description:  item.Description,
		ImageURL:     item.ImageURL,
		CategorySlug: item.CategorySlug,
		CategoryName: item.CategoryName,
		URL:          content.CanonicalURL(domain, item.CategorySlug, slug),
	}
	if item.PublishedAt != nil {
		snap.PublishedAt = item.PublishedAt.UTC().Format("2006-01-02")
	}
	return snap
}

// Fetchers builds the live fetcher for each named surface against the
// authoritative content store
type Fetchers struct {
	contentStore ports.ContentStore
	domain       string
	sidebarLimit int
	railLimit    int
}

// NewFetchers creates the surface fetcher factory
func NewFetchers(contentStore ports.ContentStore, domain string) *Fetchers {
	return &Fetchers{
		contentStore: contentStore,
		domain:       domain,
		sidebarLimit: 6,
		railLimit:    12,
	}
}

// Hero fetches the most recent published item
func (f *Fetchers) Hero() Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		items, err := f.contentStore.ListPublished(ctx, 1)
		if err != nil {
			return nil, appErrors.NewUpstreamFetch("hero fetch failed", err)
		}
		if len(items) == 0 {
			// Explicit "no hero yet" sentinel. A zero-valued snapshot
			// would carry an empty title, which the corruption scanner
			// rightly refuses to cache.
			return []byte("null"), nil
		}
		return json.Marshal(snapshotOf(items[0], f.domain))
	}
}

// Sidebar fetches the recent-posts rail
func (f *Fetchers) Sidebar() Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		items, err := f.contentStore.ListPublished(ctx, f.sidebarLimit)
		if err != nil {
			return nil, appErrors.NewUpstreamFetch("sidebar fetch failed", err)
		}
		return marshalList(items, f.domain)
	}
}

// Category fetches the rail for one category surface
func (f *Fetchers) Category(slug string) Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		items, err := f.contentStore.ListByCategory(ctx, slug, f.railLimit)
		if err != nil {
			return nil, appErrors.NewUpstreamFetch("category fetch failed", err)
		}
		return marshalList(items, f.domain)
	}
}

// Article fetches the full snapshot of one item by identity
func (f *Fetchers) Article(id string) Fetcher {
	return func(ctx context.Context) ([]byte, error) {
		item, err := f.contentStore.GetByID(ctx, id)
		if err != nil {
			if appErrors.IsNotFound(err) {
				return nil, err
			}
			return nil, appErrors.NewUpstreamFetch("article fetch failed", err)
		}
		return json.Marshal(ArticleSnapshot{
			PostSnapshot: snapshotOf(item, f.domain),
			Body:         item.Body,
			Tags:         item.Tags,
		})
	}
}

// ForKey maps a surface key to its fetcher; unknown namespaces return nil
func (f *Fetchers) ForKey(key string) Fetcher {
	switch {
	case key == KeyHomeHero:
		return f.Hero()
	case key == KeyHomeSidebar:
		return f.Sidebar()
	case len(key) > len("category:") && key[:len("category:")] == "category:":
		return f.Category(key[len("category:"):])
	case len(key) > len("article:id:") && key[:len("article:id:")] == "article:id:":
		return f.Article(key[len("article:id:"):])
	}
	return nil
}

func marshalList(items []*content.Item, domain string) ([]byte, error) {
	snaps := make([]PostSnapshot, 0, len(items))
	for _, item := range items {
		snaps = append(snaps, snapshotOf(item, domain))
	}
	return json.Marshal(snaps)
}
