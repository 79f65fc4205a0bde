// Package sync keeps the artifact store and the site index coherent with
// the authoritative content record. Every publication-affecting event runs
// the same sequence: mutate the artifact first, then regenerate the index,
// so the index never advertises a URL with no backing document for longer
// than one synchronization cycle.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	"gangablog-backend/infrastructure/render"
	appErrors "gangablog-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublicationSync renders published items into static artifacts and keeps
// the site index in step. Re-running any event with unchanged input is
// idempotent apart from explicit timestamp fields.
type PublicationSync struct {
	contentStore  ports.ContentStore
	artifactStore ports.ArtifactStore
	indexer       *SiteIndexer
	publisher     ports.EventPublisher
	template      *render.Template
	logger        *zap.Logger

	domain       string
	relatedLimit int
	sidebarLimit int
}

// NewPublicationSync creates a publication synchronizer. The publisher may
// be nil when no event bus is configured.
func NewPublicationSync(
	contentStore ports.ContentStore,
	artifactStore ports.ArtifactStore,
	indexer *SiteIndexer,
	publisher ports.EventPublisher,
	template *render.Template,
	domain string,
	logger *zap.Logger,
) *PublicationSync {
	return &PublicationSync{
		contentStore:  contentStore,
		artifactStore: artifactStore,
		indexer:       indexer,
		publisher:     publisher,
		template:      template,
		domain:        domain,
		relatedLimit:  4,
		sidebarLimit:  6,
		logger:        logger,
	}
}

// Sync applies one publication-affecting event to the artifact store and
// the site index
func (p *PublicationSync) Sync(ctx context.Context, itemID string, event ports.SyncEventType) error {
	if !event.IsValid() {
		return appErrors.NewValidation(fmt.Sprintf("unknown sync event %q", event))
	}

	var (
		slug string
		err  error
	)
	switch event {
	case ports.SyncPublish, ports.SyncUpdate:
		slug, err = p.syncPublish(ctx, itemID, event)
	case ports.SyncUnpublish, ports.SyncDelete:
		slug, err = p.syncRemoval(ctx, itemID, event)
	}
	if err != nil {
		return err
	}
	if slug == "" {
		// No-op: draft update, or removal of an already-gone record.
		return nil
	}

	if err := p.indexer.Regenerate(ctx); err != nil {
		// The artifact already reached its end state. The index is cheap
		// and idempotent to regenerate, so report and let the caller retry.
		return appErrors.NewPartialSync("site index regeneration failed", err).
			WithContext(itemID, slug, "siteindex")
	}

	p.emit(ctx, event, itemID, slug)
	return nil
}

// RegenerateIndex rebuilds the site index alone, for explicit retries
// after a PartialSync report
func (p *PublicationSync) RegenerateIndex(ctx context.Context) error {
	return p.indexer.Regenerate(ctx)
}

// syncPublish renders and stores the artifact for a published item.
// Returns the slug, or "" for the silent draft no-op.
func (p *PublicationSync) syncPublish(ctx context.Context, itemID string, event ports.SyncEventType) (string, error) {
	item, err := p.contentStore.GetByID(ctx, itemID)
	if err != nil {
		return "", appErrors.NewFetch("content record unreadable", err).
			WithContext(itemID, "", "fetch")
	}

	if !item.IsPublished() {
		// Update-while-draft must not create an artifact.
		p.logger.Info("sync skipped, item not published",
			zap.String("itemID", itemID),
			zap.String("state", string(item.State)))
		return "", nil
	}

	slug := item.CanonicalSlug()
	doc := p.buildDocument(ctx, item, slug)

	html, err := p.template.Render(doc)
	if err != nil {
		return "", appErrors.Wrap(err, "render failed")
	}

	artifact := &content.Artifact{
		Slug:         slug,
		HTML:         html,
		CanonicalURL: doc.CanonicalURL,
		Description:  item.Description,
		ImageURL:     item.ImageURL,
		RenderedAt:   time.Now().UTC(),
	}
	if err := p.artifactStore.Put(ctx, artifact); err != nil {
		return "", appErrors.NewArtifactWrite("artifact write failed", err).
			WithContext(itemID, slug, string(event))
	}

	p.logger.Info("artifact written",
		zap.String("itemID", itemID),
		zap.String("slug", slug),
		zap.String("event", string(event)))
	return slug, nil
}

// syncRemoval deletes the artifact for an unpublished or deleted item.
// Returns the slug, or "" when the record is already gone.
func (p *PublicationSync) syncRemoval(ctx context.Context, itemID string, event ports.SyncEventType) (string, error) {
	item, err := p.contentStore.GetByID(ctx, itemID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			// Record already deleted; without it there is no slug to act
			// on, so the removal is a no-op success.
			p.logger.Info("removal sync no-op, record gone", zap.String("itemID", itemID))
			return "", nil
		}
		return "", appErrors.NewFetch("content record unreadable", err).
			WithContext(itemID, "", "fetch")
	}

	slug := item.CanonicalSlug()
	if err := p.artifactStore.Delete(ctx, slug); err != nil {
		if appErrors.IsNotFound(err) {
			// Already absent, either never rendered or removed by an
			// earlier attempt. Retrying a removal must stay safe.
			p.logger.Info("removal sync no-op, artifact gone",
				zap.String("itemID", itemID),
				zap.String("slug", slug))
			return slug, nil
		}
		return "", appErrors.NewArtifactWrite("artifact delete failed", err).
			WithContext(itemID, slug, string(event))
	}

	p.logger.Info("artifact removed",
		zap.String("itemID", itemID),
		zap.String("slug", slug),
		zap.String("event", string(event)))
	return slug, nil
}

// buildDocument assembles the template slots for an item. The related and
// sidebar sub-fetches run concurrently and are individually fault-tolerant:
// a failing query degrades to an empty fragment, never aborts the render.
func (p *PublicationSync) buildDocument(ctx context.Context, item *content.Item, slug string) *render.Document {
	doc := &render.Document{
		Title:        item.Title,
		Description:  item.Description,
		CanonicalURL: content.CanonicalURL(p.domain, item.CategorySlug, slug),
		CategorySlug: item.CategorySlug,
		CategoryName: item.CategoryName,
		ImageURL:     item.ImageURL,
		Body:         item.Body,
		Tags:         item.Tags,
	}
	if item.PublishedAt != nil {
		doc.PublishDate = item.PublishedAt.UTC().Format("2006-01-02")
	} else {
		doc.PublishDate = item.LastModified().UTC().Format("2006-01-02")
	}

	var wg gosync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		doc.RelatedFragment = p.relatedFragment(ctx, item)
	}()
	go func() {
		defer wg.Done()
		doc.SidebarFragment = p.sidebarFragment(ctx, item)
	}()

	wg.Wait()
	return doc
}

func (p *PublicationSync) relatedFragment(ctx context.Context, item *content.Item) string {
	related, err := p.contentStore.ListByCategory(ctx, item.CategorySlug, p.relatedLimit+1)
	if err != nil {
		p.logger.Warn("related posts query failed, embedding empty fragment",
			zap.String("itemID", item.ID), zap.Error(err))
		return ""
	}

	var fragments []string
	for _, r := range related {
		if r.ID == item.ID {
			continue
		}
		if len(fragments) == p.relatedLimit {
			break
		}
		fragments = append(fragments, render.PostFragment(
			r.Title, content.CanonicalURL("", r.CategorySlug, r.CanonicalSlug())))
	}
	return render.FragmentList("related-posts", fragments)
}

func (p *PublicationSync) sidebarFragment(ctx context.Context, item *content.Item) string {
	recent, err := p.contentStore.ListPublished(ctx, p.sidebarLimit+1)
	if err != nil {
		p.logger.Warn("sidebar posts query failed, embedding empty fragment",
			zap.String("itemID", item.ID), zap.Error(err))
		return ""
	}

	var fragments []string
	for _, r := range recent {
		if r.ID == item.ID {
			continue
		}
		if len(fragments) == p.sidebarLimit {
			break
		}
		fragments = append(fragments, render.PostFragment(
			r.Title, content.CanonicalURL("", r.CategorySlug, r.CanonicalSlug())))
	}
	return render.FragmentList("sidebar-posts", fragments)
}

func (p *PublicationSync) emit(ctx context.Context, event ports.SyncEventType, itemID, slug string) {
	if p.publisher == nil {
		return
	}
	err := p.publisher.Publish(ctx, ports.SyncEvent{
		ID:         uuid.NewString(),
		Type:       event,
		ItemID:     itemID,
		Slug:       slug,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn("sync event publish failed",
			zap.String("itemID", itemID), zap.Error(err))
	}
}
