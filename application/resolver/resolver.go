// Package resolver maps inbound human-readable paths to servable
// responses. Resolution is an ordered chain of tiers that short-circuits
// on first success and, for anything content-shaped, terminates in a
// redirect to the dynamic article shell rather than a hard failure.
package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	"gangablog-backend/infrastructure/render"
	appErrors "gangablog-backend/pkg/errors"

	"go.uber.org/zap"
)

// Resolution tiers, reported for logging and metrics
const (
	TierArtifact     = "artifact"
	TierVariation    = "artifact_variation"
	TierContentMatch = "content_match"
	TierShell        = "shell_fallback"
)

// Resolution is the outcome of resolving one path segment
type Resolution struct {
	// Status is http.StatusOK for an artifact hit or
	// http.StatusTemporaryRedirect for a shell fallback
	Status int

	// HTML is the rendered document on an artifact hit
	HTML string

	// CanonicalURL is the computed canonical location of the content
	CanonicalURL string

	// CanonicalInDocument is true when the canonical tag was rewritten in
	// the HTML; when false the caller injects a Link header instead
	CanonicalInDocument bool

	// RedirectURL is the shell location on a redirect outcome
	RedirectURL string

	// CacheControl is the edge cache policy for this response
	CacheControl string

	// Tier names the tier that produced the outcome
	Tier string
}

// Options tune the resolver's fallback chain
type Options struct {
	// Domain is the site's canonical origin
	Domain string

	// ShellPath is the dynamic article shell location
	ShellPath string

	// BatchSize bounds the most-recent-first content scan in tier three
	BatchSize int

	// ArtifactMaxAge is the edge cache lifetime for artifact hits
	ArtifactMaxAge time.Duration

	// RedirectMaxAge is the short explicit cache lifetime for redirects
	RedirectMaxAge time.Duration
}

func (o *Options) applyDefaults() {
	if o.ShellPath == "" {
		o.ShellPath = "/article"
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.ArtifactMaxAge <= 0 {
		o.ArtifactMaxAge = 4 * time.Hour
	}
	if o.RedirectMaxAge <= 0 {
		o.RedirectMaxAge = 5 * time.Minute
	}
}

// Resolver resolves slugs through the tiered fallback chain
type Resolver struct {
	artifactStore ports.ArtifactStore
	contentStore  ports.ContentStore
	opts          Options
	logger        *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(
	artifactStore ports.ArtifactStore,
	contentStore ports.ContentStore,
	opts Options,
	logger *zap.Logger,
) *Resolver {
	opts.applyDefaults()
	return &Resolver{
		artifactStore: artifactStore,
		contentStore:  contentStore,
		opts:          opts,
		logger:        logger,
	}
}

// Resolve maps a raw path segment to a response. The only error it
// returns is UpstreamFetchError, when every lookup call itself failed;
// plain absence of content always produces a shell redirect instead.
func (r *Resolver) Resolve(ctx context.Context, rawSlug string) (*Resolution, error) {
	// Tiers one and two: exact artifact, then deterministic variations.
	var artifactErr error
	for i, candidate := range content.SlugVariations(rawSlug) {
		artifact, err := r.artifactStore.Get(ctx, candidate)
		if err != nil {
			if appErrors.IsNotFound(err) {
				continue
			}
			artifactErr = err
			break
		}

		tier := TierArtifact
		if i > 0 {
			tier = TierVariation
		}
		return r.serveArtifact(artifact, tier), nil
	}

	// Tier three: recompute canonical slugs over recent published items.
	norm := content.NormalizeSlug(rawSlug)
	item, contentErr := r.matchContent(ctx, norm)
	if contentErr != nil {
		if artifactErr != nil {
			// Both stores unreachable: a genuine transport failure, not a
			// statement about content existence.
			return nil, appErrors.NewUpstreamFetch("slug lookup failed", contentErr).
				WithContext("", rawSlug, "resolve")
		}
		// The artifact store answered; degrade to the shell and let it
		// retry the content lookup live.
		r.logger.Warn("content scan failed during resolution, deferring to shell",
			zap.String("slug", rawSlug), zap.Error(contentErr))
		return r.redirectToShell(norm, ""), nil
	}

	if item != nil {
		// Known item with no artifact yet (or a failed artifact tier):
		// the shell resolves it live by identity.
		return r.redirectToShell(item.CanonicalSlug(), item.ID), nil
	}

	// Tier four: nothing matched. The shell owns the "not found" state.
	return r.redirectToShell(norm, ""), nil
}

func (r *Resolver) serveArtifact(artifact *content.Artifact, tier string) *Resolution {
	canonical := artifact.CanonicalURL
	if canonical == "" {
		canonical = r.opts.Domain + "/" + artifact.Slug + "/"
	}

	html, inDoc := render.RewriteCanonical(artifact.HTML, canonical)
	return &Resolution{
		Status:              http.StatusOK,
		HTML:                html,
		CanonicalURL:        canonical,
		CanonicalInDocument: inDoc,
		CacheControl: fmt.Sprintf("public, max-age=%d, s-maxage=%d",
			int(r.opts.ArtifactMaxAge.Seconds()), int((2 * r.opts.ArtifactMaxAge).Seconds())),
		Tier: tier,
	}
}

func (r *Resolver) redirectToShell(slug, itemID string) *Resolution {
	params := url.Values{}
	params.Set("slug", slug)
	if itemID != "" {
		params.Set("id", itemID)
	}

	return &Resolution{
		Status:       http.StatusTemporaryRedirect,
		RedirectURL:  r.opts.ShellPath + "?" + params.Encode(),
		CacheControl: fmt.Sprintf("public, max-age=%d", int(r.opts.RedirectMaxAge.Seconds())),
		Tier:         TierShell,
	}
}

// matchContent scans a bounded batch of recent published items for one
// whose recomputed canonical slug matches under normalization. A nil item
// with nil error means no match.
func (r *Resolver) matchContent(ctx context.Context, norm string) (*content.Item, error) {
	// A stored-slug exact hit avoids the scan entirely.
	if item, err := r.contentStore.GetBySlug(ctx, norm); err == nil {
		return item, nil
	} else if !appErrors.IsNotFound(err) {
		return nil, err
	}

	items, err := r.contentStore.ListPublished(ctx, r.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if content.NormalizeSlug(item.CanonicalSlug()) == norm {
			return item, nil
		}
	}
	return nil, nil
}
