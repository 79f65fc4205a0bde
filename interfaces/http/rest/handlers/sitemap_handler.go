package handlers

import (
	"io"
	"net/http"

	"gangablog-backend/application/ports"
	"gangablog-backend/application/sync"
	appErrors "gangablog-backend/pkg/errors"

	"go.uber.org/zap"
)

// SitemapHandler serves the stored site index, regenerating it on demand
// when the reserved artifact is missing.
type SitemapHandler struct {
	artifactStore ports.ArtifactStore
	indexer       *sync.SiteIndexer
	logger        *zap.Logger
}

// NewSitemapHandler creates a new sitemap handler
func NewSitemapHandler(artifactStore ports.ArtifactStore, indexer *sync.SiteIndexer, logger *zap.Logger) *SitemapHandler {
	return &SitemapHandler{
		artifactStore: artifactStore,
		indexer:       indexer,
		logger:        logger,
	}
}

// Get handles GET /sitemap.xml
func (h *SitemapHandler) Get(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.artifactStore.Get(r.Context(), sync.IndexSlug)
	if appErrors.IsNotFound(err) {
		// First request before any sync has run: build and store it now.
		if regenErr := h.indexer.Regenerate(r.Context()); regenErr != nil {
			h.logger.Error("on-demand site index build failed", zap.Error(regenErr))
			http.Error(w, "site index unavailable", http.StatusServiceUnavailable)
			return
		}
		artifact, err = h.artifactStore.Get(r.Context(), sync.IndexSlug)
	}
	if err != nil {
		h.logger.Error("site index read failed", zap.Error(err))
		http.Error(w, "site index unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.WriteString(w, artifact.HTML)
}
