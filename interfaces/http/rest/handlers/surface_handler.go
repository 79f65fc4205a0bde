package handlers

import (
	"net/http"

	"gangablog-backend/application/cache"
	"gangablog-backend/infrastructure/observability"
	"gangablog-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SurfaceHandler exposes the surface cache over JSON for client-side
// hydration of the page shells.
type SurfaceHandler struct {
	cache    *cache.SurfaceCache
	fetchers *cache.Fetchers
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewSurfaceHandler creates a new surface handler
func NewSurfaceHandler(
	surfaceCache *cache.SurfaceCache,
	fetchers *cache.Fetchers,
	metrics *observability.Collector,
	logger *zap.Logger,
) *SurfaceHandler {
	return &SurfaceHandler{
		cache:    surfaceCache,
		fetchers: fetchers,
		metrics:  metrics,
		logger:   logger,
	}
}

// Get handles GET /api/v1/surfaces/{key}
func (h *SurfaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	fetch := h.fetchers.ForKey(key)
	if fetch == nil {
		api.Error(w, http.StatusNotFound, "Unknown surface key")
		return
	}

	payload, fromCache, err := h.cache.ReadThrough(r.Context(), key, fetch)
	if err != nil {
		// Only a cold cache with a failed live fetch lands here; anything
		// cached, however stale, was already returned instead.
		h.logger.Error("surface read failed", zap.String("key", key), zap.Error(err))
		api.TypedError(w, http.StatusBadGateway, "Surface is unavailable", "UPSTREAM_FETCH")
		return
	}

	if h.metrics != nil {
		if fromCache {
			h.metrics.CacheHits.Inc()
		} else {
			h.metrics.CacheMisses.Inc()
		}
	}

	if fromCache {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(payload)
}
