package handlers

import (
	"encoding/json"
	"net/http"

	"gangablog-backend/application/ports"
	"gangablog-backend/application/sync"
	"gangablog-backend/infrastructure/observability"
	"gangablog-backend/pkg/api"
	appErrors "gangablog-backend/pkg/errors"
	"gangablog-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SyncRequest is the body of a publication sync trigger
type SyncRequest struct {
	Event string `json:"event" validate:"required,oneof=publish update unpublish delete"`
}

// SyncHandler exposes the publication sync pipeline to the CMS webhook
type SyncHandler struct {
	sync    *sync.PublicationSync
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(pub *sync.PublicationSync, metrics *observability.Collector, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		sync:    pub,
		metrics: metrics,
		logger:  logger,
	}
}

// Trigger handles POST /api/v1/sync/{id}
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	if itemID == "" {
		api.Error(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	event := ports.SyncEventType(req.Event)
	err := h.sync.Sync(r.Context(), itemID, event)
	h.record(string(event), err)

	switch {
	case err == nil:
		api.JSON(w, http.StatusOK, map[string]string{"status": "synced"})
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsFetch(err):
		h.logger.Error("sync could not fetch item", zap.String("itemId", itemID), zap.Error(err))
		api.TypedError(w, http.StatusBadGateway, "Could not fetch item from content store", "FETCH")
	case appErrors.IsArtifactWrite(err):
		h.logger.Error("sync could not write artifact", zap.String("itemId", itemID), zap.Error(err))
		api.TypedError(w, http.StatusBadGateway, "Could not write artifact", "ARTIFACT_WRITE")
	case appErrors.IsPartialSync(err):
		// Artifact landed; only the site index regeneration failed. The
		// caller retries via the index endpoint rather than re-publishing.
		h.logger.Warn("sync completed partially", zap.String("itemId", itemID), zap.Error(err))
		api.TypedError(w, http.StatusInternalServerError,
			"Artifact synced but site index regeneration failed", "PARTIAL_SYNC")
	default:
		h.logger.Error("sync failed", zap.String("itemId", itemID), zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Sync failed")
	}
}

// RegenerateIndex handles POST /api/v1/sync/index, the retry path after
// a partial sync, and an operator escape hatch.
func (h *SyncHandler) RegenerateIndex(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.RegenerateIndex(r.Context()); err != nil {
		h.logger.Error("site index regeneration failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Site index regeneration failed")
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "regenerated"})
}

func (h *SyncHandler) record(event string, err error) {
	if h.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case appErrors.IsPartialSync(err):
		result = "partial"
	default:
		result = "error"
	}
	h.metrics.RecordSync(event, result)
}
