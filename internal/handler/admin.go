package handler

import (
	"log/slog"
	"net/http"

	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
	"driveportal/internal/httputil"
)

// AdminHandler exposes read-only cache statistics
type AdminHandler struct {
	cache  hierarchySvc.CacheService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cache hierarchySvc.CacheService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		cache:  cache,
		logger: logger,
	}
}

// cacheListResponse is the body of GET /api/admin/cache
type cacheListResponse struct {
	Entries     []models.CacheEntry `json:"entries"`
	Count       int                 `json:"count"`
	TotalItems  int                 `json:"totalItems"`
	TotalAccess int                 `json:"totalAccess"`
}

// ListCache returns every cache entry without its hierarchy payload
func (h *AdminHandler) ListCache(w http.ResponseWriter, r *http.Request) {
	entries, err := h.cache.List(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	resp := cacheListResponse{Entries: entries, Count: len(entries)}
	for _, entry := range entries {
		resp.TotalItems += entry.ItemCount
		resp.TotalAccess += entry.AccessCount
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
