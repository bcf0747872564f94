package handler

import (
	"log/slog"
	"net/http"

	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
	"driveportal/internal/httputil"
)

// HierarchyHandler handles HTTP requests for route and folder hierarchies
type HierarchyHandler struct {
	hierarchyService hierarchySvc.HierarchyService
	logger           *slog.Logger
}

// NewHierarchyHandler creates a new hierarchy handler
func NewHierarchyHandler(hierarchyService hierarchySvc.HierarchyService, logger *slog.Logger) *HierarchyHandler {
	return &HierarchyHandler{
		hierarchyService: hierarchyService,
		logger:           logger,
	}
}

// routeListResponse is the body of GET /api/routes
type routeListResponse struct {
	Routes []models.RouteMapping `json:"routes"`
	Count  int                   `json:"count"`
}

// folderHierarchyResponse is the body of GET /api/drive/folders/{id}/hierarchy
type folderHierarchyResponse struct {
	Folder *models.HierarchyItem    `json:"folder"`
	Stats  hierarchySvc.ResultStats `json:"stats"`
}

// ListRoutes returns the active route mappings
func (h *HierarchyHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes := h.hierarchyService.ListRoutes(r.Context())
	httputil.RespondJSON(w, http.StatusOK, routeListResponse{
		Routes: routes,
		Count:  len(routes),
	})
}

// GetRouteHierarchy returns the hierarchy for a configured portal route.
// The route is the remainder of the URL path, e.g. /api/routes/marketing/brand.
func (h *HierarchyHandler) GetRouteHierarchy(w http.ResponseWriter, r *http.Request) {
	query, err := parseHierarchyQuery(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.hierarchyService.GetRouteHierarchy(r.Context(), &hierarchySvc.RouteHierarchyRequest{
		RoutePath:      r.PathValue("route"),
		HierarchyQuery: query,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetFolderHierarchy returns the hierarchy rooted at a Drive folder
func (h *HierarchyHandler) GetFolderHierarchy(w http.ResponseWriter, r *http.Request) {
	query, err := parseHierarchyQuery(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.hierarchyService.GetFolderHierarchy(r.Context(), &hierarchySvc.FolderHierarchyRequest{
		FolderID:       r.PathValue("id"),
		HierarchyQuery: query,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folderHierarchyResponse{
		Folder: result.Root,
		Stats:  result.Stats,
	})
}
