package handler

import (
	"net/http"

	"driveportal/internal/metrics"
	"driveportal/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter
type Handlers struct {
	Hierarchy *HierarchyHandler
	Drive     *DriveHandler
	Admin     *AdminHandler
}

// NewRouter registers every endpoint on a Go 1.22+ pattern mux.
// adminRole is the portal role required for /api/admin endpoints.
func NewRouter(h Handlers, adminRole string) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", HealthCheck)
	mux.Handle("GET /metrics", metrics.Handler())

	// Portal routes
	mux.HandleFunc("GET /api/routes", h.Hierarchy.ListRoutes)
	mux.HandleFunc("GET /api/routes/{route...}", h.Hierarchy.GetRouteHierarchy)

	// Drive explorer
	mux.HandleFunc("GET /api/drive/folders/{id}", h.Drive.ListFolder)
	mux.HandleFunc("GET /api/drive/folders/{id}/hierarchy", h.Hierarchy.GetFolderHierarchy)
	mux.HandleFunc("GET /api/drive/files/{id}", h.Drive.GetFile)
	mux.HandleFunc("GET /api/drive/files/{id}/content", h.Drive.GetContent)

	// Admin
	mux.HandleFunc("GET /api/admin/cache", middleware.RequireRole(adminRole, h.Admin.ListCache))

	return mux
}
