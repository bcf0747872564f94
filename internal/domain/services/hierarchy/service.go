package hierarchy

import (
	"context"

	models "driveportal/internal/domain/models/hierarchy"
)

// HierarchyService serves route and folder hierarchies through the cache
type HierarchyService interface {
	// GetRouteHierarchy resolves a route mapping and returns its hierarchy
	GetRouteHierarchy(ctx context.Context, req *RouteHierarchyRequest) (*HierarchyResult, error)

	// GetFolderHierarchy returns the hierarchy rooted at an arbitrary Drive folder
	GetFolderHierarchy(ctx context.Context, req *FolderHierarchyRequest) (*HierarchyResult, error)

	// ListRoutes returns the active route mappings
	ListRoutes(ctx context.Context) []models.RouteMapping
}

// HierarchyQuery holds the query options shared by route and folder requests
type HierarchyQuery struct {
	MaxDepth        *int // nil = route/config default
	ForceRefresh    bool
	IncludeHidden   bool
	IncludeInactive bool
}

// RouteHierarchyRequest asks for the hierarchy of a configured route
type RouteHierarchyRequest struct {
	RoutePath string
	HierarchyQuery
}

// FolderHierarchyRequest asks for the hierarchy of a Drive folder
type FolderHierarchyRequest struct {
	FolderID string
	HierarchyQuery
}

// HierarchyResult is the payload returned to route handlers
type HierarchyResult struct {
	RouteInfo *models.RouteMapping  `json:"routeInfo,omitempty"`
	Root      *models.HierarchyItem `json:"root"`
	Stats     ResultStats           `json:"stats"`
}

// ResultStats summarizes how the result was produced
type ResultStats struct {
	TotalItems  int    `json:"totalItems"`
	FromCache   bool   `json:"fromCache"`
	CacheAge    *int64 `json:"cacheAge,omitempty"`    // milliseconds, cache hits only
	BuildTimeMs *int64 `json:"buildTimeMs,omitempty"` // fresh builds only
	MaxDepth    int    `json:"maxDepth"`
	AccessCount int    `json:"accessCount,omitempty"`
	// Build carries the detailed builder counters for fresh builds
	Build *models.BuildStats `json:"build,omitempty"`
}
