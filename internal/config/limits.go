package config

import "time"

const (
	// MaxHierarchyDepth is the hard upper bound for any traversal depth,
	// whether it comes from a route mapping or a maxDepth query parameter.
	// Every level costs one Drive list call per folder, so deep trees
	// get expensive quickly.
	MaxHierarchyDepth = 10

	// DefaultHierarchyDepth is used when neither the route mapping nor the
	// request specify a depth.
	DefaultHierarchyDepth = 3

	// DefaultFolderCacheTTL is how long folder-scoped hierarchies stay fresh.
	DefaultFolderCacheTTL = 2 * time.Hour

	// DefaultRouteCacheTTL is how long route-root hierarchies stay fresh.
	DefaultRouteCacheTTL = 4 * time.Hour

	// MaxRoutePathLength bounds the route path accepted from URLs and config.
	MaxRoutePathLength = 255
)
