package hierarchy

import (
	"context"

	models "driveportal/internal/domain/models/hierarchy"
)

// CacheService applies the freshness policy on top of the cache repository
type CacheService interface {
	// Get returns a fresh entry and bumps its access counter.
	// Missing, stale or unreadable entries report ok=false.
	Get(ctx context.Context, cacheKey string, kind models.CacheKind) (entry *models.CacheEntry, ok bool)

	// Put stores a freshly built hierarchy, replacing any previous snapshot
	Put(ctx context.Context, cacheKey string, meta models.CacheMeta, root *models.HierarchyItem, stats *models.BuildStats) (*models.CacheEntry, error)

	// Touch increments the access counter of an entry
	Touch(ctx context.Context, cacheKey string) error

	// List returns cache entries without hierarchy data
	List(ctx context.Context) ([]models.CacheEntry, error)
}
