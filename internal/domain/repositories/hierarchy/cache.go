package hierarchy

import (
	"context"

	models "driveportal/internal/domain/models/hierarchy"
)

// CacheRepository defines data access operations for persisted hierarchy snapshots
type CacheRepository interface {
	// Get retrieves an entry by cache key
	// Returns domain.ErrNotFound if no entry exists
	Get(ctx context.Context, cacheKey string) (*models.CacheEntry, error)

	// Upsert creates the entry or replaces the existing one for the same key.
	// AccessCount is reset to 1 and UpdatedAt set to the write time.
	// Returns the stored entry.
	Upsert(ctx context.Context, entry *models.CacheEntry) (*models.CacheEntry, error)

	// IncrementAccess bumps the access counter and returns the new value
	// Returns domain.ErrNotFound if no entry exists
	IncrementAccess(ctx context.Context, cacheKey string) (int, error)

	// List returns all entries without hierarchy data, most recently updated first
	List(ctx context.Context) ([]models.CacheEntry, error)
}
