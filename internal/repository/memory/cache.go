// Package memory holds in-process repository implementations used when no
// database is configured, and by tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchyRepo "driveportal/internal/domain/repositories/hierarchy"
)

// CacheRepository keeps hierarchy snapshots in a map guarded by a mutex.
// It follows the same replace semantics as the Postgres repository.
type CacheRepository struct {
	mu      sync.RWMutex
	entries map[string]*models.CacheEntry
}

var _ hierarchyRepo.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates an empty in-memory cache repository
func NewCacheRepository() *CacheRepository {
	return &CacheRepository{entries: make(map[string]*models.CacheEntry)}
}

// Get returns a copy of the entry stored under cacheKey
func (r *CacheRepository) Get(ctx context.Context, cacheKey string) (*models.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[cacheKey]
	if !ok {
		return nil, fmt.Errorf("cache entry %s: %w", cacheKey, domain.ErrNotFound)
	}
	return cloneEntry(entry, true), nil
}

// Upsert stores the entry, keeping id and created_at of a replaced entry
func (r *CacheRepository) Upsert(ctx context.Context, entry *models.CacheEntry) (*models.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneEntry(entry, true)
	stored.AccessCount = 1
	if existing, ok := r.entries[entry.CacheKey]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	r.entries[entry.CacheKey] = stored

	return cloneEntry(stored, true), nil
}

// IncrementAccess bumps the access counter and returns the new value
func (r *CacheRepository) IncrementAccess(ctx context.Context, cacheKey string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[cacheKey]
	if !ok {
		return 0, fmt.Errorf("cache entry %s: %w", cacheKey, domain.ErrNotFound)
	}
	entry.AccessCount++
	return entry.AccessCount, nil
}

// List returns every entry without hierarchy data, most recently updated first
func (r *CacheRepository) List(ctx context.Context) ([]models.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]models.CacheEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, *cloneEntry(entry, false))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].CacheKey < entries[j].CacheKey
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

func cloneEntry(entry *models.CacheEntry, withData bool) *models.CacheEntry {
	c := *entry
	c.HierarchyData = nil
	if withData {
		c.HierarchyData = bytes.Clone(entry.HierarchyData)
	}
	return &c
}
