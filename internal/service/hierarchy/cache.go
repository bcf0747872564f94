package hierarchy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchyRepo "driveportal/internal/domain/repositories/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"

	"github.com/google/uuid"
)

// cacheService implements the CacheService interface
type cacheService struct {
	repo      hierarchyRepo.CacheRepository
	folderTTL time.Duration
	routeTTL  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// CacheOption customizes the cache service
type CacheOption func(*cacheService)

// WithClock overrides the time source used for freshness checks and writes
func WithClock(now func() time.Time) CacheOption {
	return func(s *cacheService) {
		s.now = now
	}
}

// NewCacheService creates a new cache service.
// folderTTL applies to folder-scoped entries, routeTTL to route-root entries.
func NewCacheService(
	repo hierarchyRepo.CacheRepository,
	folderTTL, routeTTL time.Duration,
	logger *slog.Logger,
	opts ...CacheOption,
) hierarchySvc.CacheService {
	s := &cacheService{
		repo:      repo,
		folderTTL: folderTTL,
		routeTTL:  routeTTL,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// expiry returns the freshness window for a kind of entry
func (s *cacheService) expiry(kind models.CacheKind) time.Duration {
	if kind == models.CacheKindRoute {
		return s.routeTTL
	}
	return s.folderTTL
}

// Get returns the entry when it is younger than the kind's expiry.
// A fresh entry is returned with its access counter already incremented.
func (s *cacheService) Get(ctx context.Context, cacheKey string, kind models.CacheKind) (*models.CacheEntry, bool) {
	entry, err := s.repo.Get(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("hierarchy cache read failed, treating as miss",
				"cache_key", cacheKey,
				"error", err,
			)
		}
		return nil, false
	}

	age := entry.Age(s.now())
	if age >= s.expiry(kind) {
		s.logger.Debug("hierarchy cache entry stale",
			"cache_key", cacheKey,
			"age", age.String(),
		)
		return nil, false
	}

	count, err := s.repo.IncrementAccess(ctx, cacheKey)
	if err != nil {
		s.logger.Warn("hierarchy cache access count update failed",
			"cache_key", cacheKey,
			"error", err,
		)
	} else {
		entry.AccessCount = count
	}

	return entry, true
}

// Put serializes the hierarchy and upserts it under cacheKey
func (s *cacheService) Put(ctx context.Context, cacheKey string, meta models.CacheMeta, root *models.HierarchyItem, stats *models.BuildStats) (*models.CacheEntry, error) {
	data, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode hierarchy for %s: %w", cacheKey, err)
	}

	now := s.now()
	entry := &models.CacheEntry{
		ID:            uuid.New(),
		CacheKey:      cacheKey,
		CacheType:     meta.Kind,
		RoutePath:     meta.RoutePath,
		FolderID:      meta.FolderID,
		MaxDepth:      meta.MaxDepth,
		HierarchyData: data,
		AccessCount:   1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if stats != nil {
		entry.ItemCount = stats.TotalItems
		entry.BuildTimeMs = stats.BuildTimeMs
	}

	stored, err := s.repo.Upsert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("store hierarchy cache %s: %w", cacheKey, err)
	}

	s.logger.Debug("hierarchy cached",
		"cache_key", cacheKey,
		"item_count", stored.ItemCount,
		"bytes", len(data),
	)

	return stored, nil
}

// Touch increments the access counter of an entry
func (s *cacheService) Touch(ctx context.Context, cacheKey string) error {
	if _, err := s.repo.IncrementAccess(ctx, cacheKey); err != nil {
		return err
	}
	return nil
}

// List returns cache entries without hierarchy data
func (s *cacheService) List(ctx context.Context) ([]models.CacheEntry, error) {
	return s.repo.List(ctx)
}
