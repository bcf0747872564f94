package hierarchy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"driveportal/internal/config"
	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
	"driveportal/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/singleflight"
)

// driveIDPattern matches Google Drive file/folder ids
var driveIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RouteResolver looks up route mappings
type RouteResolver interface {
	// Lookup returns the active mapping for a path, or an error wrapping domain.ErrNotFound
	Lookup(path string) (*models.RouteMapping, error)

	// Active returns all active mappings in configuration order
	Active() []models.RouteMapping
}

// hierarchyService implements the HierarchyService interface
type hierarchyService struct {
	routes       RouteResolver
	builder      hierarchySvc.HierarchyBuilder
	cache        hierarchySvc.CacheService
	defaultDepth int
	logger       *slog.Logger
	builds       singleflight.Group
	now          func() time.Time
}

// NewHierarchyService creates a new hierarchy service
func NewHierarchyService(
	routes RouteResolver,
	builder hierarchySvc.HierarchyBuilder,
	cache hierarchySvc.CacheService,
	defaultDepth int,
	logger *slog.Logger,
) hierarchySvc.HierarchyService {
	return &hierarchyService{
		routes:       routes,
		builder:      builder,
		cache:        cache,
		defaultDepth: defaultDepth,
		logger:       logger,
		now:          time.Now,
	}
}

// buildOutcome is shared between requests that join the same build
type buildOutcome struct {
	root        *models.HierarchyItem
	stats       *models.BuildStats
	accessCount int
}

// GetRouteHierarchy resolves a route mapping and serves its hierarchy
func (s *hierarchyService) GetRouteHierarchy(ctx context.Context, req *hierarchySvc.RouteHierarchyRequest) (*hierarchySvc.HierarchyResult, error) {
	if err := s.validateRouteRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	mapping, err := s.routes.Lookup(req.RoutePath)
	if err != nil {
		return nil, err
	}

	// A mapping without max_depth uses the server default
	routeDepth := mapping.MaxDepth
	if routeDepth == 0 {
		routeDepth = s.defaultDepth
	}
	opts := s.buildOptions(&req.HierarchyQuery, routeDepth)
	meta := models.CacheMeta{
		Kind:      models.CacheKindRoute,
		RoutePath: mapping.Path,
		FolderID:  mapping.FolderID,
		MaxDepth:  opts.MaxDepth,
	}
	key := models.CacheKey(models.CacheKindRoute, mapping.Path, opts)

	result, err := s.serve(ctx, key, meta, opts, req.ForceRefresh)
	if err != nil {
		return nil, err
	}

	routeInfo := *mapping
	result.RouteInfo = &routeInfo
	return result, nil
}

// GetFolderHierarchy serves the hierarchy rooted at an arbitrary Drive folder
func (s *hierarchyService) GetFolderHierarchy(ctx context.Context, req *hierarchySvc.FolderHierarchyRequest) (*hierarchySvc.HierarchyResult, error) {
	if err := s.validateFolderRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	opts := s.buildOptions(&req.HierarchyQuery, s.defaultDepth)
	meta := models.CacheMeta{
		Kind:     models.CacheKindFolder,
		FolderID: req.FolderID,
		MaxDepth: opts.MaxDepth,
	}
	key := models.CacheKey(models.CacheKindFolder, req.FolderID, opts)

	return s.serve(ctx, key, meta, opts, req.ForceRefresh)
}

// ListRoutes returns the active route mappings
func (s *hierarchyService) ListRoutes(ctx context.Context) []models.RouteMapping {
	return s.routes.Active()
}

// serve answers from the cache when possible, otherwise builds and writes through.
// forceRefresh skips the cache read but still writes the new snapshot.
func (s *hierarchyService) serve(ctx context.Context, key string, meta models.CacheMeta, opts models.BuildOptions, forceRefresh bool) (*hierarchySvc.HierarchyResult, error) {
	kind := string(meta.Kind)

	if !forceRefresh {
		if entry, ok := s.cache.Get(ctx, key, meta.Kind); ok {
			root, err := entry.Hierarchy()
			if err == nil {
				metrics.RecordCacheLookup(kind, true)
				age := entry.Age(s.now()).Milliseconds()
				return &hierarchySvc.HierarchyResult{
					Root: root,
					Stats: hierarchySvc.ResultStats{
						TotalItems:  entry.ItemCount,
						FromCache:   true,
						CacheAge:    &age,
						MaxDepth:    meta.MaxDepth,
						AccessCount: entry.AccessCount,
					},
				}, nil
			}
			s.logger.Warn("cached hierarchy unreadable, rebuilding",
				"cache_key", key,
				"error", err,
			)
		}
		metrics.RecordCacheLookup(kind, false)
	}

	// Concurrent requests for the same key share one build. The build is
	// detached from the caller's cancellation so a disconnecting client does
	// not fail the requests that joined it.
	buildCtx := context.WithoutCancel(ctx)
	v, err, shared := s.builds.Do(key, func() (interface{}, error) {
		return s.rebuild(buildCtx, key, meta, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		metrics.RecordSharedBuild()
	}

	outcome := v.(*buildOutcome)
	buildTime := outcome.stats.BuildTimeMs
	return &hierarchySvc.HierarchyResult{
		Root: outcome.root,
		Stats: hierarchySvc.ResultStats{
			TotalItems:  outcome.stats.TotalItems,
			FromCache:   false,
			BuildTimeMs: &buildTime,
			MaxDepth:    meta.MaxDepth,
			AccessCount: outcome.accessCount,
			Build:       outcome.stats,
		},
	}, nil
}

// rebuild runs the builder and writes the result to the cache.
// Cache write failures are logged; the fresh hierarchy is still returned.
func (s *hierarchyService) rebuild(ctx context.Context, key string, meta models.CacheMeta, opts models.BuildOptions) (*buildOutcome, error) {
	start := time.Now()
	root, stats, err := s.builder.Build(ctx, meta.FolderID, opts)
	if err != nil {
		return nil, err
	}
	metrics.RecordHierarchyBuild(string(meta.Kind), time.Since(start), stats.TotalItems)

	outcome := &buildOutcome{root: root, stats: stats, accessCount: 1}

	entry, err := s.cache.Put(ctx, key, meta, root, stats)
	if err != nil {
		metrics.RecordCacheWriteError()
		s.logger.Error("hierarchy cache write failed, serving uncached result",
			"cache_key", key,
			"error", err,
		)
		return outcome, nil
	}
	outcome.accessCount = entry.AccessCount

	return outcome, nil
}

// buildOptions applies the requested depth or the fallback default
func (s *hierarchyService) buildOptions(q *hierarchySvc.HierarchyQuery, fallbackDepth int) models.BuildOptions {
	depth := fallbackDepth
	if q.MaxDepth != nil {
		depth = *q.MaxDepth
	}
	if depth > config.MaxHierarchyDepth {
		depth = config.MaxHierarchyDepth
	}
	if depth < 0 {
		depth = 0
	}
	return models.BuildOptions{
		MaxDepth:        depth,
		IncludeHidden:   q.IncludeHidden,
		IncludeInactive: q.IncludeInactive,
	}
}

func (s *hierarchyService) validateRouteRequest(req *hierarchySvc.RouteHierarchyRequest) error {
	if err := validation.Validate(models.NormalizeRoutePath(req.RoutePath),
		validation.Required.Error("route path is required"),
		validation.Length(1, config.MaxRoutePathLength),
	); err != nil {
		return fmt.Errorf("route: %w", err)
	}
	return validateQuery(&req.HierarchyQuery)
}

func (s *hierarchyService) validateFolderRequest(req *hierarchySvc.FolderHierarchyRequest) error {
	if err := validation.Validate(req.FolderID,
		validation.Required.Error("folder id is required"),
		validation.Match(driveIDPattern).Error("folder id contains invalid characters"),
	); err != nil {
		return fmt.Errorf("folder_id: %w", err)
	}
	return validateQuery(&req.HierarchyQuery)
}

func validateQuery(q *hierarchySvc.HierarchyQuery) error {
	return validation.ValidateStruct(q,
		validation.Field(&q.MaxDepth,
			validation.Min(0),
			validation.Max(config.MaxHierarchyDepth),
		),
	)
}
