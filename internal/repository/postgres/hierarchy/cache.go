package hierarchy

import (
	"context"
	"fmt"
	"log/slog"

	"driveportal/internal/domain"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchyRepo "driveportal/internal/domain/repositories/hierarchy"
	"driveportal/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCacheRepository implements the CacheRepository interface
type PostgresCacheRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewCacheRepository creates a new PostgresCacheRepository
func NewCacheRepository(config *postgres.RepositoryConfig) hierarchyRepo.CacheRepository {
	return &PostgresCacheRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Get retrieves a cache entry by key
func (r *PostgresCacheRepository) Get(ctx context.Context, cacheKey string) (*models.CacheEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, cache_key, cache_type, route_path, folder_id, max_depth,
		       hierarchy_data, item_count, build_time_ms, access_count,
		       created_at, updated_at
		FROM %s
		WHERE cache_key = $1
	`, r.tables.HierarchyCache)

	executor := postgres.GetExecutor(ctx, r.pool)
	entry, err := scanEntry(executor.QueryRow(ctx, query, cacheKey), true)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("cache entry %s: %w", cacheKey, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	return entry, nil
}

// Upsert creates or replaces the entry for entry.CacheKey.
// The original id and created_at survive a replace; the access counter restarts at 1.
func (r *PostgresCacheRepository) Upsert(ctx context.Context, entry *models.CacheEntry) (*models.CacheEntry, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, cache_key, cache_type, route_path, folder_id, max_depth,
			hierarchy_data, item_count, build_time_ms, access_count,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11)
		ON CONFLICT (cache_key) DO UPDATE SET
			cache_type = EXCLUDED.cache_type,
			route_path = EXCLUDED.route_path,
			folder_id = EXCLUDED.folder_id,
			max_depth = EXCLUDED.max_depth,
			hierarchy_data = EXCLUDED.hierarchy_data,
			item_count = EXCLUDED.item_count,
			build_time_ms = EXCLUDED.build_time_ms,
			access_count = 1,
			updated_at = EXCLUDED.updated_at
		RETURNING id, cache_key, cache_type, route_path, folder_id, max_depth,
		          hierarchy_data, item_count, build_time_ms, access_count,
		          created_at, updated_at
	`, r.tables.HierarchyCache)

	executor := postgres.GetExecutor(ctx, r.pool)
	stored, err := scanEntry(executor.QueryRow(ctx, query,
		entry.ID,
		entry.CacheKey,
		string(entry.CacheType),
		entry.RoutePath,
		entry.FolderID,
		entry.MaxDepth,
		[]byte(entry.HierarchyData),
		entry.ItemCount,
		entry.BuildTimeMs,
		entry.CreatedAt,
		entry.UpdatedAt,
	), true)
	if err != nil {
		return nil, fmt.Errorf("upsert cache entry: %w", err)
	}

	r.logger.Debug("hierarchy cache upserted",
		"cache_key", stored.CacheKey,
		"id", stored.ID,
	)

	return stored, nil
}

// IncrementAccess bumps the access counter and returns the new value
func (r *PostgresCacheRepository) IncrementAccess(ctx context.Context, cacheKey string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET access_count = access_count + 1
		WHERE cache_key = $1
		RETURNING access_count
	`, r.tables.HierarchyCache)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, cacheKey).Scan(&count); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return 0, fmt.Errorf("cache entry %s: %w", cacheKey, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("increment cache access: %w", err)
	}

	return count, nil
}

// List returns every entry without its hierarchy payload, newest first
func (r *PostgresCacheRepository) List(ctx context.Context) ([]models.CacheEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, cache_key, cache_type, route_path, folder_id, max_depth,
		       item_count, build_time_ms, access_count,
		       created_at, updated_at
		FROM %s
		ORDER BY updated_at DESC
	`, r.tables.HierarchyCache)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.CacheEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}

	return entries, nil
}

// scanEntry reads one row in column order; withData selects whether
// hierarchy_data is part of the row.
func scanEntry(row pgx.Row, withData bool) (*models.CacheEntry, error) {
	var (
		entry     models.CacheEntry
		cacheType string
		data      []byte
	)

	dest := []any{
		&entry.ID,
		&entry.CacheKey,
		&cacheType,
		&entry.RoutePath,
		&entry.FolderID,
		&entry.MaxDepth,
	}
	if withData {
		dest = append(dest, &data)
	}
	dest = append(dest,
		&entry.ItemCount,
		&entry.BuildTimeMs,
		&entry.AccessCount,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	entry.CacheType = models.CacheKind(cacheType)
	entry.HierarchyData = data
	return &entry, nil
}
