package postgres

import (
	"context"
	"fmt"

	"driveportal/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the cache table and its indexes if they don't exist.
// All statements run in one transaction.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, txManager repositories.TransactionManager, tables *TableNames) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.HierarchyCache + ` (
			id UUID PRIMARY KEY,
			cache_key TEXT NOT NULL UNIQUE,
			cache_type TEXT NOT NULL,
			route_path TEXT NOT NULL DEFAULT '',
			folder_id TEXT NOT NULL,
			max_depth INTEGER NOT NULL,
			hierarchy_data JSONB NOT NULL,
			item_count INTEGER NOT NULL DEFAULT 0,
			build_time_ms BIGINT NOT NULL DEFAULT 0,
			access_count INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `hierarchy_cache_type_route ON ` + tables.HierarchyCache + `(cache_type, route_path)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `hierarchy_cache_folder ON ` + tables.HierarchyCache + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tables.Prefix + `hierarchy_cache_updated ON ` + tables.HierarchyCache + `(updated_at DESC)`,
	}

	return txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := GetExecutor(txCtx, pool)
		for _, stmt := range statements {
			if _, err := executor.Exec(txCtx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}

// DropTables removes every table owned by this service for the prefix
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+tables.HierarchyCache+` CASCADE`); err != nil {
		return fmt.Errorf("drop %s: %w", tables.HierarchyCache, err)
	}
	return nil
}
