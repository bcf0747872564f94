package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"driveportal/internal/config"
	models "driveportal/internal/domain/models/hierarchy"
	hierarchySvc "driveportal/internal/domain/services/hierarchy"
	"driveportal/internal/drive"
	"driveportal/internal/repository/postgres"
	postgresHierarchy "driveportal/internal/repository/postgres/hierarchy"
	"driveportal/internal/routes"
	serviceHierarchy "driveportal/internal/service/hierarchy"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop the hierarchy cache table before anything else (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only create the cache table, don't touch Google Drive")
	warm := flag.Bool("warm", false, "Rebuild and cache every active route")
	route := flag.String("route", "", "Rebuild and cache a single route")
	list := flag.Bool("list", false, "Print the cache entries")
	listRoutes := flag.Bool("routes", false, "Print every configured route mapping and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if *listRoutes {
		registry, err := routes.NewRegistry(cfg.RoutesFile)
		if err != nil {
			log.Fatalf("Failed to load route mappings: %v", err)
		}
		printRoutes(registry.All())
		return
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	logger := config.NewLogger(cfg.Environment, os.Stderr)
	ctx := context.Background()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	log.Printf("Using cache table %s (environment: %s)", tables.HierarchyCache, cfg.Environment)

	if *dropTables {
		log.Println("🗑️  Dropping cache table...")
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.EnsureSchema(ctx, pool, postgres.NewTransactionManager(pool), tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		return
	}

	repo := postgresHierarchy.NewCacheRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})
	cacheService := serviceHierarchy.NewCacheService(repo, cfg.FolderCacheTTL, cfg.RouteCacheTTL, logger)

	if *warm || *route != "" {
		registry, err := routes.NewRegistry(cfg.RoutesFile)
		if err != nil {
			log.Fatalf("Failed to load route mappings: %v", err)
		}
		driveClient, err := drive.NewGoogleClient(ctx, cfg.GoogleCredentialsFile, logger)
		if err != nil {
			log.Fatalf("Failed to create Google Drive client: %v", err)
		}

		builder := serviceHierarchy.NewHierarchyBuilder(driveClient, serviceHierarchy.NewFileAnalyzer(), logger)
		svc := serviceHierarchy.NewHierarchyService(registry, builder, cacheService, cfg.DefaultMaxDepth, logger)

		targets := []string{*route}
		if *warm {
			targets = targets[:0]
			for _, mapping := range registry.Active() {
				targets = append(targets, mapping.Path)
			}
		}

		failed := 0
		for _, path := range targets {
			if err := warmRoute(ctx, svc, path); err != nil {
				log.Printf("❌ %s: %v", path, err)
				failed++
			}
		}
		if failed > 0 {
			log.Fatalf("%d of %d routes failed", failed, len(targets))
		}
	}

	if *list {
		entries, err := cacheService.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list cache entries: %v", err)
		}
		printEntries(entries)
	}
}

// warmRoute force-rebuilds one route so the next request is a cache hit
func warmRoute(ctx context.Context, svc hierarchySvc.HierarchyService, path string) error {
	result, err := svc.GetRouteHierarchy(ctx, &hierarchySvc.RouteHierarchyRequest{
		RoutePath:      path,
		HierarchyQuery: hierarchySvc.HierarchyQuery{ForceRefresh: true},
	})
	if err != nil {
		return err
	}

	var took time.Duration
	if result.Stats.BuildTimeMs != nil {
		took = time.Duration(*result.Stats.BuildTimeMs) * time.Millisecond
	}
	log.Printf("✅ %s: %d items, depth %d, %s", path, result.Stats.TotalItems, result.Stats.MaxDepth, took)
	return nil
}

func printRoutes(mappings []models.RouteMapping) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tFOLDER\tDEPTH\tACTIVE\tTITLE")
	for _, m := range mappings {
		depth := "default"
		if m.MaxDepth > 0 {
			depth = strconv.Itoa(m.MaxDepth)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", m.Path, m.FolderID, depth, m.Active, m.Title)
	}
	w.Flush()
}

func printEntries(entries []models.CacheEntry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTYPE\tITEMS\tBUILD\tHITS\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%dms\t%d\t%s\n",
			e.CacheKey, e.CacheType, e.ItemCount, e.BuildTimeMs, e.AccessCount,
			e.UpdatedAt.Format(time.RFC3339))
	}
	w.Flush()
}
