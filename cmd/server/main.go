package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"driveportal/internal/auth"
	"driveportal/internal/config"
	hierarchyRepo "driveportal/internal/domain/repositories/hierarchy"
	"driveportal/internal/drive"
	"driveportal/internal/handler"
	"driveportal/internal/metrics"
	"driveportal/internal/middleware"
	"driveportal/internal/repository/memory"
	"driveportal/internal/repository/postgres"
	postgresHierarchy "driveportal/internal/repository/postgres/hierarchy"
	"driveportal/internal/routes"
	serviceHierarchy "driveportal/internal/service/hierarchy"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging, optionally teeing to a rotating log file
	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg.Environment, logOutput)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT verification is optional; without JWKS_URL every caller is anonymous
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else {
		logger.Warn("JWKS_URL not set: authentication disabled, admin endpoints unreachable")
	}

	// Hierarchy cache store: Postgres when configured, in-memory otherwise
	var cacheRepo hierarchyRepo.CacheRepository
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		cacheRepo, err = setupPostgresCache(ctx, pool, cfg, logger)
		if err != nil {
			log.Fatalf("Failed to setup hierarchy cache: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set: using in-memory hierarchy cache")
		cacheRepo = memory.NewCacheRepository()
	}

	// Google Drive
	driveClient, err := drive.NewGoogleClient(ctx, cfg.GoogleCredentialsFile, logger)
	if err != nil {
		log.Fatalf("Failed to create Google Drive client: %v", err)
	}

	routeRegistry, err := routes.NewRegistry(cfg.RoutesFile)
	if err != nil {
		log.Fatalf("Failed to load route mappings: %v", err)
	}
	logger.Info("route mappings loaded", "active", len(routeRegistry.Active()))

	// Services
	analyzer := serviceHierarchy.NewFileAnalyzer()
	builder := serviceHierarchy.NewHierarchyBuilder(driveClient, analyzer, logger)
	cacheService := serviceHierarchy.NewCacheService(cacheRepo, cfg.FolderCacheTTL, cfg.RouteCacheTTL, logger)
	hierarchyService := serviceHierarchy.NewHierarchyService(routeRegistry, builder, cacheService, cfg.DefaultMaxDepth, logger)
	explorerService := serviceHierarchy.NewExplorerService(driveClient, analyzer, logger)

	logger.Info("services initialized")

	mux := handler.NewRouter(handler.Handlers{
		Hierarchy: handler.NewHierarchyHandler(hierarchyService, logger),
		Drive:     handler.NewDriveHandler(explorerService, logger),
		Admin:     handler.NewAdminHandler(cacheService, logger),
	}, cfg.AdminRole)

	// Build middleware chain
	// Order: CORS → RequestID → Recovery → Auth → Metrics → Routes
	// Metrics wraps the mux directly so the matched pattern is available.
	var h http.Handler = metrics.Middleware(mux)
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestID(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Cold hierarchy builds can take tens of seconds on large trees
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// setupPostgresCache creates the cache table when missing and returns the repository
func setupPostgresCache(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) (hierarchyRepo.CacheRepository, error) {
	tables := postgres.NewTableNames(cfg.TablePrefix)
	txManager := postgres.NewTransactionManager(pool)

	if err := postgres.EnsureSchema(ctx, pool, txManager, tables); err != nil {
		return nil, err
	}
	logger.Info("database connected", "cache_table", tables.HierarchyCache)

	return postgresHierarchy.NewCacheRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}), nil
}
