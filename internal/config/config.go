package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // Empty = in-memory cache store (dev only)
	CORSOrigins string
	TablePrefix string
	JWKSURL     string // Empty = auth disabled
	AdminRole   string
	// Google Drive
	GoogleCredentialsFile string // Empty = application default credentials
	// Hierarchy
	RoutesFile      string // Empty = embedded routes.yaml
	DefaultMaxDepth int
	FolderCacheTTL  time.Duration
	RouteCacheTTL   time.Duration
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           env,
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		CORSOrigins:           getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:           getTablePrefix(env),
		JWKSURL:               getEnv("JWKS_URL", ""),
		AdminRole:             getEnv("ADMIN_ROLE", "admin"),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		RoutesFile:            getEnv("ROUTES_FILE", ""),
		DefaultMaxDepth:       getEnvInt("DEFAULT_MAX_DEPTH", DefaultHierarchyDepth),
		FolderCacheTTL:        getEnvDuration("FOLDER_CACHE_TTL", DefaultFolderCacheTTL),
		RouteCacheTTL:         getEnvDuration("ROUTE_CACHE_TTL", DefaultRouteCacheTTL),
		LogDir:                getEnv("LOG_DIR", ""),
		LogMaxFiles:           getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go duration strings ("2h", "90m")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
