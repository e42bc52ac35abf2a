// Package config provides configuration loading from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for values other packages also fall back to.
const (
	DefaultBaseURL         = "http://127.0.0.1:8000"
	DefaultPreviewMaxEdge  = 320
	DefaultAssetCacheItems = 64
	DefaultAssetWorkers    = 4
	DefaultJQMaxResults    = 50
)

// Config holds all configuration for the rugsearch CLI and MCP server.
type Config struct {
	BaseURL           string        // RUGSEARCH_BASE_URL, default "http://127.0.0.1:8000"
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 0 (no timeout)
	DefaultMode       string        // DEFAULT_MODE, default "clip"
	DefaultSort       string        // DEFAULT_SORT, default "score"

	PreviewDir     string // PREVIEW_DIR, default "" (system temp dir)
	PreviewMaxEdge int    // PREVIEW_MAX_EDGE, default 320

	AssetCacheMaxItems int // ASSET_CACHE_MAX_ITEMS, default 64
	AssetFetchWorkers  int // ASSET_FETCH_WORKERS, default 4

	ResponseSchemaCheck bool // RESPONSE_SCHEMA_CHECK, default true
	JQMaxResults        int  // JQ_MAX_RESULTS, default 50

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables already set win.
// With no paths, ".env" in the working directory is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		BaseURL:           getEnvString("RUGSEARCH_BASE_URL", DefaultBaseURL),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 0),
		DefaultMode:       getEnvString("DEFAULT_MODE", "clip"),
		DefaultSort:       getEnvString("DEFAULT_SORT", "score"),

		PreviewDir:     getEnvString("PREVIEW_DIR", ""),
		PreviewMaxEdge: getEnvInt("PREVIEW_MAX_EDGE", DefaultPreviewMaxEdge),

		AssetCacheMaxItems: getEnvInt("ASSET_CACHE_MAX_ITEMS", DefaultAssetCacheItems),
		AssetFetchWorkers:  getEnvInt("ASSET_FETCH_WORKERS", DefaultAssetWorkers),

		ResponseSchemaCheck: getEnvBool("RESPONSE_SCHEMA_CHECK", true),
		JQMaxResults:        getEnvInt("JQ_MAX_RESULTS", DefaultJQMaxResults),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
