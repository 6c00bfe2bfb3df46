// Package config provides centralized default values for the y-shin.net behavior service
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Ensure .env is applied before any package-level config value is read.
	// The file is optional.
	_ = godotenv.Load()
}

// getEnvInt reads environment variable with fallback to default
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvString reads environment variable with string fallback
func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvDuration reads environment variable as duration with fallback
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		// Try as integer seconds
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// Server Configuration
var (
	Port = getEnvString("PORT", "8080")

	// AllowedOrigins constrains both CORS and websocket upgrades.
	AllowedOrigins = strings.Split(getEnvString("ALLOWED_ORIGINS",
		"http://localhost:4321,http://127.0.0.1:4321,http://[::1]:4321,https://y-shin.net"), ",")
)

// Site Content Configuration
var (
	ContentDir = getEnvString("CONTENT_DIR", "./content")
	AlbumsDir  = getEnvString("ALBUMS_DIR", "./albums")
	ThumbsDir  = getEnvString("THUMBS_DIR", "./albums/.thumbs")
	ConfigDir  = getEnvString("CONFIG_DIR", "./config")
)

// Diagram Rendering Configuration
var (
	// Primary and fallback endpoints for the Mermaid-compatible render service.
	// Mirrors the jsdelivr-primary / unpkg-fallback arrangement of the frontend.
	DiagramServiceURL         = getEnvString("DIAGRAM_SERVICE_URL", "http://localhost:8191")
	DiagramServiceFallbackURL = getEnvString("DIAGRAM_SERVICE_FALLBACK_URL", "https://mermaid.y-shin.net")

	// Delay after a theme flip before re-rendering, so CSS transitions settle.
	ThemeSettleDelay = getEnvDuration("THEME_SETTLE_DELAY", 300*time.Millisecond)

	// Per-diagram retry ceiling and backoff unit.
	DiagramRenderAttempts = getEnvInt("DIAGRAM_RENDER_ATTEMPTS", 3)
	DiagramRenderBackoff  = getEnvDuration("DIAGRAM_RENDER_BACKOFF", 500*time.Millisecond)

	// Bootstrap retry budget for the whole initialize+render sequence.
	DiagramInitRetries = getEnvInt("DIAGRAM_INIT_RETRIES", 3)
	DiagramInitBackoff = getEnvDuration("DIAGRAM_INIT_BACKOFF", 1*time.Second)
)

// Umami Analytics Configuration
var (
	UmamiBaseURL   = getEnvString("UMAMI_BASE_URL", "")
	UmamiUsername  = getEnvString("UMAMI_USERNAME", "")
	UmamiPassword  = getEnvString("UMAMI_PASSWORD", "")
	UmamiWebsiteID = getEnvString("UMAMI_WEBSITE_ID", "")
)

// Iconify Configuration
var (
	IconifyAPIURL    = getEnvString("ICONIFY_API_URL", "https://api.iconify.design")
	IconFetchTimeout = getEnvDuration("ICON_FETCH_TIMEOUT", 5*time.Second)
	IconFetchRetries = getEnvInt("ICON_FETCH_RETRIES", 2)
)

// TTL Configuration (derived data only; fragments never expire)
var (
	AnalyticsTTL = time.Duration(getEnvInt("ANALYTICS_TTL_MINUTES", 10)) * time.Minute
	IconSetTTL   = time.Duration(getEnvInt("ICON_SET_TTL_HOURS", 168)) * time.Hour
)

// Cleanup Intervals
var (
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute
)

// Database Configuration (Turso-first, SQLite fallback)
var (
	TursoDatabase = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken    = getEnvString("TURSO_AUTH_TOKEN", "")
	SQLitePath    = getEnvString("SQLITE_PATH", "./data/y-shin.db")
)

// Auth Configuration
var (
	JWTSecret         = getEnvString("JWT_SECRET", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	EncryptionKey     = getEnvString("AES_KEY", "")
	JWTLifetime       = getEnvDuration("JWT_LIFETIME", 24*time.Hour)
)

// Email Digest Configuration
var (
	DigestRecipient = getEnvString("DIGEST_RECIPIENT", "")
	DigestInterval  = getEnvDuration("DIGEST_INTERVAL", 7*24*time.Hour)
)
