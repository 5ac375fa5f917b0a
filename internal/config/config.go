package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	ContentPath string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Access tokens
	TokenExpiry time.Duration

	// Admin API (optional - /audit is open when unset)
	AdminJWTSecret string
	AdminJWTExpiry time.Duration

	// Market data
	FredAPIKey      string
	FeedCacheTTL    time.Duration
	FeedHTTPTimeout time.Duration

	// Email (optional - download links are only returned inline when unset)
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Export archive (optional, S3-compatible: MinIO, AWS S3, R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "Coastal Oak"),
		AppEnv:      envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:      envString("APP_URL", "http://localhost:5050"),
		Port:        envString("PORT", "5050"),
		ContentPath: envString("CONTENT_PATH", "content"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/livedeck.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Access tokens
		TokenExpiry: envDuration("DECK_TOKEN_EXPIRY", 24*time.Hour),

		// Admin API
		AdminJWTSecret: envString("ADMIN_JWT_SECRET", ""),
		AdminJWTExpiry: envDuration("ADMIN_JWT_EXPIRY", 12*time.Hour),

		// Market data
		FredAPIKey:      envString("FRED_API_KEY", ""),
		FeedCacheTTL:    envDuration("FEED_CACHE_TTL", 15*time.Minute),
		FeedHTTPTimeout: envDuration("FEED_HTTP_TIMEOUT", 15*time.Second),

		// Email
		EmailFrom:    envString("EMAIL_FROM", "ir@coastaloak.example"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Export archive
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures required services are configured for production
// deployments. Development allows fallback modes (log-only email, open /audit)
// for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.AdminJWTSecret == "" {
		slog.Error("production deployment requires ADMIN_JWT_SECRET",
			"hint", "set APP_ENV=development to leave the audit endpoint open locally")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ArchiveEnabled reports whether exported decks should be copied to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}
