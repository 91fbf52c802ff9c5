package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort             = "8080"
	defaultDatabaseURL      = "classifieds.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "24h"
	defaultStorageDir       = "./storage"
	defaultPublicBaseURL    = "http://localhost:8080"
	defaultSignedURLTTL     = "15m"
	defaultListingLifetime  = "0s"
	defaultHighlightTTL     = "24h"
	defaultReportRateRPS    = "0.2"
	defaultReportRateBurst  = "3"
	defaultTagCacheTTL      = "10m"
	defaultCORSAllowOrigins = "*"
	defaultLogLevel         = "info"
)

// Config is the runtime configuration shared by the commands.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	StorageDir    string
	PublicBaseURL string
	SignedURLTTL  time.Duration

	// ListingLifetime stamps expires_at on first approval. Zero disables it.
	ListingLifetime   time.Duration
	HighlightLifetime time.Duration

	ReportRateRPS   float64
	ReportRateBurst int

	RedisAddr   string
	TagCacheTTL time.Duration

	CORSAllowOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.StorageDir = strings.TrimSpace(getEnv("STORAGE_DIR", defaultStorageDir))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL)), "/")
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.CORSAllowOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSAllowOrigins))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.SignedURLTTL, err = parseDurationEnv("SIGNED_URL_TTL", defaultSignedURLTTL); err != nil {
		return nil, err
	}
	if cfg.ListingLifetime, err = parseDurationEnv("LISTING_LIFETIME", defaultListingLifetime); err != nil {
		return nil, err
	}
	if cfg.HighlightLifetime, err = parseDurationEnv("HIGHLIGHT_LIFETIME", defaultHighlightTTL); err != nil {
		return nil, err
	}
	if cfg.TagCacheTTL, err = parseDurationEnv("TAG_CACHE_TTL", defaultTagCacheTTL); err != nil {
		return nil, err
	}
	if cfg.ReportRateRPS, err = parseFloatEnv("REPORT_RATE_RPS", defaultReportRateRPS); err != nil {
		return nil, err
	}
	if cfg.ReportRateBurst, err = parseIntEnv("REPORT_RATE_BURST", defaultReportRateBurst); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SignedURLTTL <= 0 {
		return fmt.Errorf("SIGNED_URL_TTL must be > 0")
	}
	if cfg.ListingLifetime < 0 {
		return fmt.Errorf("LISTING_LIFETIME must be >= 0")
	}
	if cfg.HighlightLifetime <= 0 {
		return fmt.Errorf("HIGHLIGHT_LIFETIME must be > 0")
	}
	if cfg.ReportRateRPS <= 0 || cfg.ReportRateBurst <= 0 {
		return fmt.Errorf("REPORT_RATE_RPS and REPORT_RATE_BURST must be > 0")
	}
	if cfg.StorageDir == "" {
		return fmt.Errorf("STORAGE_DIR must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		for _, o := range cfg.CORSAllowOrigins {
			if o == "*" {
				return fmt.Errorf("in prod/release CORS_ALLOWED_ORIGINS must list explicit origins")
			}
		}
	}

	return nil
}

// IsProd reports whether the process runs with production settings.
func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
