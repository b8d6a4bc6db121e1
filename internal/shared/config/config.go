package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port              string
	Env               string
	LogLevel          string
	AnalysisBaseURL   string
	AnalysisTimeout   time.Duration
	SessionTTL        time.Duration
	SessionCookie     string
	MaxUploadBytes    int64
	CORSAllowOrigin   []string
	SentryDSN         string
	AnalyzeRatePerMin int
}

// Load reads configuration from environment variables with sensible defaults.
// Values already set in the environment win over .env files.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, which keeps tests off the
// process environment.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if val := strings.TrimSpace(getenv(key)); val != "" {
			return val
		}
		return def
	}

	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, raw))
			return def
		}
		return d
	}
	integer := func(key string, def int64) int64 {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid number %q", key, raw))
			return def
		}
		return n
	}

	cfg := Config{
		Port:              get("PORT", "8080"),
		Env:               normalizeEnv(get("ENV", "dev")),
		LogLevel:          strings.ToLower(get("LOG_LEVEL", "info")),
		AnalysisBaseURL:   strings.TrimRight(get("ANALYSIS_BASE_URL", "http://localhost:5000/api"), "/"),
		AnalysisTimeout:   duration("ANALYSIS_TIMEOUT", 60*time.Second),
		SessionTTL:        duration("SESSION_TTL", 2*time.Hour),
		SessionCookie:     get("SESSION_COOKIE", "cm_session"),
		MaxUploadBytes:    integer("MAX_UPLOAD_BYTES", 10<<20),
		CORSAllowOrigin:   splitAndTrim(get("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		SentryDSN:         get("SENTRY_DSN", ""),
		AnalyzeRatePerMin: int(integer("ANALYZE_RATE_PER_MIN", 10)),
	}
	if cfg.MaxUploadBytes == 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
		cfg.MaxUploadBytes = 10 << 20
	}
	return cfg, errors.Join(errs...)
}

// Production reports whether the server runs with production settings.
func (c Config) Production() bool {
	return c.Env == "production"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
