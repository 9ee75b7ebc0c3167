package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"resume-ats/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	CORSAllowOrigin  []string
	DatabaseURL      string
	RedisURL         string
	LogLevel         string
	MaxInputBytes    int
	MaxUploadBytes   int64
	CacheTTL         time.Duration
	BatchConcurrency int
	RateLimitRPS     float64
	RateLimitBurst   int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url.missing", map[string]any{"env": env})
	}

	return Config{
		Port:             v.GetString("PORT"),
		Env:              env,
		CORSAllowOrigin:  splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseURL:      dbURL,
		RedisURL:         strings.TrimSpace(v.GetString("REDIS_URL")),
		LogLevel:         strings.ToLower(v.GetString("LOG_LEVEL")),
		MaxInputBytes:    positiveInt(v, "ATS_MAX_INPUT_BYTES", defaultMaxInputBytes),
		MaxUploadBytes:   int64(positiveInt(v, "ATS_MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		CacheTTL:         positiveDuration(v, "ATS_CACHE_TTL", defaultCacheTTL),
		BatchConcurrency: positiveInt(v, "ATS_BATCH_CONCURRENCY", defaultBatchConcurrency),
		RateLimitRPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
	}
}

const (
	defaultMaxInputBytes    = 200 * 1024
	defaultMaxUploadBytes   = 5 << 20
	defaultCacheTTL         = 24 * time.Hour
	defaultBatchConcurrency = 4
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

// positiveInt returns def when key is unset, malformed or not positive.
func positiveInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if n := v.GetInt(key); n > 0 {
		return n
	}
	telemetry.Warn("config.invalid", map[string]any{"key": key, "value": v.GetString(key)})
	return def
}

func positiveDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	telemetry.Warn("config.invalid", map[string]any{"key": key, "value": v.GetString(key)})
	return def
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
	case "test":
		return "test"
	default:
		return "dev"
	}
}
