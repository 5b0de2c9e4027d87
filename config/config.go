// Package config loads service configuration from the environment.
//
// Values come from process environment variables; a .env or .env.local file
// in the working directory (or its parent) is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development fallback secret. It is rejected in production.
const DefaultJWTSecret = "your-very-secure-secret"

// Config holds the full service configuration.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Kafka     KafkaConfig
	Shutdown  ShutdownConfig

	// loadErrs holds values that were set but could not be parsed.
	loadErrs []error
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string

	// TrustedProxies lists proxy addresses or CIDRs whose X-Forwarded-For
	// is honored. Empty means the peer address is the client IP.
	TrustedProxies []string
}

type LoggingConfig struct {
	Level string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type DatabaseConfig struct {
	URL         string
	MaxConns    int32
	AutoMigrate bool
}

// AuthConfig groups the token, cookie and hashing settings.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieName   string
	CookieMaxAge time.Duration
	BcryptCost   int
}

// RateLimitConfig holds per-role request budgets over a sliding window.
type RateLimitConfig struct {
	Enabled    bool
	Window     time.Duration
	GuestLimit int
	UserLimit  int
	AdminLimit int
	RedisURL   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// KafkaConfig enables domain event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type ShutdownConfig struct {
	Timeout             time.Duration
	ReadinessDrainDelay time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	loadEnvFile()

	var errs []error
	cfg := &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "content-service"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("APP_ENV", "development"),
			Port:    getEnv("PORT", "3000"),

			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvAsBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvAsFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvAsBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			MaxConns:    int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", DefaultJWTSecret),
			TokenTTL:     getEnvAsDuration("JWT_EXPIRES_IN", 24*time.Hour, &errs),
			CookieName:   getEnv("COOKIE_NAME", "token"),
			CookieMaxAge: getEnvAsDuration("COOKIE_MAX_AGE", 15*time.Minute, &errs),
			BcryptCost:   getEnvAsInt("BCRYPT_COST", 10),
		},
		RateLimit: RateLimitConfig{
			Enabled:    getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Window:     getEnvAsDuration("RATE_LIMIT_WINDOW", 2*time.Minute, &errs),
			GuestLimit: getEnvAsInt("RATE_LIMIT_GUEST", 5),
			UserLimit:  getEnvAsInt("RATE_LIMIT_USER", 10),
			AdminLimit: getEnvAsInt("RATE_LIMIT_ADMIN", 20),
			RedisURL:   getEnv("REDIS_URL", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "content.events"),
		},
		Shutdown: ShutdownConfig{
			Timeout:             getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
			ReadinessDrainDelay: getEnvAsDuration("READINESS_DRAIN_DELAY", 0, &errs),
		},
	}
	cfg.loadErrs = errs
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if len(c.loadErrs) > 0 {
		return errors.Join(c.loadErrs...)
	}
	if c.Service.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}
	if c.Auth.CookieMaxAge <= 0 {
		return fmt.Errorf("COOKIE_MAX_AGE must be positive")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
		if c.RateLimit.GuestLimit <= 0 || c.RateLimit.UserLimit <= 0 || c.RateLimit.AdminLimit <= 0 {
			return fmt.Errorf("rate limit budgets must be positive")
		}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1]")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings:
// secure cookies and no internal error detail in responses.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Service.Env, "production")
}

func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return c.Shutdown.Timeout
}

func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return c.Shutdown.ReadinessDrainDelay
}

func loadEnvFile() {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err == nil {
			return
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}
	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration returns defaultValue when key is unset. A value that does
// not parse is recorded in errs and reported by Validate.
func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseDuration extends time.ParseDuration with a "d" (24h) unit,
// so values such as "1d" or "7d" are accepted.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", raw, err)
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	return d, nil
}
