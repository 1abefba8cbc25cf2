// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// StoreBackend selects the shared TTL key-value store ("redis" or "memory").
	// The memory backend exists for tests and local development only; every
	// production deployment must point at a shared store.
	StoreBackend string
	// RedisURL is the connection URL for the Redis store backend.
	RedisURL string
	// StoreTimeout bounds every store round trip. Authorization-sensitive
	// checks treat a timeout as a denial.
	StoreTimeout time.Duration

	// JWTSigningKey is the HS256 signing key for issued tokens.
	JWTSigningKey string
	// JWTIssuer is the iss claim for issued tokens.
	JWTIssuer string
	// JWTExpiration is the lifetime of issued tokens.
	JWTExpiration time.Duration

	// SignatureAlgorithm selects the HMAC hash for signed requests
	// ("sha256" or "sha512").
	SignatureAlgorithm string
	// SignatureTimestampTolerance is the maximum allowed clock skew for the
	// X-Timestamp header on signed requests.
	SignatureTimestampTolerance time.Duration

	// DeviceMaxPerUser caps the number of trusted devices per user.
	DeviceMaxPerUser int
	// DeviceTrustExpiration is how long a trusted device stays valid without use.
	DeviceTrustExpiration time.Duration

	// PermissionCacheTTL bounds staleness of cached effective permissions.
	// Mutations invalidate synchronously; the TTL only covers external writers.
	PermissionCacheTTL time.Duration

	// ConcurrentLeaseTTL bounds in-flight request leases so crashed requests
	// cannot permanently occupy a concurrency slot.
	ConcurrentLeaseTTL time.Duration

	// RateLimitTokenEnabled indicates whether the in-process per-IP limiter on
	// the token endpoint is enabled.
	RateLimitTokenEnabled bool
	// RateLimitTokenRequestsPerSec is the per-IP request rate for the token endpoint.
	RateLimitTokenRequestsPerSec float64
	// RateLimitTokenBurst is the per-IP burst size for the token endpoint.
	RateLimitTokenBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 30, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Shared store
		StoreBackend: env.GetString("STORE_BACKEND", "redis"),
		RedisURL:     env.GetString("REDIS_URL", "redis://localhost:6379/0"),
		StoreTimeout: env.GetDuration("STORE_TIMEOUT_MS", 500, time.Millisecond),

		// JWT
		JWTSigningKey: env.GetString("JWT_SIGNING_KEY", ""),
		JWTIssuer:     env.GetString("JWT_ISSUER", "https://api.hdtickets.example"),
		JWTExpiration: env.GetDuration("JWT_EXPIRATION_SECONDS", 86400, time.Second),

		// Request signing
		SignatureAlgorithm:          env.GetString("SIGNATURE_ALGORITHM", "sha256"),
		SignatureTimestampTolerance: env.GetDuration("SIGNATURE_TIMESTAMP_TOLERANCE_SECONDS", 300, time.Second),

		// Device trust
		DeviceMaxPerUser:      env.GetInt("DEVICE_MAX_PER_USER", 10),
		DeviceTrustExpiration: env.GetDuration("DEVICE_TRUST_EXPIRATION_DAYS", 90, 24*time.Hour),

		// Permissions
		PermissionCacheTTL: env.GetDuration("PERMISSION_CACHE_TTL_SECONDS", 3600, time.Second),

		// Rate limiting
		ConcurrentLeaseTTL: env.GetDuration("CONCURRENT_LEASE_TTL_SECONDS", 60, time.Second),

		// Rate limiting for the token endpoint (in-process, per-IP)
		RateLimitTokenEnabled:        env.GetBool("RATE_LIMIT_TOKEN_ENABLED", true),
		RateLimitTokenRequestsPerSec: env.GetFloat64("RATE_LIMIT_TOKEN_REQUESTS_PER_SEC", 5.0),
		RateLimitTokenBurst:          env.GetInt("RATE_LIMIT_TOKEN_BURST", 10),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "admission"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the Gin mode based on the log level.
// Debug log level enables Gin debug mode, anything else uses release mode.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv attempts to load a .env file from the current directory or any
// parent directory. Missing files are not an error.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}

	for {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
