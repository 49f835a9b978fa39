// Package config loads service configuration from the environment and an
// optional config file, applies defaults and validates the result so the
// process fails fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout covers export downloads.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"1048576"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL accepts DATABASE_URL or DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies pending migrations at server start.
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// ImportConfig holds bulk import settings.
type ImportConfig struct {
	MaxFileSize   int64         `env:"IMPORT_MAX_FILE_SIZE" default:"5242880"`
	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"5"`
	MaxWaitTime   time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`
	Timeout       time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds the per-user operation limit and the per-IP
// request limit.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// Operations per user within Window for create, update, delete and import.
	Operations int           `env:"RATE_LIMIT_OPERATIONS" default:"5"`
	Window     time.Duration `env:"RATE_LIMIT_WINDOW" default:"60s"`

	// RequestsPerMinute is the global per-IP limit.
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	SweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" default:"5m"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret    string        `env:"AUTH_JWT_SECRET" required:"true"`
	Issuer       string        `env:"AUTH_ISSUER" default:"buyerleads"`
	SessionTTL   time.Duration `env:"AUTH_SESSION_TTL" default:"24h"`
	CookieSecure bool          `env:"AUTH_COOKIE_SECURE" default:"false"`
}

// RedisConfig selects the shared rate-limit store. An empty URL keeps
// limiter state in process memory.
type RedisConfig struct {
	URL       string `env:"REDIS_URL"`
	PoolSize  int    `env:"REDIS_POOL_SIZE" default:"10"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" default:"buyerleads:ratelimit:"`
}

// KafkaConfig enables history streaming when Brokers is set.
type KafkaConfig struct {
	Brokers  []string      `env:"KAFKA_BROKERS"`
	Topic    string        `env:"KAFKA_HISTORY_TOPIC" default:"buyer-history"`
	ClientID string        `env:"KAFKA_CLIENT_ID" default:"buyerleads"`
	Timeout  time.Duration `env:"KAFKA_TIMEOUT" default:"5s"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
