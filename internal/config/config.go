package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/tomeriko7/finalProject-sub000/pkg/config"
)

// Config holds all configuration for the storefront server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost          string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser          string `env:"POSTGRES_USER" envDefault:"florista"`
	PostgresPass          string `env:"POSTGRES_PASSWORD" envDefault:"florista_secret"`
	PostgresDB            string `env:"POSTGRES_DB" envDefault:"florista"`
	PostgresSSL           string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32  `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int    `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`
	SlowQueryThresholdMs  int    `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart and guest state lifetimes
	CartTTLHours       int `env:"CART_TTL_HOURS" envDefault:"720"`
	GuestStateTTLHours int `env:"GUEST_STATE_TTL_HOURS" envDefault:"168"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret        string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry  string `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry string `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// pprof (empty list disables the endpoints)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"" envSeparator:","`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if _, err := time.ParseDuration(c.JWTAccessExpiry); err != nil {
		return fmt.Errorf("invalid JWT access expiry %q: %w", c.JWTAccessExpiry, err)
	}
	if _, err := time.ParseDuration(c.JWTRefreshExpiry); err != nil {
		return fmt.Errorf("invalid JWT refresh expiry %q: %w", c.JWTRefreshExpiry, err)
	}

	if c.CartTTLHours < 1 {
		return fmt.Errorf("cart TTL must be at least 1 hour, got %d", c.CartTTLHours)
	}
	if c.GuestStateTTLHours < 1 {
		return fmt.Errorf("guest state TTL must be at least 1 hour, got %d", c.GuestStateTTLHours)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if c.Environment != "development" {
		if c.JWTSecret == "change-this-to-a-secure-secret" {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}

	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// CartTTL returns the per-user cart expiry as a duration.
func (c *Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLHours) * time.Hour
}

// GuestStateTTL returns the guest holding-area expiry as a duration.
func (c *Config) GuestStateTTL() time.Duration {
	return time.Duration(c.GuestStateTTLHours) * time.Hour
}
