// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPAddr string

	StoreDriver string
	DatabaseURL string
	DBUser      string
	DBPassword  string
	DBHost      string
	DBPort      string
	DBName      string
	SQLitePath  string

	AuthSecret   string
	AuthIssuer   string
	AuthAudience string

	AMQPURL      string
	PaymentDedup bool

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ No .env file found, relying on OS environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, so tests can avoid the process env.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		HTTPAddr:     get("HTTP_ADDR", ":8080"),
		StoreDriver:  strings.ToLower(get("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:  get("DATABASE_URL", ""),
		DBUser:       get("DB_USER", ""),
		DBPassword:   getenv("DB_PASSWORD"),
		DBHost:       get("DB_HOST", "localhost"),
		DBPort:       get("DB_PORT", "5432"),
		DBName:       get("DB_NAME", ""),
		SQLitePath:   get("SQLITE_PATH", "charity.db"),
		AuthSecret:   getenv("AUTH_JWT_SECRET"),
		AuthIssuer:   get("AUTH_ISSUER", ""),
		AuthAudience: get("AUTH_AUDIENCE", ""),
		AMQPURL:      get("AMQP_URL", ""),
		LogLevel:     get("LOG_LEVEL", "info"),
		LogFormat:    strings.ToLower(get("LOG_FORMAT", "console")),
	}

	dedup, err := strconv.ParseBool(get("PAYMENT_DEDUP", "true"))
	if err != nil {
		return nil, fmt.Errorf("PAYMENT_DEDUP: %w", err)
	}
	cfg.PaymentDedup = dedup

	switch cfg.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}

// PostgresDSN prefers DATABASE_URL and falls back to the DB_* parts.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}
