// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/unclebandit/charity-backend/internal/config"
)

//go:embed schema.sql
var Schema string

// Open connects to the configured SQL database and pings it.
func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("opening postgres")
		conn, err = sql.Open("postgres", cfg.PostgresDSN())
	case config.DriverSQLite:
		log.Info().Str("path", cfg.SQLitePath).Msg("opening sqlite")
		// immediate transactions take the write lock up front, so locked reads fence.
		conn, err = sql.Open("sqlite3", fmt.Sprintf("file:%s?_txlock=immediate&_foreign_keys=on&_busy_timeout=5000", cfg.SQLitePath))
		if err == nil {
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("driver %q has no SQL database", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	log.Info().Msg("✅ Connected to database")
	return conn, nil
}

// SchemaFor returns the schema for a driver. SQLite gives NUMERIC columns REAL storage,
// so money columns are kept as exact decimal text there.
func SchemaFor(driver string) string {
	if driver == config.DriverSQLite {
		return strings.ReplaceAll(Schema, "NUMERIC", "TEXT")
	}
	return Schema
}

// Migrate applies the driver's schema. Every statement is idempotent.
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	if _, err := conn.ExecContext(ctx, SchemaFor(driver)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
