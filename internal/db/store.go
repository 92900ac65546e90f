// internal/db/store.go
package db

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/charity-backend/internal/config"
	"github.com/unclebandit/charity-backend/internal/repository"
)

// OpenStore builds the configured store. The returned close func is never nil.
// SQLite databases are migrated on open; PostgreSQL is migrated by charityctl.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, func() error, error) {
	noop := func() error { return nil }

	if cfg.StoreDriver == config.DriverMemory {
		log.Warn().Msg("⚠️ using in-memory store, data is lost on exit")
		return repository.NewMemoryStore(), noop, nil
	}

	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, noop, err
	}

	dialect := repository.Postgres
	if cfg.StoreDriver == config.DriverSQLite {
		dialect = repository.SQLite
		if err := Migrate(ctx, conn, cfg.StoreDriver); err != nil {
			conn.Close()
			return nil, noop, err
		}
	}
	return repository.NewSQLStore(conn, dialect), closer(conn), nil
}

func closer(conn *sql.DB) func() error {
	return conn.Close
}
