package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unclebandit/charity-backend/internal/config"
	"github.com/unclebandit/charity-backend/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema to the configured SQL store",
		Long: `Apply internal/db/schema.sql to the database selected by STORE_DRIVER.

Every statement is idempotent, so running migrate twice is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == config.DriverMemory {
				return fmt.Errorf("nothing to migrate for the %s driver", cfg.StoreDriver)
			}

			conn, err := db.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(cmd.Context(), conn, cfg.StoreDriver); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema applied to %s store\n", cfg.StoreDriver)
			return nil
		},
	}
}
