package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/irgordon/bazaar/api/internal/config"
	"github.com/irgordon/bazaar/api/internal/db/postgres"
)

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m *postgres.Migrator) error { return m.Up() }, "up")
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(m *postgres.Migrator) error { return m.Down() }, "down")
}

func withMigrator(cmd *cobra.Command, step func(*postgres.Migrator) error, direction string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.DriverPostgres {
		return fmt.Errorf("migrations need STORE_DRIVER=%s", config.DriverPostgres)
	}

	pool, err := postgres.NewPool(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("FATAL: DB failed", "error", err)
		return err
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool)
	if err != nil {
		return err
	}
	if err := step(m); err != nil {
		logger.Error("Migration failed", "direction", direction, "error", err)
		return err
	}
	logger.Info("✅ Migrations applied", "direction", direction)
	return nil
}
