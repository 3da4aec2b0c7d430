package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/irgordon/bazaar/api/internal/config"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	rootCmd = &cobra.Command{
		Use:           "bazaar-api",
		Short:         "Agent Bazaar marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runMigrateUp,
	}
	downCmd = &cobra.Command{
		Use:   "down",
		Short: "Revert all applied migrations",
		RunE:  runMigrateDown,
	}

	// Flags
	seedDemo bool
)

func init() {
	serveCmd.Flags().BoolVar(&seedDemo, "seed-demo", true, "Load the demo catalog when STORE_DRIVER=memory")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	migrateCmd.AddCommand(upCmd, downCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// bootstrap loads configuration and builds the process logger every command shares.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("🚨 [FATAL] invalid configuration", slog.Any("error", err))
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
