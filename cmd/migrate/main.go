package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/config"
	"github.com/automationos/automationos/internal/database"
	"github.com/automationos/automationos/internal/utils"
)

func main() {
	var (
		configPath string
		dir        string
		timeout    time.Duration
		status     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&dir, "dir", "", "Migrations directory (default: migrations.dir from configuration)")
	flag.DurationVar(&timeout, "timeout", 0, "Abort the whole run after this long (0 waits forever)")
	flag.BoolVar(&status, "status", false, "List applied and pending migrations (requires DATABASE_URL)")
	flag.Parse()

	logger := utils.NewLogger(utils.CLIConfig("info", false))
	os.Exit(utils.ExitCode(logger, func() error {
		return run(configPath, dir, timeout, status)
	}))
}

func run(configPath, dir string, timeout time.Duration, status bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return err
	}

	logger := utils.NewLogger(utils.CLIConfig(cfg.Server.LogLevel, cfg.Server.Debug))

	if err := cfg.RequireServiceAccess(); err != nil {
		logger.Error().Err(err).Msg("Missing Supabase credentials in .env.local")
		return err
	}

	if dir == "" {
		dir = cfg.Migrations.Dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if status {
		return printStatus(ctx, cfg, dir, logger)
	}

	client, closeClient, err := database.NewClient(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create database client")
		return err
	}
	defer func() {
		if err := closeClient(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	logger.Info().Str("dir", dir).Msg("Starting database migrations")

	runner := database.NewMigrationRunner(client, dir, cfg.DashboardSQLURL(), logger)
	result, err := runner.Run(ctx)
	if err != nil {
		reportFailure(logger, err)
		return err
	}

	if len(result.Applied) == 0 {
		return nil
	}

	logger.Info().Int("applied", len(result.Applied)).Msg("All migrations completed successfully")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Run: go run ./cmd/seed (to add template data)")
	fmt.Println("  2. Run: go run ./cmd/http-server (to start the app)")
	return nil
}

func reportFailure(logger zerolog.Logger, err error) {
	var migErr *utils.MigrationError
	if !errors.As(err, &migErr) {
		logger.Error().Err(err).Msg("Migration failed")
		return
	}

	logger.Error().Err(migErr.Cause).Str("file", migErr.File).Msg("Migration failed")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Migration failed. Please run migrations manually via Supabase Dashboard.")
	if migErr.DashboardURL != "" {
		fmt.Fprintf(os.Stderr, "  Dashboard: %s\n", migErr.DashboardURL)
	}
}

// printStatus needs a direct connection; the REST gateway cannot read
// schema_migrations without an exposed view.
func printStatus(ctx context.Context, cfg *config.Config, dir string, logger zerolog.Logger) error {
	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	defer db.Close()

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read schema_migrations")
		return err
	}

	states, err := database.NewMigrationRunner(nil, dir, cfg.DashboardSQLURL(), logger).Status(applied)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list migrations")
		return err
	}

	for _, state := range states {
		if state.Applied {
			fmt.Printf("  applied  %s  (%s)\n", state.File.Name, state.ExecutedAt.Format(time.RFC3339))
		} else {
			fmt.Printf("  pending  %s\n", state.File.Name)
		}
	}
	return nil
}
