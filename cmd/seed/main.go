package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automationos/automationos/internal/config"
	"github.com/automationos/automationos/internal/database"
	"github.com/automationos/automationos/internal/services"
	"github.com/automationos/automationos/internal/utils"
)

func main() {
	var (
		configPath string
		timeout    time.Duration
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.DurationVar(&timeout, "timeout", 0, "Abort the whole run after this long (0 waits forever)")
	flag.Parse()

	// Individual insert failures are reported but do not change the exit code
	logger := utils.NewLogger(utils.CLIConfig("info", false))
	os.Exit(utils.ExitCode(logger, func() error {
		return run(configPath, timeout)
	}))
}

func run(configPath string, timeout time.Duration) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return err
	}

	logger := utils.NewLogger(utils.CLIConfig(cfg.Server.LogLevel, cfg.Server.Debug))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, closeClient, err := database.NewClient(cfg, logger)
	if err != nil {
		if utils.IsConfigError(err) {
			logger.Error().Err(err).Msg("Missing Supabase credentials in .env.local")
		} else {
			logger.Error().Err(err).Msg("Seeding failed")
		}
		return err
	}
	defer func() {
		if err := closeClient(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	seeder := services.NewTemplateSeeder(client, logger)
	result := seeder.Seed(ctx, services.DefaultTemplates())

	fmt.Println()
	fmt.Println("Seeding complete:")
	fmt.Printf("  Success: %d\n", result.Succeeded)
	fmt.Printf("  Failed:  %d\n", result.Failed)
	if conflicts := result.Conflicts(); conflicts > 0 {
		fmt.Printf("  (%d already present)\n", conflicts)
	}
	fmt.Println()
	fmt.Println("Database is ready! Run: go run ./cmd/http-server")
	return nil
}
