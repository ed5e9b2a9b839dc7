package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/api"
	"github.com/automationos/automationos/internal/config"
	"github.com/automationos/automationos/internal/database"
	"github.com/automationos/automationos/internal/services"
	"github.com/automationos/automationos/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)
	logger.Info().
		Int("port", cfg.HTTP.Port).
		Str("app_url", cfg.Site.AppURL).
		Msg("Starting AutomationOS site server")

	if err := cfg.RequireSessionSecret(); err != nil {
		logger.Fatal().Err(err).Msg("Dashboard sessions cannot be verified")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	templates := services.NewTemplateService(db.DB(), logger)

	server, err := api.NewServer(cfg, db, templates, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create HTTP server")
	}

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.HTTP.Port); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrChan:
		logger.Error().Err(err).Msg("HTTP server error")
	}

	logger.Info().Msg("Starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to gracefully shutdown HTTP server")
	}

	logger.Info().Msg("Shutdown complete")
}

// setupLogging logs to stderr unless LOG_FILE is set
func setupLogging(cfg *config.Config) zerolog.Logger {
	logConfig := utils.DefaultConfig()
	if cfg.Server.Debug {
		logConfig = utils.DevelopmentConfig()
	} else if cfg.Server.LogLevel != "" {
		logConfig.Level = cfg.Server.LogLevel
	}
	logConfig.LogFile = os.Getenv("LOG_FILE")

	utils.SetupGlobalLogger(logConfig)
	return utils.NewLogger(logConfig)
}
