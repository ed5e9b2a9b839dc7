package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/config"
	"github.com/automationos/automationos/internal/database"
	"github.com/automationos/automationos/internal/mcp"
	"github.com/automationos/automationos/internal/services"
	"github.com/automationos/automationos/internal/utils"
)

const version = "v0.1.0"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries JSON-RPC, so logs go to a file
	logger := setupLogging(cfg)
	logger.Info().Str("version", version).Msg("Starting AutomationOS template MCP server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	mcpServer, err := mcp.NewServer(services.NewTemplateService(db.DB(), logger), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MCP server")
	}

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info().Msg("Starting MCP server on stdio")
		if err := mcpServer.Serve(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrChan:
		logger.Error().Err(err).Msg("MCP server error")
	}

	logger.Info().Msg("Shutdown complete")
}

// setupLogging writes to LOG_FILE or to the per-user log directory
func setupLogging(cfg *config.Config) zerolog.Logger {
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		logFile = filepath.Join(homeDir, ".config", "automationos", "logs", "mcp.log")
	}

	logConfig := utils.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		CallerInfo: cfg.Server.Debug,
		LogFile:    logFile,
	}

	utils.SetupGlobalLogger(logConfig)
	return utils.NewLogger(logConfig)
}
