package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/config"
)

const healthCheckTimeout = 5 * time.Second

// Open connects to the direct Postgres database described by cfg and checks
// that it answers.
func Open(cfg *config.Config, logger zerolog.Logger) (*Database, error) {
	if !cfg.DirectDatabase() {
		return nil, fmt.Errorf("%s is not set: a direct database connection is required", config.EnvDatabaseURL)
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("Connecting to database")

	db := NewDatabase(cfg.DatabaseOptions())
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info().Msg("Database connection established")
	return db, nil
}

// NewClient returns the Client the command line tools write through: the
// direct connection when one is configured, the hosted REST endpoint
// otherwise. The Supabase credentials are required in both modes. The
// returned close function is never nil.
func NewClient(cfg *config.Config, logger zerolog.Logger) (Client, func() error, error) {
	if err := cfg.RequireServiceAccess(); err != nil {
		return nil, nil, err
	}

	if cfg.DirectDatabase() {
		db, err := Open(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}

	logger.Debug().Str("url", cfg.Supabase.URL).Msg("Using Supabase REST endpoint")
	client := NewSupabaseClient(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, logger)
	return client, func() error { return nil }, nil
}
