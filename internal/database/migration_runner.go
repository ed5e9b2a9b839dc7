package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automationos/automationos/internal/utils"
	"github.com/rs/zerolog"
)

const migrationSuffix = ".sql"

// createTrackingTableSQL creates the table that records applied versions
const createTrackingTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
  id SERIAL PRIMARY KEY,
  version VARCHAR(255) UNIQUE NOT NULL,
  executed_at TIMESTAMPTZ DEFAULT NOW()
)`

// MigrationFile is one SQL script discovered in the migrations directory
type MigrationFile struct {
	Name string
	Path string
}

// Version is the file name without the .sql suffix
func (f MigrationFile) Version() string {
	return strings.TrimSuffix(f.Name, migrationSuffix)
}

// MigrationResult lists the files applied by a run, in order
type MigrationResult struct {
	Applied []string
}

// MigrationRunner applies every .sql file of a directory in file name order.
// It stops at the first failure and never rolls back.
type MigrationRunner struct {
	client       Client
	dir          string
	dashboardURL string
	logger       zerolog.Logger
}

// NewMigrationRunner creates a runner for dir. dashboardURL is reported to
// the operator when a file has to be applied by hand.
func NewMigrationRunner(client Client, dir, dashboardURL string, logger zerolog.Logger) *MigrationRunner {
	return &MigrationRunner{
		client:       client,
		dir:          dir,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// Discover lists the migration files of the directory sorted by name. A
// missing directory is a configuration error.
func (r *MigrationRunner) Discover() ([]MigrationFile, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, utils.WrapConfigError("migrations.dir", fmt.Sprintf("migrations directory not found: %s", r.dir))
		}
		return nil, utils.WrapConfigError("migrations.dir", fmt.Sprintf("cannot read migrations directory %s: %v", r.dir, err))
	}

	var files []MigrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), migrationSuffix) {
			continue
		}
		files = append(files, MigrationFile{
			Name: entry.Name(),
			Path: filepath.Join(r.dir, entry.Name()),
		})
	}

	// Plain byte order; file names must be zero padded to sort correctly
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// EnsureTrackingTable creates schema_migrations. An "already exists" answer
// is fine; anything else is returned.
func (r *MigrationRunner) EnsureTrackingTable(ctx context.Context) error {
	if err := r.client.ExecuteStatement(ctx, createTrackingTableSQL); err != nil {
		if utils.IsAlreadyExists(err) {
			r.logger.Debug().Msg("Migrations table already exists")
			return nil
		}
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// Run executes all migration files in order
func (r *MigrationRunner) Run(ctx context.Context) (*MigrationResult, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{}

	if err := r.EnsureTrackingTable(ctx); err != nil {
		return result, err
	}

	if len(files) == 0 {
		r.logger.Warn().Str("dir", r.dir).Msg("No migration files found")
		return result, nil
	}

	r.logger.Info().Int("count", len(files)).Msg("Found migrations")

	for _, file := range files {
		r.logger.Info().Str("file", file.Name).Msg("Running migration")

		if err := r.apply(ctx, file); err != nil {
			r.logger.Error().
				Err(err).
				Str("file", file.Name).
				Msg("Migration failed")
			return result, &utils.MigrationError{
				File:         file.Name,
				DashboardURL: r.dashboardURL,
				Cause:        err,
			}
		}

		r.record(ctx, file)
		result.Applied = append(result.Applied, file.Name)

		r.logger.Info().Str("file", file.Name).Msg("Migration completed successfully")
	}

	return result, nil
}

// apply runs a file as one batch and falls back to statement by statement
// execution when the batch call is rejected.
func (r *MigrationRunner) apply(ctx context.Context, file MigrationFile) error {
	content, err := os.ReadFile(file.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	script := string(content)

	batchErr := r.client.ExecuteBatch(ctx, script)
	if batchErr == nil {
		return nil
	}

	statements := SplitStatements(script)
	r.logger.Warn().
		Err(batchErr).
		Str("file", file.Name).
		Int("statement_count", len(statements)).
		Msg("Batch execution failed, attempting direct SQL execution")

	for i, stmt := range statements {
		if err := r.client.ExecuteStatement(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d of %d: %w", i+1, len(statements), err)
		}
	}
	return nil
}

// record stores the applied version. It is best effort: the file has already
// been applied, and a version recorded by an earlier run is expected.
func (r *MigrationRunner) record(ctx context.Context, file MigrationFile) {
	stmt := fmt.Sprintf(
		"INSERT INTO schema_migrations (version) VALUES ('%s') ON CONFLICT (version) DO NOTHING",
		strings.ReplaceAll(file.Version(), "'", "''"),
	)
	if err := r.client.ExecuteStatement(ctx, stmt); err != nil && !utils.IsDuplicateKey(err) {
		r.logger.Warn().
			Err(err).
			Str("version", file.Version()).
			Msg("Could not record migration version")
	}
}
