package database

import (
	"context"
	"fmt"
	"time"

	"github.com/automationos/automationos/internal/models"
	"github.com/automationos/automationos/internal/utils"
)

// MigrationState pairs a discovered file with its schema_migrations row
type MigrationState struct {
	File       MigrationFile
	Applied    bool
	ExecutedAt *time.Time
}

// AppliedMigrations reads schema_migrations ordered by version
func (d *Database) AppliedMigrations(ctx context.Context) ([]models.SchemaMigration, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var applied []models.SchemaMigration
	if err := d.db.WithContext(ctx).Order("version ASC").Find(&applied).Error; err != nil {
		return nil, utils.WrapDatabaseError("list migrations", err)
	}
	return applied, nil
}

// Status matches the files of the directory against the recorded versions.
// Recorded versions without a file are ignored.
func (r *MigrationRunner) Status(applied []models.SchemaMigration) ([]MigrationState, error) {
	files, err := r.Discover()
	if err != nil {
		return nil, err
	}

	recorded := make(map[string]time.Time, len(applied))
	for _, m := range applied {
		recorded[m.Version] = m.ExecutedAt
	}

	states := make([]MigrationState, 0, len(files))
	for _, f := range files {
		state := MigrationState{File: f}
		if at, ok := recorded[f.Version()]; ok {
			executedAt := at
			state.Applied = true
			state.ExecutedAt = &executedAt
		}
		states = append(states, state)
	}
	return states, nil
}
