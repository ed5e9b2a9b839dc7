package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/database"
	"github.com/automationos/automationos/internal/models"
	"github.com/automationos/automationos/internal/utils"
)

const templatesTable = "templates"

// SeedFailure records one template that could not be inserted
type SeedFailure struct {
	Name string
	Err  error
}

// SeedResult tallies a seeding run. Succeeded + Failed equals the number of
// templates given to Seed.
type SeedResult struct {
	Succeeded int
	Failed    int
	Failures  []SeedFailure
}

// Total is the number of templates attempted
func (r *SeedResult) Total() int {
	return r.Succeeded + r.Failed
}

// Conflicts counts the failures caused by a template that is already stored
func (r *SeedResult) Conflicts() int {
	n := 0
	for _, f := range r.Failures {
		if utils.IsConflictError(f.Err) {
			n++
		}
	}
	return n
}

// TemplateSeeder inserts templates one row at a time
type TemplateSeeder struct {
	client database.Client
	logger zerolog.Logger
}

// NewTemplateSeeder creates a seeder writing through client
func NewTemplateSeeder(client database.Client, logger zerolog.Logger) *TemplateSeeder {
	return &TemplateSeeder{
		client: client,
		logger: logger,
	}
}

// Seed inserts every template in order and keeps going past failures.
// Nothing is deduplicated: running it twice inserts the templates twice
// unless the table rejects them.
func (s *TemplateSeeder) Seed(ctx context.Context, templates []models.Template) *SeedResult {
	result := &SeedResult{}

	s.logger.Info().Int("count", len(templates)).Msg("Seeding workflow templates")

	for i := range templates {
		tmpl := templates[i]

		if err := s.client.InsertRow(ctx, templatesTable, &tmpl); err != nil {
			s.logger.Error().
				Err(err).
				Str("template", tmpl.Name).
				Msg("Failed to insert template")
			if utils.IsDuplicateKey(err) {
				err = fmt.Errorf("%w: %v", utils.WrapConflictError("template", "name", tmpl.Name), err)
			}
			result.Failed++
			result.Failures = append(result.Failures, SeedFailure{Name: tmpl.Name, Err: err})
			continue
		}

		s.logger.Info().Str("template", tmpl.Name).Msg("Inserted template")
		result.Succeeded++
	}

	s.logger.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Seeding complete")

	return result
}
