package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/automationos/automationos/internal/models"
	"github.com/automationos/automationos/internal/utils"
)

const (
	defaultTemplateLimit = 20
	maxTemplateLimit     = 100
)

// TemplateFilter narrows a template listing
type TemplateFilter struct {
	Category   string
	Tag        string
	PublicOnly bool
	Limit      int
}

// CategoryCount is a category with the number of templates filed under it
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// TemplateService serves read-only queries over the template catalog
type TemplateService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(db *gorm.DB, logger zerolog.Logger) *TemplateService {
	return &TemplateService{
		db:     db,
		logger: logger,
	}
}

// List returns templates matching filter, newest first
func (s *TemplateService) List(ctx context.Context, filter TemplateFilter) ([]*models.Template, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTemplateLimit
	}
	if limit > maxTemplateLimit {
		limit = maxTemplateLimit
	}

	query := s.db.WithContext(ctx).Model(&models.Template{})
	if filter.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	query = query.Order("created_at DESC, name ASC")

	// Tags are matched after loading so the query stays portable across
	// drivers without array operators; the catalog is small.
	if filter.Tag == "" {
		query = query.Limit(limit)
	}

	var templates []*models.Template
	if err := query.Find(&templates).Error; err != nil {
		return nil, utils.WrapDatabaseError("list templates", err)
	}

	if filter.Tag != "" {
		matched := templates[:0]
		for _, t := range templates {
			if t.HasTag(filter.Tag) {
				matched = append(matched, t)
			}
			if len(matched) == limit {
				break
			}
		}
		templates = matched
	}

	s.logger.Debug().
		Str("category", filter.Category).
		Str("tag", filter.Tag).
		Int("count", len(templates)).
		Msg("Listed templates")

	return templates, nil
}

// Get returns a single template by id
func (s *TemplateService) Get(ctx context.Context, id string) (*models.Template, error) {
	if id == "" {
		return nil, utils.RequiredFieldError("id")
	}
	// ids are uuids; anything else cannot match a row
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.WrapNotFoundError("template", id)
	}

	var template models.Template
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.WrapNotFoundError("template", id)
		}
		return nil, utils.WrapDatabaseError("get template", err)
	}
	return &template, nil
}

// GetByName returns the first public template with the given name
func (s *TemplateService) GetByName(ctx context.Context, name string) (*models.Template, error) {
	if name == "" {
		return nil, utils.RequiredFieldError("name")
	}

	var template models.Template
	err := s.db.WithContext(ctx).
		Where("name = ? AND is_public = ?", name, true).
		Order("created_at ASC").
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.WrapNotFoundError("template", name)
		}
		return nil, utils.WrapDatabaseError("get template by name", err)
	}
	return &template, nil
}

// Categories lists the categories of public templates with their sizes
func (s *TemplateService) Categories(ctx context.Context) ([]CategoryCount, error) {
	var categories []CategoryCount
	err := s.db.WithContext(ctx).
		Model(&models.Template{}).
		Select("category, COUNT(*) AS count").
		Where("is_public = ?", true).
		Group("category").
		Order("category ASC").
		Scan(&categories).Error
	if err != nil {
		return nil, utils.WrapDatabaseError("list template categories", err)
	}
	return categories, nil
}
