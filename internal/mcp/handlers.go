package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/services"
	"github.com/automationos/automationos/internal/utils"
)

const maxListLimit = 100

// Handler implements the template tools on top of the catalog service
type Handler struct {
	templates *services.TemplateService
	logger    zerolog.Logger
}

// NewHandler creates a new MCP handler
func NewHandler(templates *services.TemplateService, logger zerolog.Logger) *Handler {
	return &Handler{
		templates: templates,
		logger:    logger,
	}
}

// HandleListTemplates handles the list_templates tool call
func (h *Handler) HandleListTemplates(ctx context.Context, params json.RawMessage) (interface{}, error) {
	h.logger.Debug().RawJSON("params", params).Msg("handleListTemplates called")

	var req ListTemplatesRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return ListTemplatesResponse{
			Templates: []TemplateSummary{},
			Error:     fmt.Sprintf("invalid request format: %v", err),
		}, nil
	}

	if req.Limit < 0 || req.Limit > maxListLimit {
		return ListTemplatesResponse{
			Templates: []TemplateSummary{},
			Error:     fmt.Sprintf("limit must be between 1 and %d", maxListLimit),
		}, nil
	}

	templates, err := h.templates.List(ctx, services.TemplateFilter{
		Category:   req.Category,
		Tag:        req.Tag,
		PublicOnly: true,
		Limit:      req.Limit,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list templates")
		return ListTemplatesResponse{
			Templates: []TemplateSummary{},
			Error:     fmt.Sprintf("failed to list templates: %v", err),
		}, nil
	}

	summaries := make([]TemplateSummary, len(templates))
	for i, t := range templates {
		summaries[i] = summarize(t)
	}

	h.logger.Info().
		Int("count", len(summaries)).
		Str("category", req.Category).
		Str("tag", req.Tag).
		Msg("listed templates")

	return ListTemplatesResponse{
		Templates: summaries,
		Count:     len(summaries),
	}, nil
}

// HandleGetTemplate handles the get_template tool call
func (h *Handler) HandleGetTemplate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	h.logger.Debug().RawJSON("params", params).Msg("handleGetTemplate called")

	var req GetTemplateRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return GetTemplateResponse{Error: fmt.Sprintf("invalid request format: %v", err)}, nil
	}
	if req.ID == "" {
		return GetTemplateResponse{Error: "id is required"}, nil
	}

	template, err := h.templates.Get(ctx, req.ID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return GetTemplateResponse{Error: fmt.Sprintf("template %s not found", req.ID)}, nil
		}
		h.logger.Error().Err(err).Str("id", req.ID).Msg("failed to get template")
		return GetTemplateResponse{Error: fmt.Sprintf("failed to get template: %v", err)}, nil
	}

	if !template.IsPublic {
		return GetTemplateResponse{Error: fmt.Sprintf("template %s not found", req.ID)}, nil
	}

	return GetTemplateResponse{Template: template}, nil
}

// Categories returns the catalog categories for the categories resource
func (h *Handler) Categories(ctx context.Context) (CategoriesResponse, error) {
	categories, err := h.templates.Categories(ctx)
	if err != nil {
		return CategoriesResponse{}, err
	}
	if categories == nil {
		categories = []services.CategoryCount{}
	}
	return CategoriesResponse{Categories: categories}, nil
}
