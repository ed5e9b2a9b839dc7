package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/automationos/automationos/internal/models"
	"github.com/automationos/automationos/internal/services"
	"github.com/automationos/automationos/internal/utils"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// TemplateListResponse wraps a template listing
type TemplateListResponse struct {
	Templates []*models.Template `json:"templates"`
	Count     int                `json:"count"`
}

// CategoryListResponse wraps the category listing
type CategoryListResponse struct {
	Categories []services.CategoryCount `json:"categories"`
}

// respondCatalogError reports a failed catalog read. A database that cannot
// answer is reported as unavailable.
func respondCatalogError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	if utils.IsDatabaseError(err) {
		status = http.StatusServiceUnavailable
	}

	utils.FromContext(c.Request.Context()).Error().
		Err(err).
		Int("status", status).
		Msg(message)
	c.JSON(status, ErrorResponse{Error: message})
}

// listTemplatesHandler godoc
// @Summary List templates
// @Description List public workflow templates, newest first
// @Tags templates
// @Produce json
// @Param category query string false "Filter by category"
// @Param tag query string false "Filter by tag"
// @Param limit query int false "Maximum number of results (1-100)"
// @Success 200 {object} TemplateListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /templates [get]
func (s *Server) listTemplatesHandler(c *gin.Context) {
	filter := services.TemplateFilter{
		Category:   c.Query("category"),
		Tag:        c.Query("tag"),
		PublicOnly: true,
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer between 1 and 100"})
			return
		}
		filter.Limit = limit
	}

	templates, err := s.templates.List(c.Request.Context(), filter)
	if err != nil {
		respondCatalogError(c, err, "Failed to list templates")
		return
	}

	if templates == nil {
		templates = []*models.Template{}
	}

	c.JSON(http.StatusOK, TemplateListResponse{
		Templates: templates,
		Count:     len(templates),
	})
}

// getTemplateHandler godoc
// @Summary Get a template
// @Description Fetch one public workflow template with its definition
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} models.Template
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /templates/{id} [get]
func (s *Server) getTemplateHandler(c *gin.Context) {
	id := c.Param("id")

	template, err := s.templates.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case utils.IsNotFoundError(err):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Template not found"})
		case utils.IsValidationError(err):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			respondCatalogError(c, err, "Failed to get template")
		}
		return
	}

	// Private templates are not served publicly
	if !template.IsPublic {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Template not found"})
		return
	}

	c.JSON(http.StatusOK, template)
}

// templateCategoriesHandler godoc
// @Summary List template categories
// @Description List the categories of public templates with their sizes
// @Tags templates
// @Produce json
// @Success 200 {object} CategoryListResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /templates/categories [get]
func (s *Server) templateCategoriesHandler(c *gin.Context) {
	categories, err := s.templates.Categories(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "Failed to list categories")
		return
	}

	if categories == nil {
		categories = []services.CategoryCount{}
	}

	c.JSON(http.StatusOK, CategoryListResponse{Categories: categories})
}
