package mcp

import (
	"encoding/json"

	"github.com/automationos/automationos/internal/models"
	"github.com/automationos/automationos/internal/services"
)

// ListTemplatesRequest is the argument set of the list_templates tool
type ListTemplatesRequest struct {
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// GetTemplateRequest is the argument set of the get_template tool
type GetTemplateRequest struct {
	ID string `json:"id"`
}

// TemplateSummary is a template without its graph, used in listings
type TemplateSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Providers   []string `json:"providers,omitempty"`
	Steps       int      `json:"steps"`
}

// ListTemplatesResponse is returned by list_templates
type ListTemplatesResponse struct {
	Templates []TemplateSummary `json:"templates"`
	Count     int               `json:"count"`
	Error     string            `json:"error,omitempty"`
}

// GetTemplateResponse is returned by get_template
type GetTemplateResponse struct {
	Template *models.Template `json:"template,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// CategoriesResponse is the body of the categories resource
type CategoriesResponse struct {
	Categories []services.CategoryCount `json:"categories"`
}

// Failed reports whether the call was rejected
func (r ListTemplatesResponse) Failed() bool { return r.Error != "" }

// Failed reports whether the call was rejected
func (r GetTemplateResponse) Failed() bool { return r.Error != "" }

// ToolResponse is the envelope used when a tool cannot produce its own response
type ToolResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewErrorResponse creates a failed tool response
func NewErrorResponse(error string) *ToolResponse {
	return &ToolResponse{
		Success: false,
		Error:   error,
	}
}

// ToJSON converts the response to JSON
func (r *ToolResponse) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

func summarize(t *models.Template) TemplateSummary {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return TemplateSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Tags:        tags,
		Providers:   t.Definition.Providers(),
		Steps:       len(t.Definition.Nodes),
	}
}
