package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automationos/automationos/internal/models"
)

func TestListTemplates(t *testing.T) {
	server := setupTestServer(t)
	server.seedTemplates(t)

	private := models.Template{
		Name:       "Internal Draft",
		Category:   "Communication",
		Tags:       []string{"email"},
		Definition: models.Definition{Nodes: []models.Node{{ID: "trigger", Type: "trigger"}}},
	}
	require.NoError(t, server.gormDB.Create(&private).Error)

	tests := []struct {
		name          string
		query         string
		expectedCount int
		expectedFirst string
	}{
		{name: "All public", query: "", expectedCount: 7, expectedFirst: "Lead Capture to CRM"},
		{name: "By category", query: "?category=Analytics", expectedCount: 1, expectedFirst: "Daily Sales Report"},
		{name: "By tag", query: "?tag=crm", expectedCount: 2, expectedFirst: "Lead Capture to CRM"},
		{name: "Limit", query: "?limit=2", expectedCount: 2, expectedFirst: "Lead Capture to CRM"},
		{name: "Unknown category", query: "?category=Nope", expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := server.get(t, "/api/v1/templates"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var response TemplateListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCount, response.Count)
			require.Len(t, response.Templates, tt.expectedCount)
			if tt.expectedFirst != "" {
				assert.Equal(t, tt.expectedFirst, response.Templates[0].Name)
			}
			for _, tmpl := range response.Templates {
				assert.True(t, tmpl.IsPublic)
			}
		})
	}
}

func TestListTemplates_EmptyIsArray(t *testing.T) {
	server := setupTestServer(t)

	rec := server.get(t, "/api/v1/templates")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"templates":[],"count":0}`, rec.Body.String())
}

func TestListTemplates_InvalidLimit(t *testing.T) {
	server := setupTestServer(t)

	for _, limit := range []string{"0", "101", "ten", "-1"} {
		rec := server.get(t, "/api/v1/templates?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestGetTemplate(t *testing.T) {
	server := setupTestServer(t)
	stored := server.seedTemplates(t)

	t.Run("Found", func(t *testing.T) {
		rec := server.get(t, "/api/v1/templates/"+stored[3].ID)
		require.Equal(t, http.StatusOK, rec.Code)

		var tmpl models.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tmpl))
		assert.Equal(t, "Customer Onboarding Flow", tmpl.Name)
		assert.Equal(t, stored[3].ID, tmpl.ID)
		require.Len(t, tmpl.Definition.Nodes, 4)
		assert.Equal(t, "welcome", tmpl.Definition.Nodes[1].Data["template"])
	})

	t.Run("Not found", func(t *testing.T) {
		rec := server.get(t, "/api/v1/templates/00000000-0000-0000-0000-000000000000")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Template not found"}`, rec.Body.String())
	})

	t.Run("Malformed id", func(t *testing.T) {
		rec := server.get(t, "/api/v1/templates/not-a-uuid")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Template not found"}`, rec.Body.String())
	})

	t.Run("Private is hidden", func(t *testing.T) {
		private := models.Template{
			Name:       "Internal Draft",
			Category:   "Communication",
			Definition: models.Definition{Nodes: []models.Node{{ID: "trigger", Type: "trigger"}}},
		}
		require.NoError(t, server.gormDB.Create(&private).Error)

		rec := server.get(t, "/api/v1/templates/"+private.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTemplateCategories(t *testing.T) {
	server := setupTestServer(t)
	server.seedTemplates(t)

	rec := server.get(t, "/api/v1/templates/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var response CategoryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Categories, 7)
	assert.Equal(t, "Analytics", response.Categories[0].Category)
	assert.Equal(t, int64(1), response.Categories[0].Count)
}

func TestTemplates_DatabaseUnavailable(t *testing.T) {
	server := setupTestServer(t)
	stored := server.seedTemplates(t)

	sqlDB, err := server.gormDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	tests := []struct {
		path    string
		message string
	}{
		{"/api/v1/templates", "Failed to list templates"},
		{"/api/v1/templates/" + stored[0].ID, "Failed to get template"},
		{"/api/v1/templates/categories", "Failed to list categories"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := server.get(t, tt.path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.message+`"}`, rec.Body.String())
		})
	}
}
