// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/templates": {
            "get": {
                "description": "List public workflow templates, newest first",
                "produces": ["application/json"],
                "tags": ["templates"],
                "summary": "List templates",
                "parameters": [
                    {"type": "string", "description": "Filter by category", "name": "category", "in": "query"},
                    {"type": "string", "description": "Filter by tag", "name": "tag", "in": "query"},
                    {"type": "integer", "description": "Maximum number of results (1-100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.TemplateListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/templates/categories": {
            "get": {
                "description": "List the categories of public templates with their sizes",
                "produces": ["application/json"],
                "tags": ["templates"],
                "summary": "List template categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CategoryListResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/templates/{id}": {
            "get": {
                "description": "Fetch one public workflow template with its definition",
                "produces": ["application/json"],
                "tags": ["templates"],
                "summary": "Get a template",
                "parameters": [
                    {"type": "string", "description": "Template ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Template"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "api.TemplateListResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "templates": {"type": "array", "items": {"$ref": "#/definitions/models.Template"}}
            }
        },
        "api.CategoryListResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"$ref": "#/definitions/services.CategoryCount"}}
            }
        },
        "services.CategoryCount": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "models.Template": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "is_public": {"type": "boolean"},
                "definition": {"$ref": "#/definitions/models.Definition"},
                "created_at": {"type": "string"}
            }
        },
        "models.Definition": {
            "type": "object",
            "properties": {
                "nodes": {"type": "array", "items": {"$ref": "#/definitions/models.Node"}},
                "edges": {"type": "array", "items": {"$ref": "#/definitions/models.Edge"}}
            }
        },
        "models.Node": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string"},
                "data": {"type": "object", "additionalProperties": true}
            }
        },
        "models.Edge": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "target": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "AutomationOS API",
	Description:      "Public template catalog and dashboard session API for AutomationOS",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
