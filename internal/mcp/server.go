package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/services"
)

const categoriesURI = "templates://categories"

// Server exposes the template catalog to MCP clients
type Server struct {
	mcpServer *server.MCPServer
	handler   *Handler
	logger    zerolog.Logger
}

type toolFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// NewServer creates a new MCP server instance
func NewServer(templates *services.TemplateService, logger zerolog.Logger) (*Server, error) {
	if templates == nil {
		return nil, fmt.Errorf("template service is required")
	}

	mcpServer := server.NewMCPServer(
		"automationos-templates",
		"1.0.0",
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		handler:   NewHandler(templates, logger),
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// Serve runs the server over stdio until the client disconnects
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Debug().Msg("Starting MCP server ServeStdio")
	err := server.ServeStdio(s.mcpServer)
	if err != nil {
		s.logger.Error().Err(err).Msg("MCP server ServeStdio error")
	}
	return err
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_templates",
		Description: "List public workflow templates. Use when the user wants to automate something and may start from a pre-built workflow, or asks which templates exist for a category or app.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Filter by category, for example Communication, E-commerce or Sales",
				},
				"tag": map[string]interface{}{
					"type":        "string",
					"description": "Filter by tag, for example email or slack",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (default: 20)",
					"minimum":     1,
					"maximum":     maxListLimit,
				},
			},
		},
	}, s.toolHandler("list_templates", s.handler.HandleListTemplates))

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_template",
		Description: "Get one workflow template by ID, including its full node and edge definition",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the template",
				},
			},
			Required: []string{"id"},
		},
	}, s.toolHandler("get_template", s.handler.HandleGetTemplate))

	s.logger.Info().Int("count", 2).Msg("Registered MCP tools")
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.Resource{
		URI:         categoriesURI,
		Name:        "Template Categories",
		Description: "Categories of public workflow templates with the number of templates in each",
		MIMEType:    "application/json",
	}, s.categoriesHandler())

	s.logger.Info().Int("count", 1).Msg("Registered MCP resources")
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.Prompt{
		Name:        "customize_template",
		Description: "Adapt a workflow template to a goal",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "template",
				Description: "Name of the template to start from",
				Required:    true,
			},
			{
				Name:        "goal",
				Description: "What the workflow should achieve",
				Required:    false,
			},
		},
	}, s.customizeTemplateHandler())

	s.logger.Info().Int("count", 1).Msg("Registered MCP prompts")
}

// toolHandler adapts a handler to the MCP tool signature. Failures are
// reported as tool errors, never as protocol errors.
func (s *Server) toolHandler(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.logger.Debug().Str("tool", name).Msg("MCP tool called")

		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}
		jsonData, err := json.Marshal(args)
		if err != nil {
			return errorResult(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
		}

		result, err := fn(ctx, jsonData)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return errorResult(fmt.Sprintf("Failed to marshal result: %v", err)), nil
		}

		failed := false
		if f, ok := result.(interface{ Failed() bool }); ok {
			failed = f.Failed()
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: string(resultJSON),
				},
			},
			IsError: failed,
		}, nil
	}
}

func errorResult(message string) *mcp.CallToolResult {
	text := message
	if body, err := NewErrorResponse(message).ToJSON(); err == nil {
		text = string(body)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
		IsError: true,
	}
}

func (s *Server) categoriesHandler() server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		categories, err := s.handler.Categories(ctx)
		if err != nil {
			return nil, err
		}

		body, err := json.Marshal(categories)
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(body),
			},
		}, nil
	}
}

func (s *Server) customizeTemplateHandler() server.PromptHandlerFunc {
	return func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		name := strings.TrimSpace(request.Params.Arguments["template"])
		goal := strings.TrimSpace(request.Params.Arguments["goal"])
		if name == "" {
			return nil, fmt.Errorf("template argument is required")
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Start from the %q workflow template", name)

		// Include the graph when the template exists so the assistant edits real nodes
		if template, err := s.handler.templates.GetByName(ctx, name); err == nil {
			definition, _ := json.MarshalIndent(template.Definition, "", "  ")
			fmt.Fprintf(&b, " (%s).\n\nCurrent definition:\n%s\n", template.Description, definition)
		} else {
			b.WriteString(". Look it up with the list_templates tool first.\n")
		}

		if goal != "" {
			fmt.Fprintf(&b, "\nAdapt it so that it will: %s\n", goal)
		} else {
			b.WriteString("\nAsk me what the workflow should achieve, then adapt it.\n")
		}
		b.WriteString("Keep node ids unique and make every edge reference existing nodes.")

		return &mcp.GetPromptResult{
			Description: fmt.Sprintf("Customize the %s template", name),
			Messages: []mcp.PromptMessage{
				{
					Role: mcp.RoleUser,
					Content: mcp.TextContent{
						Type: "text",
						Text: b.String(),
					},
				},
			},
		}, nil
	}
}
