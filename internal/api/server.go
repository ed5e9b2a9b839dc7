package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/automationos/automationos/internal/config"
	"github.com/automationos/automationos/internal/services"

	_ "github.com/automationos/automationos/docs"
)

const docsLandingPath = "/docs/getting-started"

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Server struct {
	router     *gin.Engine
	config     *config.Config
	db         HealthChecker
	templates  *services.TemplateService
	logger     zerolog.Logger
	httpServer *http.Server
}

func NewServer(cfg *config.Config, db HealthChecker, templates *services.TemplateService, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("template service is required")
	}

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(cfg.HTTP.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.AllowOrigins
	} else {
		corsConfig.AllowOrigins = []string{cfg.Site.AppURL}
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	server := &Server{
		router:    router,
		config:    cfg,
		db:        db,
		templates: templates,
		logger:    logger,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, docsLandingPath)
	})

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Session gated pages
	gated := s.router.Group("")
	gated.Use(s.sessionMiddleware())
	{
		gated.GET("/dashboard", s.dashboardHandler)
	}

	v1 := s.router.Group("/api/v1")
	{
		templates := v1.Group("/templates")
		{
			templates.GET("", s.listTemplatesHandler)
			templates.GET("/categories", s.templateCategoriesHandler)
			templates.GET("/:id", s.getTemplateHandler)
		}
	}
}

// Router exposes the handler for embedding and tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	s.logger.Info().Str("address", addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// @title AutomationOS API
// @version 1.0
// @description Public template catalog and dashboard session API for AutomationOS

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api/v1

// healthHandler godoc
// @Summary Health check
// @Description Check if the service and its database are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) healthHandler(c *gin.Context) {
	dbHealthy := true
	var dbError string
	if s.db == nil {
		dbHealthy = false
		dbError = "database not configured"
	} else if err := s.db.Health(c.Request.Context()); err != nil {
		dbHealthy = false
		dbError = err.Error()
	}

	status := "healthy"
	if !dbHealthy {
		status = "unhealthy"
	}

	response := gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"database": gin.H{
			"healthy": dbHealthy,
			"error":   dbError,
		},
	}

	if !dbHealthy {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
