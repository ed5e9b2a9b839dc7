package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/automationos/automationos/internal/config"
	"github.com/automationos/automationos/internal/database"
	"github.com/automationos/automationos/internal/models"
	"github.com/automationos/automationos/internal/services"
)

const testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"

type testServer struct {
	*Server
	gormDB *gorm.DB
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// Postgres column types do not survive AutoMigrate on SQLite
	require.NoError(t, gormDB.Exec(`
		CREATE TABLE templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			tags TEXT,
			is_public BOOLEAN NOT NULL DEFAULT 0,
			definition TEXT NOT NULL,
			created_at DATETIME
		)
	`).Error)

	db := database.NewDatabase(map[string]interface{}{})
	db.SetDB(gormDB)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.NewDefault()
	cfg.Supabase.JWTSecret = testJWTSecret
	cfg.Server.Debug = true

	server, err := NewServer(cfg, db, services.NewTemplateService(gormDB, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)

	return &testServer{Server: server, gormDB: gormDB}
}

func (s *testServer) seedTemplates(t *testing.T) []models.Template {
	t.Helper()
	templates := services.DefaultTemplates()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range templates {
		templates[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.gormDB.Create(&templates[i]).Error)
	}
	return templates
}

func (s *testServer) get(t *testing.T, path string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "2b9c6a7e-55f2-4c1b-9d3a-1f0e8c7b6a5d",
		"email": "ada@example.com",
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{
			"full_name": "Ada Lovelace",
		},
	}
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, nil, &services.TemplateService{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewServer(config.NewDefault(), nil, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t)

	rec := server.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHealth_Unavailable(t *testing.T) {
	cfg := config.NewDefault()
	server, err := NewServer(cfg, database.NewDatabase(nil), services.NewTemplateService(nil, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database not connected")
}

func TestSecurityHeaders(t *testing.T) {
	server := setupTestServer(t)

	for _, path := range []string{"/health", "/docs", "/dashboard", "/api/v1/templates"} {
		rec := server.get(t, path)
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"), path)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), path)
		assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"), path)
		assert.Equal(t, "camera=(), microphone=(), geolocation=()", rec.Header().Get("Permissions-Policy"), path)
	}
}

func TestDocsRedirect(t *testing.T) {
	server := setupTestServer(t)

	rec := server.get(t, "/docs")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/docs/getting-started", rec.Header().Get("Location"))
}

func TestCORS(t *testing.T) {
	server := setupTestServer(t)

	rec := server.get(t, "/api/v1/templates", func(r *http.Request) {
		r.Header.Set("Origin", "http://localhost:3000")
	})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = server.get(t, "/api/v1/templates", func(r *http.Request) {
		r.Header.Set("Origin", "https://evil.example.com")
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSwagger(t *testing.T) {
	server := setupTestServer(t)

	rec := server.get(t, "/swagger/doc.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AutomationOS API")
	assert.Contains(t, rec.Body.String(), "/templates/{id}")
}
