package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automationos/automationos/internal/utils"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	router := gin.New()
	router.Use(LoggerMiddleware(zerolog.New(&buf)))
	router.GET("/ping", func(c *gin.Context) {
		utils.FromContext(c.Request.Context()).Info().Msg("handling ping")
		c.Status(http.StatusNoContent)
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	// The handler's logger carries the request fields
	assert.Contains(t, lines[0], `"message":"handling ping"`)
	assert.Contains(t, lines[0], `"method":"GET"`)
	assert.Contains(t, lines[0], `"path":"/ping"`)

	assert.Contains(t, lines[1], `"level":"info"`)
	assert.Contains(t, lines[1], `"path":"/ping?x=1"`)
	assert.Contains(t, lines[1], `"status":204`)

	assert.Contains(t, lines[2], `"level":"error"`)
	assert.Contains(t, lines[2], `"status":500`)
}
