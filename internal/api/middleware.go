package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/automationos/automationos/internal/utils"
)

const sessionUserKey = "session_user"

// securityHeaders are sent with every response
var securityHeaders = map[string]string{
	"X-Frame-Options":        "DENY",
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
}

// SessionUser is the signed-in user taken from a verified access token
type SessionUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// DisplayName prefers the full name and falls back to the email
func (u SessionUser) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// sessionClaims mirrors the claims of a hosted auth access token
type sessionClaims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// LoggerMiddleware logs every request and stores a request scoped logger in
// the request context for the handlers.
func LoggerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestLogger := logger.With().
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Request = c.Request.WithContext(utils.WithContext(c.Request.Context(), requestLogger))

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}

		event.
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("error", c.Errors.ByType(gin.ErrorTypePrivate).String()).
			Msg("HTTP request")
	}
}

// SecurityHeadersMiddleware sets the site wide security headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range securityHeaders {
			c.Header(k, v)
		}
		c.Next()
	}
}

// sessionMiddleware redirects to the login page unless the request carries a
// valid access token in the session cookie or an Authorization header.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.authenticate(c)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("No valid session, redirecting to login")
			c.Redirect(http.StatusFound, s.config.Site.LoginPath)
			c.Abort()
			return
		}

		c.Set(sessionUserKey, user)
		c.Next()
	}
}

func (s *Server) authenticate(c *gin.Context) (*SessionUser, error) {
	secret := s.config.Supabase.JWTSecret
	if secret == "" {
		return nil, errors.New("session secret not configured")
	}

	tokenString := sessionToken(c, s.config.Site.SessionCookie)
	if tokenString == "" {
		return nil, errors.New("no session token")
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	user := &SessionUser{
		ID:    claims.Subject,
		Email: claims.Email,
	}
	if name, ok := claims.UserMetadata["full_name"].(string); ok {
		user.FullName = name
	}
	return user, nil
}

// sessionToken reads the access token from the session cookie, then from a
// bearer Authorization header.
func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func getSessionUser(c *gin.Context) (*SessionUser, bool) {
	user, exists := c.Get(sessionUserKey)
	if !exists {
		return nil, false
	}

	u, ok := user.(*SessionUser)
	return u, ok
}
