package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/automationos/automationos/internal/utils"
)

// Environment variable names shared with the web app.
const (
	EnvSupabaseURL        = "NEXT_PUBLIC_SUPABASE_URL"
	EnvServiceRoleKey     = "SUPABASE_SERVICE_ROLE_KEY"
	EnvSupabaseAnonKey    = "NEXT_PUBLIC_SUPABASE_ANON_KEY"
	EnvSupabaseJWTSecret  = "SUPABASE_JWT_SECRET"
	EnvAppURL             = "NEXT_PUBLIC_APP_URL"
	EnvDatabaseURL        = "DATABASE_URL"
	supabaseHostSuffix    = ".supabase.co"
	supabaseSQLEditorPath = ".supabase.co/project/_/sql"
)

// Config represents the main application configuration
type Config struct {
	Supabase   Supabase   `json:"supabase" mapstructure:"supabase"`
	Database   Database   `json:"database" mapstructure:"database"`
	Migrations Migrations `json:"migrations" mapstructure:"migrations"`
	Server     Server     `json:"server" mapstructure:"server"`
	HTTP       HTTP       `json:"http" mapstructure:"http"`
	Site       Site       `json:"site" mapstructure:"site"`
}

// Supabase holds the hosted backend endpoint and credentials
type Supabase struct {
	URL            string `json:"url" mapstructure:"url"`
	ServiceRoleKey string `json:"-" mapstructure:"service_role_key"`
	AnonKey        string `json:"anon_key" mapstructure:"anon_key"`
	JWTSecret      string `json:"-" mapstructure:"jwt_secret"`
}

// Database represents a direct Postgres connection. It is only used when
// DATABASE_URL (or database.host) is configured.
type Database struct {
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	User            string        `json:"user" mapstructure:"user"`
	Password        string        `json:"-" mapstructure:"password"`
	DBName          string        `json:"dbname" mapstructure:"dbname"`
	SSLMode         string        `json:"sslmode" mapstructure:"sslmode"`
	MaxConnections  int           `json:"max_connections" mapstructure:"max_connections"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	LogLevel        string        `json:"log_level" mapstructure:"log_level"`
}

// Migrations configures the migration runner
type Migrations struct {
	Dir string `json:"dir" mapstructure:"dir"`
}

// Server represents process-wide settings
type Server struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	Debug    bool   `json:"debug" mapstructure:"debug"`
}

// HTTP represents HTTP server configuration
type HTTP struct {
	Port         int      `json:"port" mapstructure:"port"`
	AllowOrigins []string `json:"allow_origins" mapstructure:"allow_origins"`
}

// Site holds settings of the public site and the dashboard gate
type Site struct {
	AppURL        string `json:"app_url" mapstructure:"app_url"`
	LoginPath     string `json:"login_path" mapstructure:"login_path"`
	SessionCookie string `json:"session_cookie" mapstructure:"session_cookie"`
}

// NewDefault returns a Config instance with default values
func NewDefault() *Config {
	return &Config{
		Database: Database{
			Port:            5432,
			User:            "postgres",
			DBName:          "postgres",
			SSLMode:         "require",
			MaxConnections:  10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			LogLevel:        "silent",
		},
		Migrations: Migrations{
			Dir: "supabase/migrations",
		},
		Server: Server{
			LogLevel: "info",
			Debug:    false,
		},
		HTTP: HTTP{
			Port:         8080,
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Site: Site{
			AppURL:        "http://localhost:3000",
			LoginPath:     "/login",
			SessionCookie: "sb-access-token",
		},
	}
}

// Validate checks if the configuration is structurally valid. Credentials
// are checked separately by the commands that need them.
func (c *Config) Validate() error {
	if c.Supabase.URL != "" {
		u, err := url.Parse(c.Supabase.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("supabase url must be an absolute http(s) URL")
		}
	}

	if c.DirectDatabase() {
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database port must be between 1 and 65535")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.MaxConnections <= 0 {
			return fmt.Errorf("max connections must be greater than 0")
		}
		if c.Database.MaxIdleConns < 0 {
			return fmt.Errorf("max idle connections cannot be negative")
		}
		if c.Database.MaxIdleConns > c.Database.MaxConnections {
			return fmt.Errorf("max idle connections cannot exceed max connections")
		}
	}

	if c.Migrations.Dir == "" {
		return fmt.Errorf("migrations directory cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}

	if !strings.HasPrefix(c.Site.LoginPath, "/") {
		return fmt.Errorf("login path must start with /")
	}
	if c.Site.SessionCookie == "" {
		return fmt.Errorf("session cookie name cannot be empty")
	}

	return nil
}

// RequireServiceAccess reports a configuration error unless both the
// endpoint and the service role key are present.
func (c *Config) RequireServiceAccess() error {
	var missing []string
	if c.Supabase.URL == "" {
		missing = append(missing, EnvSupabaseURL)
	}
	if c.Supabase.ServiceRoleKey == "" {
		missing = append(missing, EnvServiceRoleKey)
	}
	if len(missing) > 0 {
		return utils.WrapConfigError(strings.Join(missing, ", "), "missing Supabase credentials (set them in the environment or .env.local)")
	}
	return nil
}

// RequireSessionSecret reports a configuration error unless session tokens
// can be verified.
func (c *Config) RequireSessionSecret() error {
	if c.Supabase.JWTSecret == "" {
		return utils.WrapConfigError(EnvSupabaseJWTSecret, "required to verify dashboard sessions")
	}
	return nil
}

// DirectDatabase reports whether a direct Postgres connection is configured
func (c *Config) DirectDatabase() bool {
	return c.Database.Host != ""
}

// DashboardSQLURL returns the hosted SQL editor URL operators use to apply a
// migration by hand.
func (c *Config) DashboardSQLURL() string {
	return strings.Replace(c.Supabase.URL, supabaseHostSuffix, supabaseSQLEditorPath, 1)
}

// DatabaseURL constructs a PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	params := url.Values{}
	params.Set("sslmode", c.Database.SSLMode)

	var userInfo *url.Userinfo
	if c.Database.Password == "" {
		userInfo = url.User(c.Database.User)
	} else {
		userInfo = url.UserPassword(c.Database.User, c.Database.Password)
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.DBName,
		RawQuery: params.Encode(),
	}

	return u.String()
}

// DatabaseOptions converts the direct connection settings into the option
// map understood by database.NewDatabase.
func (c *Config) DatabaseOptions() map[string]interface{} {
	return map[string]interface{}{
		"dsn":                c.DatabaseURL(),
		"host":               c.Database.Host,
		"port":               c.Database.Port,
		"user":               c.Database.User,
		"password":           c.Database.Password,
		"dbname":             c.Database.DBName,
		"sslmode":            c.Database.SSLMode,
		"max_open_conns":     c.Database.MaxConnections,
		"max_idle_conns":     c.Database.MaxIdleConns,
		"conn_max_lifetime":  c.Database.ConnMaxLifetime,
		"conn_max_idle_time": c.Database.ConnMaxIdleTime,
		"log_level":          c.Database.LogLevel,
	}
}
