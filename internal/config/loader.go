package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultEnvFile is the dotenv file shared with the web app
const DefaultEnvFile = ".env.local"

// envAliases maps configuration keys to the environment variable names that
// may set them. The first entries are the names the web app already uses.
var envAliases = map[string][]string{
	"supabase.url":              {EnvSupabaseURL, "AUTOMATIONOS_SUPABASE_URL"},
	"supabase.service_role_key": {EnvServiceRoleKey, "AUTOMATIONOS_SUPABASE_SERVICE_ROLE_KEY"},
	"supabase.anon_key":         {EnvSupabaseAnonKey, "AUTOMATIONOS_SUPABASE_ANON_KEY"},
	"supabase.jwt_secret":       {EnvSupabaseJWTSecret, "AUTOMATIONOS_SUPABASE_JWT_SECRET"},
	"site.app_url":              {EnvAppURL, "AUTOMATIONOS_SITE_APP_URL"},
	"server.log_level":          {"LOG_LEVEL", "AUTOMATIONOS_SERVER_LOG_LEVEL"},
	"server.debug":              {"DEBUG", "AUTOMATIONOS_SERVER_DEBUG"},
	"database_url":              {EnvDatabaseURL},
}

// LoadConfig loads configuration from the optional config file, .env.local
// and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithEnvFile(configPath, DefaultEnvFile)
}

// LoadConfigWithEnvFile is LoadConfig with an explicit dotenv file. Values
// precedence: environment, config file, dotenv file, defaults.
func LoadConfigWithEnvFile(configPath, envFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigName("config")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/automationos")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".automationos"))
		}
	}

	setDefaults(v)

	if err := applyEnvFile(v, envFile); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("AUTOMATIONOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars still apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if dbURL := v.GetString("database_url"); dbURL != "" {
		if err := parseDatabaseURL(v, dbURL); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDatabaseURL, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := NewDefault()

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_role_key", "")
	v.SetDefault("supabase.anon_key", "")
	v.SetDefault("supabase.jwt_secret", "")

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.max_connections", d.Database.MaxConnections)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime.String())
	v.SetDefault("database.conn_max_idle_time", d.Database.ConnMaxIdleTime.String())
	v.SetDefault("database.log_level", d.Database.LogLevel)

	v.SetDefault("migrations.dir", d.Migrations.Dir)

	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.debug", d.Server.Debug)

	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.allow_origins", d.HTTP.AllowOrigins)

	v.SetDefault("site.app_url", d.Site.AppURL)
	v.SetDefault("site.login_path", d.Site.LoginPath)
	v.SetDefault("site.session_cookie", d.Site.SessionCookie)
}

// applyEnvFile layers the dotenv file over the defaults. A missing file is
// not an error.
func applyEnvFile(v *viper.Viper, envFile string) error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(envFile)
	dotenv.SetConfigType("dotenv")
	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading %s: %w", envFile, err)
	}

	for key, names := range envAliases {
		for _, name := range names {
			// viper lower-cases every key it reads
			if value := dotenv.GetString(strings.ToLower(name)); value != "" {
				v.SetDefault(key, value)
				break
			}
		}
	}
	return nil
}

// bindEnvVars binds the aliased environment variables to configuration keys
func bindEnvVars(v *viper.Viper) error {
	for key, names := range envAliases {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// parseDatabaseURL splits a postgres:// connection URL into the database.* keys
func parseDatabaseURL(v *viper.Viper, dbURL string) error {
	u, err := url.Parse(dbURL)
	if err != nil {
		return err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("URL must start with postgres:// or postgresql://")
	}
	if u.Hostname() == "" {
		return fmt.Errorf("host not found in URL")
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return fmt.Errorf("database name not found in URL")
	}

	v.Set("database.host", u.Hostname())
	if port := u.Port(); port != "" {
		v.Set("database.port", port)
	}
	if u.User != nil {
		v.Set("database.user", u.User.Username())
		if password, ok := u.User.Password(); ok {
			v.Set("database.password", password)
		}
	}
	v.Set("database.dbname", dbName)

	if sslmode := u.Query().Get("sslmode"); sslmode != "" {
		v.Set("database.sslmode", sslmode)
	}

	return nil
}
