package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database manages a direct Postgres connection. It serves the template
// catalog and, when DATABASE_URL is configured, stands in for the REST
// endpoint as the tools' Client.
type Database struct {
	db     *gorm.DB
	config map[string]interface{}
	mu     sync.RWMutex
}

// NewDatabase creates a new Database instance
func NewDatabase(config map[string]interface{}) *Database {
	return &Database{
		config: config,
	}
}

// Connect establishes a connection to the PostgreSQL database with retry logic
func (d *Database) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(d.getLogLevel()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Migration scripts hold several statements; prepared statements
		// would reject them.
		PrepareStmt: false,
	}

	maxRetries := d.getConfigInt("connect_retries", 5)
	retryDelay := d.getConfigDuration("connect_retry_delay", 2*time.Second)

	var err error
	for i := 0; i < maxRetries; i++ {
		d.db, err = gorm.Open(postgres.Open(d.buildDSN()), gormConfig)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(d.getConfigInt("max_idle_conns", 2))
	sqlDB.SetMaxOpenConns(d.getConfigInt("max_open_conns", 10))
	sqlDB.SetConnMaxLifetime(d.getConfigDuration("conn_max_lifetime", 30*time.Minute))
	sqlDB.SetConnMaxIdleTime(d.getConfigDuration("conn_max_idle_time", 5*time.Minute))

	return nil
}

// Health checks the database connection health
func (d *Database) Health(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("database not connected")
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	d.db = nil
	return nil
}

// DB returns the underlying gorm.DB instance
func (d *Database) DB() *gorm.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// SetDB sets the underlying gorm.DB instance (for testing)
func (d *Database) SetDB(db *gorm.DB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.db = db
}

// ExecuteBatch runs a whole script in one round trip
func (d *Database) ExecuteBatch(ctx context.Context, sql string) error {
	return d.exec(ctx, sql)
}

// ExecuteStatement runs a single statement
func (d *Database) ExecuteStatement(ctx context.Context, sql string) error {
	return d.exec(ctx, sql)
}

// InsertRow inserts row into table. row may be a model or a map of columns.
func (d *Database) InsertRow(ctx context.Context, table string, row any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("database not connected")
	}

	result := d.db.WithContext(ctx).Table(table).Create(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("expected a single row inserted into %s, got %d", table, result.RowsAffected)
	}
	return nil
}

func (d *Database) exec(ctx context.Context, sql string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("database not connected")
	}

	return d.db.WithContext(ctx).Exec(sql).Error
}

// buildDSN constructs the PostgreSQL DSN from config. A full "dsn" entry wins.
func (d *Database) buildDSN() string {
	if dsn := d.getConfigString("dsn", ""); dsn != "" {
		return dsn
	}

	host := d.getConfigString("host", "localhost")
	port := d.getConfigInt("port", 5432)
	user := d.getConfigString("user", "postgres")
	password := d.getConfigString("password", "")
	dbname := d.getConfigString("dbname", "postgres")
	sslmode := d.getConfigString("sslmode", "require")
	timezone := d.getConfigString("timezone", "UTC")

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		quoteDSNValue(host), port, quoteDSNValue(user), quoteDSNValue(password),
		quoteDSNValue(dbname), quoteDSNValue(sslmode), quoteDSNValue(timezone))
}

// quoteDSNValue single-quotes keyword/value DSN values that are empty or
// contain spaces, quotes or backslashes.
func quoteDSNValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// getLogLevel returns the GORM log level from config
func (d *Database) getLogLevel() logger.LogLevel {
	level := d.getConfigString("log_level", "error")
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Error
	}
}

// Helper methods for config access

func (d *Database) getConfigString(key string, defaultValue string) string {
	if val, ok := d.config[key].(string); ok {
		return val
	}
	return defaultValue
}

func (d *Database) getConfigInt(key string, defaultValue int) int {
	if val, ok := d.config[key].(int); ok {
		return val
	}
	if val, ok := d.config[key].(float64); ok {
		return int(val)
	}
	return defaultValue
}

func (d *Database) getConfigDuration(key string, defaultValue time.Duration) time.Duration {
	if val, ok := d.config[key].(string); ok {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	if val, ok := d.config[key].(time.Duration); ok {
		return val
	}
	return defaultValue
}
