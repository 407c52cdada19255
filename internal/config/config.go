// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

const defaultPrivateKey = "88888888888888888888888888888888"

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	PrivateKey  string   `mapstructure:"privatekey"`

	// File paths
	DatabasePath          string `mapstructure:"storagepath"`
	DatabaseName          string `mapstructure:"-"` // Derived from other settings
	PublicDirectory       string `mapstructure:"publicdir"`
	PublicAssetsUrlPrefix string `mapstructure:"publicassetsurlprefix"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Analytics settings
	ReportTimezone    string `mapstructure:"reporttimezone"`
	DefaultSeriesDays int    `mapstructure:"defaultseriesdays"`
	MaxWindowDays     int    `mapstructure:"maxwindowdays"`
	TopEntriesLimit   int    `mapstructure:"topentrieslimit"`
	DashboardWorkers  int    `mapstructure:"dashboardworkers"`

	// Maintenance settings
	CheckpointIntervalMinutes int `mapstructure:"checkpointintervalminutes"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "storefront")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("privatekey", defaultPrivateKey)
		v.SetDefault("storagepath", "storage")
		v.SetDefault("publicdir", "public")
		v.SetDefault("publicassetsurlprefix", "/")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("reporttimezone", "UTC")
		v.SetDefault("defaultseriesdays", 30)
		v.SetDefault("maxwindowdays", 1096)
		v.SetDefault("topentrieslimit", 5)
		v.SetDefault("dashboardworkers", 4)
		v.SetDefault("checkpointintervalminutes", 15)

		v.BindEnv("appname", "STOREFRONT_APP_NAME")
		v.BindEnv("appport", "STOREFRONT_APP_PORT")
		v.BindEnv("environment", "STOREFRONT_ENV")
		v.BindEnv("loglevel", "STOREFRONT_LOG_LEVEL")
		v.BindEnv("privatekey", "STOREFRONT_PRIVATE_KEY")
		v.BindEnv("storagepath", "STOREFRONT_STORAGE_PATH")
		v.BindEnv("publicdir", "STOREFRONT_PUBLIC_DIR")
		v.BindEnv("publicassetsurlprefix", "STOREFRONT_PUBLIC_ASSETS_URL_PREFIX")
		v.BindEnv("logsdir", "STOREFRONT_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "STOREFRONT_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "STOREFRONT_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "STOREFRONT_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "STOREFRONT_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "STOREFRONT_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "STOREFRONT_DB_MAX_IDLE_CONNS")
		v.BindEnv("reporttimezone", "STOREFRONT_REPORT_TIMEZONE")
		v.BindEnv("defaultseriesdays", "STOREFRONT_DEFAULT_SERIES_DAYS")
		v.BindEnv("maxwindowdays", "STOREFRONT_MAX_WINDOW_DAYS")
		v.BindEnv("topentrieslimit", "STOREFRONT_TOP_ENTRIES_LIMIT")
		v.BindEnv("dashboardworkers", "STOREFRONT_DASHBOARD_WORKERS")
		v.BindEnv("checkpointintervalminutes", "STOREFRONT_CHECKPOINT_INTERVAL_MINUTES")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		cfg.DatabaseName = cfg.GetDatabasePath()

		if cfg.PrivateKey == "" {
			log.Fatal("Private key is required")
		}
		if cfg.IsProduction() && cfg.PrivateKey == defaultPrivateKey {
			log.Fatal("Production requires a unique STOREFRONT_PRIVATE_KEY (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		return fmt.Errorf("invalid report timezone %q: %w", c.ReportTimezone, err)
	}
	if c.DefaultSeriesDays < 1 {
		return fmt.Errorf("default series days must be positive, got %d", c.DefaultSeriesDays)
	}
	if c.MaxWindowDays < c.DefaultSeriesDays {
		return fmt.Errorf("max window days (%d) must cover the default series (%d days)", c.MaxWindowDays, c.DefaultSeriesDays)
	}
	if c.TopEntriesLimit < 0 {
		return fmt.Errorf("top entries limit cannot be negative, got %d", c.TopEntriesLimit)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// ReportLocation returns the fixed reference time zone used to assign events to calendar days.
// Falls back to UTC if the zone cannot be loaded; validate() rejects that case at startup.
func (c *Config) ReportLocation() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDashboardWorkers returns the number of concurrent workers used to build a dashboard summary
func (c *Config) GetDashboardWorkers() int {
	if c.DashboardWorkers > 0 {
		return c.DashboardWorkers
	}
	return 1
}

// CheckpointInterval returns how often the WAL is checkpointed; zero disables it.
func (c *Config) CheckpointInterval() time.Duration {
	if c.CheckpointIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.CheckpointIntervalMinutes) * time.Minute
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
func (c *Config) GetPublicDirectory() string {
	return c.PublicDirectory
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return c.PublicAssetsUrlPrefix
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetSessionSecret returns the session encryption key (implements cartridge.FactoryConfig interface).
func (c *Config) GetSessionSecret() string {
	return c.PrivateKey
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// Test uses a single connection; other environments allow concurrent dashboard reads.
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
