package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Rule sources
const (
	SourceAPI      = "api"
	SourceDatabase = "database"
	SourceFile     = "file"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Rules     RulesConfig     `mapstructure:"rules"`
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	RulesFile RulesFileConfig `mapstructure:"rules_file"`
	Audit     AuditConfig     `mapstructure:"audit"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RulesConfig selects where pawn-term rules come from and how long they are cached
type RulesConfig struct {
	Source       string        `mapstructure:"source"` // "api", "database" or "file"
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	DebugLogging bool          `mapstructure:"debug_logging"`
}

// APIConfig holds back-office API configuration
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	PageSize   int           `mapstructure:"page_size"`
	RatePerSec float64       `mapstructure:"rate_per_sec"`
}

// DatabaseConfig holds back-office database configuration
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // "postgres" or "sqlite"
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RulesFileConfig points at a YAML rule file
type RulesFileConfig struct {
	Path string `mapstructure:"path"`
}

// AuditConfig toggles recording of match evaluations
type AuditConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/gadai/")

	// GADAI_API_BASE_URL -> api.base_url
	v.SetEnvPrefix("GADAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment. Variables that are
// already set win; a missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("rules.source", SourceAPI)
	v.SetDefault("rules.cache_ttl", "5m")
	v.SetDefault("rules.debug_logging", false)

	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.page_size", 100)
	v.SetDefault("api.rate_per_sec", 5.0)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("rules_file.path", "rules.yaml")

	v.SetDefault("audit.enabled", false)

	v.SetDefault("ratelimit.per_ip", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Rules.Source {
	case SourceAPI:
		if config.API.BaseURL == "" {
			return fmt.Errorf("API base URL is required when rules source is 'api' (set GADAI_API_BASE_URL)")
		}
		if config.API.PageSize <= 0 {
			return fmt.Errorf("API page size must be positive, got: %d", config.API.PageSize)
		}
	case SourceDatabase:
		// checked below
	case SourceFile:
		if config.RulesFile.Path == "" {
			return fmt.Errorf("rules file path is required when rules source is 'file' (set GADAI_RULES_FILE_PATH)")
		}
	default:
		return fmt.Errorf("rules source must be 'api', 'database' or 'file', got: %s", config.Rules.Source)
	}

	if config.NeedsDatabase() {
		if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
			return fmt.Errorf("database driver must be 'postgres' or 'sqlite', got: %s", config.Database.Driver)
		}
		if config.Database.DSN == "" {
			return fmt.Errorf("database DSN is required (set GADAI_DATABASE_DSN)")
		}
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit.per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}

// NeedsDatabase reports whether any enabled component reads or writes the database
func (c *Config) NeedsDatabase() bool {
	return c.Rules.Source == SourceDatabase || c.Audit.Enabled
}
