// Package config provides unified configuration loading for the Lead Engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the Lead Engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Dataset       DatasetConfig       `yaml:"dataset"`
	Assistant     AssistantConfig     `yaml:"assistant"`
	Generation    GenerationConfig    `yaml:"generation"`
	Cache         CacheConfig         `yaml:"cache"`
	Export        ExportConfig        `yaml:"export"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// DatasetConfig selects where lead records are loaded from.
type DatasetConfig struct {
	Driver string `yaml:"driver"` // file, sqlite or postgres
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
	Query  string `yaml:"query"`
}

// AssistantConfig holds reply composition limits.
type AssistantConfig struct {
	ListCap      int    `yaml:"list_cap"`
	DisplayCap   int    `yaml:"display_cap"`
	ContextCap   int    `yaml:"context_cap"`
	SampleCap    int    `yaml:"sample_cap"`
	HistoryTurns int    `yaml:"history_turns"`
	StatsCommand string `yaml:"stats_command"`
}

// GenerationConfig holds language-generation settings.
type GenerationConfig struct {
	Enabled      bool          `yaml:"enabled"`
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	Temperature  float32       `yaml:"temperature"`
	MaxTokens    int           `yaml:"max_tokens"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheReplies bool          `yaml:"cache_replies"`
	// MaxRetries allows extra attempts after a transient provider error.
	// Zero keeps one call per reply.
	MaxRetries int `yaml:"max_retries"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	SheetName  string `yaml:"sheet_name"`
	FilePrefix string `yaml:"file_prefix"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		if cfg.Dataset.Driver == "file" && cfg.Dataset.Path != "" {
			cfg.Dataset.Path = ResolveRelativePath(path, cfg.Dataset.Path)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8090,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   60 * time.Second,
			GracefulShutdown: 10 * time.Second,
			AllowedOrigins:   []string{"*"},
		},
		Dataset: DatasetConfig{
			Driver: "file",
			Path:   "data/leads.json",
			Query:  "SELECT data FROM leads ORDER BY id",
		},
		Assistant: AssistantConfig{
			ListCap:      10,
			DisplayCap:   10,
			ContextCap:   5,
			SampleCap:    3,
			HistoryTurns: 6,
			StatsCommand: "__stats__",
		},
		Generation: GenerationConfig{
			Enabled:     true,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   1500,
			Timeout:     45 * time.Second,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        10 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
				Prefix:   "lead:",
			},
		},
		Export: ExportConfig{
			SheetName:  "Leads",
			FilePrefix: "leads",
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "lead-engine",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Dataset.Driver {
	case "file":
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset path is required for the file driver")
		}
	case "sqlite", "postgres":
		if c.Dataset.DSN == "" {
			return fmt.Errorf("dataset dsn is required for the %s driver", c.Dataset.Driver)
		}
	default:
		return fmt.Errorf("invalid dataset driver: %s", c.Dataset.Driver)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Assistant.ContextCap < 1 || c.Assistant.ContextCap > 50 {
		return fmt.Errorf("context_cap must be between 1 and 50")
	}

	if c.Assistant.HistoryTurns < 0 {
		return fmt.Errorf("history_turns must not be negative")
	}

	if strings.TrimSpace(c.Assistant.StatsCommand) == "" {
		return fmt.Errorf("stats_command must not be empty")
	}

	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation temperature must be between 0 and 2")
	}

	if c.Generation.MaxRetries < 0 || c.Generation.MaxRetries > 5 {
		return fmt.Errorf("generation max_retries must be between 0 and 5")
	}

	return nil
}

// GenerationAvailable reports whether generation is enabled and has a credential.
func (c *Config) GenerationAvailable() bool {
	return c.Generation.Enabled && c.Generation.APIKey != ""
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("LEADS_PATH"); v != "" {
		cfg.Dataset.Driver = "file"
		cfg.Dataset.Path = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Dataset.Driver = "sqlite"
			cfg.Dataset.DSN = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Dataset.Driver = "postgres"
			cfg.Dataset.DSN = v
		}
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}

	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Generation.Model = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}
