package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	DatabasePath  string `yaml:"database_path" toml:"database_path"`
	LogLevel      string `yaml:"log_level" toml:"log_level"`
	Environment   string `yaml:"environment" toml:"environment"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms" toml:"busy_timeout_ms"`
	SeedOnStart   bool   `yaml:"seed_on_start" toml:"seed_on_start"`
}

func Default() *Config {
	return &Config{
		DatabasePath:  "wardrobe.db",
		LogLevel:      "info",
		Environment:   EnvProduction,
		BusyTimeoutMS: 5000,
		SeedOnStart:   true,
	}
}

// Load builds the configuration from, in increasing precedence: defaults, the
// optional file at path (.yaml, .yml or .toml), a .env file in the working
// directory, and WARDROBE_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg.DatabasePath = getEnv("WARDROBE_DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = getEnv("WARDROBE_LOG_LEVEL", cfg.LogLevel)
	cfg.Environment = getEnv("WARDROBE_ENV", cfg.Environment)
	cfg.BusyTimeoutMS = getEnvInt("WARDROBE_BUSY_TIMEOUT_MS", cfg.BusyTimeoutMS)
	cfg.SeedOnStart = getEnvBool("WARDROBE_SEED_ON_START", cfg.SeedOnStart)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read YAML config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file type: %s", path)
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database path must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.BusyTimeoutMS < 0 {
		return fmt.Errorf("busy timeout must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
