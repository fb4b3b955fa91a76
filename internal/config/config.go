package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/rodizio/pkg/db"
)

// Storage backends
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Environment variables that override file values
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvSpreadsheetID   = "RODIZIO_SPREADSHEET_ID"
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
)

const configFileBase = "rodizio_config"

// StorageConfig selects and configures the table store
type StorageConfig struct {
	Backend         string `yaml:"backend" validate:"required,oneof=sheets postgres sqlite"`
	SpreadsheetID   string `yaml:"spreadsheetID,omitempty"`
	CredentialsFile string `yaml:"credentialsFile,omitempty"`
	TokenFile       string `yaml:"tokenFile,omitempty"`
	PostgresURL     string `yaml:"postgresURL,omitempty"`
	SQLitePath      string `yaml:"sqlitePath,omitempty"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
}

// Config represents the application configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" validate:"required"`
	Tables  db.Tables     `yaml:"tables,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`

	// Env is the environment the file was loaded for
	Env string `yaml:"-"`
}

// DefaultAddr is used when server.addr is not set
const DefaultAddr = ":8080"

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from rodizio_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" will look for "rodizio_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	fileName := configFileBase + ".yaml"
	if env != "" {
		fileName = fmt.Sprintf("%s.%s.yaml", configFileBase, env)
	}

	configPath, err := findConfigFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Env = env
	return cfg, nil
}

// LoadFromPath loads and validates the configuration from a specific path.
// Values from a .env file in the working directory or from the process
// environment override the file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	applyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and the settings required by
// the selected backend
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch cfg.Storage.Backend {
	case BackendSheets:
		if cfg.Storage.SpreadsheetID == "" {
			return fmt.Errorf("config validation failed: storage.spreadsheetID is required for the %s backend", BackendSheets)
		}
	case BackendPostgres:
		if cfg.Storage.PostgresURL == "" {
			return fmt.Errorf("config validation failed: storage.postgresURL is required for the %s backend", BackendPostgres)
		}
	case BackendSQLite:
		if cfg.Storage.SQLitePath == "" {
			return fmt.Errorf("config validation failed: storage.sqlitePath is required for the %s backend", BackendSQLite)
		}
	}

	if err := cfg.Tables.Validate(); err != nil {
		return fmt.Errorf("invalid tables mapping: %w", err)
	}

	return nil
}

// ServerAddr returns the configured listen address or the default
func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultAddr
	}
	return c.Server.Addr
}

// loadDotEnv reads .env into the process environment when present.
// Variables already set are left alone.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env file: %w", err)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.Storage.PostgresURL = v
	}
	if v := os.Getenv(EnvSpreadsheetID); v != "" {
		cfg.Storage.SpreadsheetID = v
	}
	if v := os.Getenv(EnvCredentialsFile); v != "" {
		cfg.Storage.CredentialsFile = v
	}
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
