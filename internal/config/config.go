package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Penalty   PenaltyConfig   `yaml:"penalty"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// StorageConfig contains proof file storage settings
type StorageConfig struct {
	ProofDir string `yaml:"proof_dir"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "text" or "pretty"
}

// PenaltyConfig contains skip penalty settings
type PenaltyConfig struct {
	// FloorCents is the minimum penalty a skipped term incurs; the 5%
	// of the term amount applies only when it exceeds this floor.
	FloorCents int64 `yaml:"floor_cents"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	MarkDelinquentTerms string `yaml:"mark_delinquent_terms"`
	ReconcileEntries    string `yaml:"reconcile_entries"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// A local .env file can supply the environment overrides applied below
	_ = godotenv.Load()

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Storage
	if val := os.Getenv("PROOF_DIR"); val != "" {
		c.Storage.ProofDir = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Penalty
	if val := os.Getenv("PENALTY_FLOOR_CENTS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Penalty.FloorCents)
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Storage validation
	if c.Storage.ProofDir == "" {
		return fmt.Errorf("proof directory is required")
	}

	// Penalty defaults
	if c.Penalty.FloorCents < 0 {
		return fmt.Errorf("penalty floor must not be negative: %d", c.Penalty.FloorCents)
	}
	if c.Penalty.FloorCents == 0 {
		c.Penalty.FloorCents = 5000 // Default $50.00
	}

	// Scheduler defaults
	if c.Scheduler.MarkDelinquentTerms == "" {
		c.Scheduler.MarkDelinquentTerms = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.ReconcileEntries == "" {
		c.Scheduler.ReconcileEntries = "0 30 1 * * *" // 1:30 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
