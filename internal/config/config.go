// =============================================================================
// PackOut Sync - Configuration Module
// =============================================================================
//
// Loads the YAML configuration file. Every setting has a default matching
// the stock development environment, so the tool runs without any config
// file at all; the file exists for pointing `sync` at a real database and
// for tuning the patcher.
//
// CONFIGURATION SECTIONS:
//   database:  connection settings for the dictionary database (sync only)
//   patch:     line patcher tuning
//   sync:      database updater modes
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Patch    PatchConfig    `yaml:"patch"`
	Sync     SyncConfig     `yaml:"sync"`
}

// DatabaseConfig describes the dictionary database connection.
type DatabaseConfig struct {
	// Host of the database server. Default: "localhost"
	Host string `yaml:"host"`

	// Port of the database server. Default: 5432
	Port int `yaml:"port"`

	// Name of the database. Default: "idempiere"
	Name string `yaml:"name"`

	// User for the connection. Default: "adempiere"
	User string `yaml:"user"`

	// Password for the connection. Default: "adempiere"
	Password string `yaml:"password"`

	// SSLMode for the connection. Default: "disable"
	SSLMode string `yaml:"sslmode"`
}

// DSN builds the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// PatchConfig tunes the line-oriented patcher.
type PatchConfig struct {
	// MaxElementSpan bounds the forward scan for an element's end tag.
	// Default: 10000 lines.
	MaxElementSpan int `yaml:"max_element_span"`
}

// SyncConfig selects database updater modes. These are modes of the tool,
// chosen per deployment in the config file, not per-run flags.
type SyncConfig struct {
	// SkipCoreEntities leaves base-dictionary elements (EntityType D)
	// untouched during sync. Default: false (refresh everything).
	SkipCoreEntities bool `yaml:"skip_core_entities"`

	// ClientID filters AD_Element lookups, which use the ColumnName natural
	// key. Default: 0 (the system client).
	ClientID int `yaml:"client_id"`
}

// Load reads the configuration from path. A missing file is not an error:
// the defaults describe a stock development environment.
func Load(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.Database.Name == "" {
		config.Database.Name = "idempiere"
	}
	if config.Database.User == "" {
		config.Database.User = "adempiere"
	}
	if config.Database.Password == "" {
		config.Database.Password = "adempiere"
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}
	if config.Patch.MaxElementSpan == 0 {
		config.Patch.MaxElementSpan = 10000
	}
}

// validate rejects configurations the pipelines cannot run with.
func validate(config *Config) error {
	if config.Patch.MaxElementSpan < 0 {
		return fmt.Errorf("patch.max_element_span must be positive")
	}
	if config.Database.Port < 1 || config.Database.Port > 65535 {
		return fmt.Errorf("database.port out of range: %d", config.Database.Port)
	}
	if config.Sync.ClientID < 0 {
		return fmt.Errorf("sync.client_id must not be negative")
	}
	return nil
}
