package config

import (
	"os"
	"strings"

	"github.com/gear6io/metacat/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the metacat configuration
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Metastore MetastoreConfig `yaml:"metastore"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`      // "json" or "console"
	FilePath   string `yaml:"file_path"`   // Path to log file
	Console    bool   `yaml:"console"`     // Whether to log to console
	MaxSize    int    `yaml:"max_size"`    // Max file size in MB
	MaxBackups int    `yaml:"max_backups"` // Max number of backup files
	MaxAge     int    `yaml:"max_age"`     // Max age in days
	Cleanup    bool   `yaml:"cleanup"`     // Whether to cleanup log file on startup
}

// CatalogConfig configures the catalog façade
type CatalogConfig struct {
	Name                 string `yaml:"name"`
	DefaultDatabase      string `yaml:"default_database"`
	DefaultStorageFormat string `yaml:"default_storage_format"`
	Warehouse            string `yaml:"warehouse"` // Root of default locations
}

// MetastoreConfig selects and configures the metastore backend
type MetastoreConfig struct {
	Type    string `yaml:"type"`    // "memory" or "sqlite"
	Path    string `yaml:"path"`    // SQLite database file
	Version string `yaml:"version"` // Metastore version to emulate or override
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Console:    true,
			MaxSize:    100, // 100MB
			MaxBackups: 3,
			MaxAge:     7, // 7 days
		},
		Catalog: CatalogConfig{
			Name:                 DEFAULT_CATALOG_NAME,
			DefaultDatabase:      DEFAULT_DATABASE,
			DefaultStorageFormat: DEFAULT_STORAGE_FORMAT,
			Warehouse:            DEFAULT_WAREHOUSE,
		},
		Metastore: MetastoreConfig{
			Type: METASTORE_TYPE_MEMORY,
			Path: DEFAULT_METASTORE_PATH,
		},
	}
}

// LoadConfig loads configuration from a file. Missing keys keep their
// defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).AddContext("file", filename)
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).AddContext("file", filename)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return errors.New(ErrCatalogValidationFailed, "catalog validation failed", err)
	}
	if err := c.Metastore.Validate(); err != nil {
		return errors.New(ErrMetastoreValidationFailed, "metastore validation failed", err)
	}
	return nil
}

// Validate validates the catalog configuration
func (c *CatalogConfig) Validate() error {
	if c.Name == "" {
		return errors.New(ErrCatalogNameRequired, "catalog name is required", nil)
	}
	if strings.Contains(c.Name, ".") {
		return errors.New(ErrCatalogNameInvalid, "catalog name must not contain '.'", nil).AddContext("name", c.Name)
	}
	return nil
}

// Validate validates the metastore configuration
func (m *MetastoreConfig) Validate() error {
	if !IsValidMetastoreType(m.Type) {
		return errors.New(ErrMetastoreTypeInvalid, "metastore type must be memory or sqlite", nil).AddContext("type", m.Type)
	}
	if m.Type == METASTORE_TYPE_SQLITE && m.Path == "" {
		return errors.New(ErrMetastorePathRequired, "path is required for the sqlite metastore", nil)
	}
	return nil
}

// GetMetastoreType returns the metastore type
func (c *Config) GetMetastoreType() string {
	return c.Metastore.Type
}

// GetCatalogName returns the catalog name
func (c *Config) GetCatalogName() string {
	return c.Catalog.Name
}
