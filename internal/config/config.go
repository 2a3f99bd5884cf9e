// Package config handles loading, validation and persistence of the
// ipamdrift configuration file.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ipamtools/ipamdrift/internal/errors"
)

const (
	configDirPerm  = 0755
	configFilePerm = 0644

	// DefaultWAPIVersion is the appliance API version used when the
	// config file does not pin one.
	DefaultWAPIVersion = "v2.12"

	defaultPageSize    = 1000
	defaultHTTPTimeout = 30 * time.Second
)

// Config represents the complete ipamdrift configuration
type Config struct {
	// Grid manager connection settings
	Grid GridConfig `yaml:"grid" json:"grid"`

	// Report defaults
	Report ReportConfig `yaml:"report" json:"report"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// GridConfig holds appliance connection settings
type GridConfig struct {
	// Grid manager hostname or IP
	Host string `yaml:"host" json:"host" validate:"required"`

	// WAPI version, e.g. "v2.12"
	WAPIVersion string `yaml:"wapi_version" json:"wapi_version" validate:"required"`

	// Basic-auth credentials
	Username string `yaml:"username" json:"username" validate:"required"`
	Password string `yaml:"password" json:"password"`

	// Validate the appliance TLS certificate. Grid managers commonly run
	// with self-signed certs, so this defaults to false.
	VerifyTLS bool `yaml:"verify_tls" json:"verify_tls"`

	// Per-request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ReportConfig holds report defaults
type ReportConfig struct {
	// Page size for the paged device fetch
	PageSize int `yaml:"page_size" json:"page_size" validate:"gt=0"`

	// Default output format (csv, table)
	Format string `yaml:"format" json:"format" validate:"oneof=csv table"`

	// Optional CSV output file
	File string `yaml:"file" json:"file"`

	// Report only networks missing from IPAM
	NotInIPAMOnly bool `yaml:"not_in_ipam_only" json:"not_in_ipam_only"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Host:        "",
			WAPIVersion: DefaultWAPIVersion,
			Username:    "",
			Password:    "",
			VerifyTLS:   false,
			Timeout:     defaultHTTPTimeout,
		},
		Report: ReportConfig{
			PageSize:      defaultPageSize,
			Format:        "table",
			File:          "",
			NotInIPAMOnly: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Start with defaults
	config := Default()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil // Return defaults if no config file
	}

	// Read file
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the --config flag
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to parse YAML config", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, configFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var validate = validator.New()

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0]
			return errors.ErrConfigInvalid(field.Namespace(), field.Value())
		}
		return errors.WrapConfigError(errors.CodeValidation, "configuration validation failed", err)
	}

	if c.Grid.Timeout <= 0 {
		return errors.ErrConfigInvalid("grid.timeout", c.Grid.Timeout)
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return errors.ErrConfigInvalid("logging.level", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return errors.ErrConfigInvalid("logging.format", c.Logging.Format)
	}

	return nil
}

// BaseURL returns the appliance API base URL.
func (c *GridConfig) BaseURL() string {
	return fmt.Sprintf("https://%s/wapi/%s", c.Host, c.WAPIVersion)
}
