// Package config loads the netsight configuration: where the scanning
// service lives, the defaults used to pre-fill scan forms, the console
// server and the ambient logging and metrics settings.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/netsight/internal/errors"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/request"
)

// Config represents the complete netsight configuration
type Config struct {
	// Scanning service connection
	Service ServiceConfig `yaml:"service" json:"service"`

	// Defaults for new scan requests
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Console server
	Console ConsoleConfig `yaml:"console" json:"console"`

	// Device query behaviour
	Query QueryConfig `yaml:"query" json:"query"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServiceConfig holds the scanning service connection settings
type ServiceConfig struct {
	// Base URL of the scanning API, e.g. http://localhost:8080/api/v1
	BaseURL string `yaml:"base_url" json:"base_url" validate:"required,url"`

	// Per-request timeout. Zero disables the client side timeout.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" validate:"min=0"`

	// User-Agent header sent with every request
	UserAgent string `yaml:"user_agent" json:"user_agent"`

	// Use /network/scan/{type} instead of /network/full-scan
	TypedEndpoints bool `yaml:"typed_endpoints" json:"typed_endpoints"`
}

// ScanConfig holds the values used to pre-fill scan forms
type ScanConfig struct {
	NetworkRange   string `yaml:"network_range" json:"network_range"`
	Communities    string `yaml:"communities" json:"communities"`
	Timeout        int    `yaml:"timeout" json:"timeout" validate:"min=1,max=10"`
	Retries        int    `yaml:"retries" json:"retries" validate:"min=0,max=3"`
	ScanType       string `yaml:"scan_type" json:"scan_type" validate:"oneof=full snmp arp"`
	EnablePortScan bool   `yaml:"enable_port_scan" json:"enable_port_scan"`
}

// ConsoleConfig holds console server settings
type ConsoleConfig struct {
	// Listen address
	Host string `yaml:"host" json:"host" validate:"required"`

	// Listen port
	Port int `yaml:"port" json:"port" validate:"min=1,max=65535"`

	// CORS settings
	CORS CORSConfig `yaml:"cors" json:"cors"`

	// Cron expression for scheduled rescans, empty disables them
	Schedule string `yaml:"schedule" json:"schedule"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	// Enable CORS
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Allowed origins
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// Allowed methods
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`

	// Allowed headers
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
}

// QueryConfig holds device query settings
type QueryConfig struct {
	// Clear search, filters and sort when a new result arrives
	ResetOnNewResult bool `yaml:"reset_on_new_result" json:"reset_on_new_result"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`

	// Enable request logging for the console
	RequestLogging bool `yaml:"request_logging" json:"request_logging"`
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path" validate:"omitempty,startswith=/"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:        "http://localhost:8080/api/v1",
			RequestTimeout: 5 * time.Minute,
			UserAgent:      "netsight",
			TypedEndpoints: false,
		},
		Scan: ScanConfig{
			NetworkRange:   "192.168.1.0/24",
			Communities:    "public,private",
			Timeout:        2,
			Retries:        1,
			ScanType:       string(request.ScanTypeFull),
			EnablePortScan: true,
		},
		Console: ConsoleConfig{
			Host: "127.0.0.1",
			Port: 8090,
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
			},
			ShutdownTimeout: 10 * time.Second,
		},
		Query: QueryConfig{
			ResetOnNewResult: false,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			Output:         "stderr",
			RequestLogging: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
	}

	// JSON is a subset of YAML, so a single decoder serves both.
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to parse config %s", filepath.Base(path)), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.WrapConfigError(errors.CodeConfiguration, "invalid configuration", err)
	}

	fe := fieldErrs[0]
	// Namespace is "Config.service.base_url"; drop the root type name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return errors.NewConfigFieldError(errors.CodeConfiguration,
		fmt.Sprintf("invalid configuration: failed %q check", fe.Tag()), field, fe.Value())
}

// GetConsoleAddress returns the full console listen address
func (c *Config) GetConsoleAddress() string {
	return fmt.Sprintf("%s:%d", c.Console.Host, c.Console.Port)
}

// GetMetricsPath returns the metrics endpoint path
func (c *Config) GetMetricsPath() string {
	if c.Metrics.Path == "" {
		return "/metrics"
	}
	return c.Metrics.Path
}

// IsScheduleEnabled returns true if scheduled rescans are configured
func (c *Config) IsScheduleEnabled() bool {
	return strings.TrimSpace(c.Console.Schedule) != ""
}

// LoggerConfig converts the logging section to a logger configuration
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.Level == "debug",
	}
}

// NetworkForm returns the scan defaults as a form for the request builder
func (c *Config) NetworkForm() request.NetworkForm {
	return request.NetworkForm{
		NetworkRange:   c.Scan.NetworkRange,
		Communities:    c.Scan.Communities,
		Timeout:        c.Scan.Timeout,
		Retries:        c.Scan.Retries,
		ScanType:       c.Scan.ScanType,
		EnablePortScan: c.Scan.EnablePortScan,
	}
}
