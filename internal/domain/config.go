package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Transport type values accepted in configuration.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultBaseURL is the Teamhood API root used when no URL is configured.
const DefaultBaseURL = "https://app.teamhood.com/api/v1"

// Config represents the server configuration. Values are layered:
// built-in defaults, then an optional YAML file, then environment
// variables. Environment variables win.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Teamhood  TeamhoodConfig  `yaml:"teamhood"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TransportConfig selects stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TeamhoodConfig holds the API credential and endpoint settings.
type TeamhoodConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured HTTP client timeout.
func (tc TeamhoodConfig) Timeout() time.Duration {
	return time.Duration(tc.TimeoutSeconds) * time.Second
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// envOverrides is the flat environment surface. Field values replace
// the corresponding Config fields only when the variable is set.
type envOverrides struct {
	APIKey         string `envconfig:"TEAMHOOD_API_KEY"`
	BaseURL        string `envconfig:"TEAMHOOD_API_URL"`
	TimeoutSeconds int    `envconfig:"TEAMHOOD_TIMEOUT_SECONDS"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	TransportType  string `envconfig:"MCP_TRANSPORT"`
	HTTPHost       string `envconfig:"MCP_HTTP_HOST"`
	HTTPPort       int    `envconfig:"MCP_HTTP_PORT"`
}

// LoadConfig builds the server configuration. The YAML file at path is
// optional; a missing file just means the environment supplies
// everything. Returns an error on unreadable files, invalid YAML, or
// failed validation.
func LoadConfig(path string) (*Config, error) {
	// A .env file is a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
			}
		case os.IsNotExist(err):
			// Running purely on environment variables is supported.
		default:
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// defaultConfig returns the configuration used before any file or
// environment values are applied.
func defaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Type: TransportStdio,
			HTTP: HTTPConfig{Host: "127.0.0.1", Port: 8000},
		},
		Teamhood: TeamhoodConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() error {
	var ov envOverrides
	if err := envconfig.Process("", &ov); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if ov.APIKey != "" {
		c.Teamhood.APIKey = ov.APIKey
	}
	if ov.BaseURL != "" {
		c.Teamhood.BaseURL = ov.BaseURL
	}
	if ov.TimeoutSeconds > 0 {
		c.Teamhood.TimeoutSeconds = ov.TimeoutSeconds
	}
	if ov.LogLevel != "" {
		c.Logging.Level = ov.LogLevel
	}
	if ov.TransportType != "" {
		c.Transport.Type = ov.TransportType
	}
	if ov.HTTPHost != "" {
		c.Transport.HTTP.Host = ov.HTTPHost
	}
	if ov.HTTPPort > 0 {
		c.Transport.HTTP.Port = ov.HTTPPort
	}
	return nil
}

// normalize cleans up values so the rest of the program never has to.
// Path joining in the API client assumes the base URL carries no
// trailing slash.
func (c *Config) normalize() {
	c.Teamhood.BaseURL = strings.TrimRight(c.Teamhood.BaseURL, "/")
	c.Transport.Type = strings.ToLower(strings.TrimSpace(c.Transport.Type))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if err := c.validateTransport(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Teamhood.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errs []string

	switch c.Transport.Type {
	case TransportStdio:
	case TransportHTTP:
		if c.Transport.HTTP.Host == "" {
			errs = append(errs, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errs = append(errs, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
	case "":
		errs = append(errs, "transport type is required")
	default:
		errs = append(errs, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates the Teamhood API settings.
func (tc TeamhoodConfig) Validate() error {
	var errs []string

	if tc.APIKey == "" {
		errs = append(errs, "Teamhood API key is required (set TEAMHOOD_API_KEY)")
	}

	if tc.BaseURL == "" {
		errs = append(errs, "Teamhood base URL is required")
	} else {
		parsedURL, err := url.Parse(tc.BaseURL)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Teamhood base URL is invalid: %v", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errs = append(errs, "Teamhood base URL must use http or https scheme")
		} else if parsedURL.Host == "" {
			errs = append(errs, "Teamhood base URL must include a host")
		}
	}

	if tc.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("invalid timeout %d: must be a positive number of seconds", tc.TimeoutSeconds))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
