package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the social graph explorer
type Config struct {
	// Bluesky account / API settings
	Bluesky BlueskyConfig `yaml:"bluesky" json:"bluesky"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// HTTP transport settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Retry behavior for transient API failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BlueskyConfig holds Bluesky-specific configuration
type BlueskyConfig struct {
	Handle       string `yaml:"handle" json:"handle"`
	AppPassword  string `yaml:"app_password" json:"app_password"`
	UserAgent    string `yaml:"user_agent" json:"user_agent"`
	PublicAPIURL string `yaml:"public_api_url" json:"public_api_url"`
	AuthAPIURL   string `yaml:"auth_api_url" json:"auth_api_url"`
}

// RateLimitConfig holds rate limiting configuration.
// RequestDelay is the fixed pause between consecutive paginated calls;
// MaxRequests/Window mirror the documented API ceiling (3000 per 5 minutes).
type RateLimitConfig struct {
	RequestDelay time.Duration `yaml:"request_delay" json:"request_delay"`
	MaxRequests  int           `yaml:"max_requests" json:"max_requests"`
	Window       time.Duration `yaml:"window" json:"window"`
}

// HTTPConfig holds HTTP client settings
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// RetryConfig holds retry configuration. Disabled by default: a failed
// page is a run-ending error unless retries are explicitly turned on.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bluesky: BlueskyConfig{
			UserAgent:    "bskygraph/1.0",
			PublicAPIURL: "https://public.api.bsky.app/xrpc",
			AuthAPIURL:   "https://bsky.social/xrpc",
		},
		RateLimit: RateLimitConfig{
			RequestDelay: 400 * time.Millisecond,
			MaxRequests:  3000,
			Window:       5 * time.Minute,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			Enabled:     false,
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if handle := os.Getenv("BSKYGRAPH_HANDLE"); handle != "" {
		c.Bluesky.Handle = handle
	}
	if password := os.Getenv("BSKYGRAPH_APP_PASSWORD"); password != "" {
		c.Bluesky.AppPassword = password
	}
	if userAgent := os.Getenv("BSKYGRAPH_USER_AGENT"); userAgent != "" {
		c.Bluesky.UserAgent = userAgent
	}

	if delay := os.Getenv("BSKYGRAPH_REQUEST_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d >= 0 {
			c.RateLimit.RequestDelay = d
		}
	}

	if timeout := os.Getenv("BSKYGRAPH_HTTP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.HTTP.Timeout = d
		}
	}

	if retries := os.Getenv("BSKYGRAPH_RETRY_ENABLED"); retries != "" {
		c.Retry.Enabled = strings.ToLower(retries) == "true"
	}

	if logLevel := os.Getenv("BSKYGRAPH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".bskygraph.yaml",
		".bskygraph.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "bskygraph", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "bskygraph", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".bskygraph.yaml"),
		filepath.Join(os.Getenv("HOME"), ".bskygraph.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Credentials are optional, but must come as a pair
	if (c.Bluesky.Handle == "") != (c.Bluesky.AppPassword == "") {
		errs = append(errs, errors.New("handle and app password must be provided together"))
	}

	if c.Bluesky.PublicAPIURL == "" {
		errs = append(errs, errors.New("public API URL is required"))
	}
	if c.Bluesky.AuthAPIURL == "" {
		errs = append(errs, errors.New("auth API URL is required"))
	}

	// Validate rate limiting
	if c.RateLimit.RequestDelay < 0 {
		errs = append(errs, errors.New("request delay cannot be negative"))
	}
	if c.RateLimit.MaxRequests <= 0 {
		errs = append(errs, errors.New("max requests must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	// Validate HTTP settings
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("HTTP timeout must be positive"))
	}

	// Validate retry settings
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if handle, ok := flags["handle"].(string); ok && handle != "" {
		c.Bluesky.Handle = handle
	}
	if password, ok := flags["password"].(string); ok && password != "" {
		c.Bluesky.AppPassword = password
	}
	if delay, ok := flags["request-delay"].(time.Duration); ok && delay >= 0 {
		c.RateLimit.RequestDelay = delay
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.HTTP.Timeout = timeout
	}
	if retry, ok := flags["retry"].(bool); ok {
		c.Retry.Enabled = retry
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bskygraph.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
