package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all client configuration
type Config struct {
	// API endpoint
	APIBaseURL string `yaml:"api_base_url"`

	// HTTP behaviour
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Local state (session file) location
	StateDir string `yaml:"state_dir"`

	// Environment and logging
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	// Circuit breaker
	BreakerEnabled bool `yaml:"breaker_enabled"`
}

// LoadConfig loads configuration from the environment, after loading a
// .env file when one is present. A YAML file named by BLOG_CONFIG_FILE
// overrides environment values when it exists.
func LoadConfig() (*Config, error) {
	// Best-effort; a missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8000"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		StateDir:       getEnv("STATE_DIR", defaultStateDir()),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		BreakerEnabled: getEnvBool("BREAKER_ENABLED", true),
	}

	if path := os.Getenv("BLOG_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// applyFile overlays values from a YAML config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.StateDir == "" {
		return fmt.Errorf("STATE_DIR is required")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// defaultStateDir places the session file under the user config dir,
// falling back to the working directory when it cannot be resolved.
func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".blogclient"
	}
	return filepath.Join(dir, "blogclient")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvDuration gets a duration environment variable with a default value.
// Plain integers are read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
