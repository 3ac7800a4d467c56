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

// Environment variables read by applyEnvOverrides.
const (
	EnvBackendURL = "ASSIST_BACKEND_URL"
	EnvTimeout    = "ASSIST_TIMEOUT"
	EnvTheme      = "ASSIST_THEME"
	EnvDebug      = "ASSIST_DEBUG"
	EnvStubAddr   = "ASSIST_STUB_ADDR"
)

// Config holds all assist configuration.
type Config struct {
	// Chat backend the client talks to
	Backend BackendConfig `yaml:"backend"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Local stub backend
	Stub StubConfig `yaml:"stub"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
			Timeout: "60s",
		},
		UI: *DefaultUIConfig(),
		Stub: StubConfig{
			Addr:      ":8000",
			RateLimit: 5,
			Burst:     10,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
			Dir:       filepath.Join(".assist", "logs"),
		},
	}
}

// DefaultConfigPath returns the config file path used when --config is not
// given: a project-local .assist/config.yaml if present, else the per-user
// config directory.
func DefaultConfigPath() string {
	local := filepath.Join(".assist", "config.yaml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return local
	}
	return filepath.Join(dir, "assist", "config.yaml")
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none is
// given) into the process environment. Variables already set win, and
// missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.Backend.BaseURL = cfg.Backend.ResolvedBaseURL()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv(EnvBackendURL); url != "" {
		c.Backend.BaseURL = url
	}
	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		c.Backend.Timeout = timeout
	}
	if theme := os.Getenv(EnvTheme); theme != "" {
		c.UI.Theme = theme
	}
	if debug := os.Getenv(EnvDebug); debug != "" {
		if on, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = on
		}
	}
	if addr := os.Getenv(EnvStubAddr); addr != "" {
		c.Stub.Addr = addr
	}
}

// GetBackendTimeout returns the request timeout as a duration.
func (c *Config) GetBackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if err := c.UI.Validate(); err != nil {
		return err
	}
	if c.Stub.RateLimit < 0 || c.Stub.Burst < 0 {
		return fmt.Errorf("stub rate limit and burst must not be negative")
	}
	return nil
}
