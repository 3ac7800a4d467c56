package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultBackendURL is used when no base URL is configured anywhere.
const DefaultBackendURL = "http://localhost:8000"

// BackendConfig configures the chat backend.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // per request, e.g. "60s"
}

// ResolvedBaseURL returns the configured base URL, or DefaultBackendURL when
// it is blank.
func (b BackendConfig) ResolvedBaseURL() string {
	base := strings.TrimSpace(b.BaseURL)
	if base == "" {
		return DefaultBackendURL
	}
	return base
}

// ChatEndpoint returns <base>/chat.
func (b BackendConfig) ChatEndpoint() string {
	return strings.TrimRight(b.ResolvedBaseURL(), "/") + "/chat"
}

// Validate checks that the base URL is an absolute http(s) URL and that the
// timeout is a positive duration.
func (b BackendConfig) Validate() error {
	base := b.ResolvedBaseURL()
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid backend base_url %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend base_url %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend base_url %q: missing host", base)
	}

	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return fmt.Errorf("invalid backend timeout %q: %w", b.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid backend timeout %q: must be positive", b.Timeout)
		}
	}
	return nil
}

// StubConfig configures the local stub backend.
type StubConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second per client
	Burst     int     `yaml:"burst"`
}
