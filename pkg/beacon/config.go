// config.go holds the client configuration and its YAML loader.

package beacon

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxBatch is how many envelopes one flush delivers at most.
const DefaultMaxBatch = 20

// DefaultFlushInterval paces timer-driven flushes.
const DefaultFlushInterval = 6 * time.Second

// Config configures a Client. The zero value is usable once AppID is set;
// every other field has a production default.
type Config struct {
	// AppID identifies the application to the backend. Required.
	AppID string `yaml:"app_id"`

	// TenantHint scopes ingestion and policy calls to a tenant.
	TenantHint string `yaml:"tenant_hint"`

	// DefaultSource labels events whose capture request names no surface.
	DefaultSource string `yaml:"default_source"`

	// Release identifies the running build.
	Release Release `yaml:"release"`

	// MaxMessageLen clamps messages after scrubbing (default: 1200).
	MaxMessageLen int `yaml:"max_message_len"`

	// QueueCapacity bounds the outgoing buffer (default: 300).
	QueueCapacity int `yaml:"queue_capacity"`

	// MaxBatch bounds one delivery (default: 20).
	MaxBatch int `yaml:"max_batch"`

	// FlushInterval paces timer-driven flushes (default: 6s).
	FlushInterval time.Duration `yaml:"flush_interval"`

	// DedupeWindow suppresses identical fingerprints (default: 120s).
	DedupeWindow time.Duration `yaml:"dedupe_window"`

	// BreadcrumbCapacity bounds the breadcrumb ring (default: 50).
	BreadcrumbCapacity int `yaml:"breadcrumb_capacity"`

	// Limits configures sampling and rate limiting.
	Limits LimiterConfig `yaml:"limits"`
}

// Validate reports construction-time misconfiguration. Misconfiguration is
// a fatal, immediate failure rather than a deferred one, so it is caught at
// startup instead of silently degrading at runtime.
func (c Config) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("beacon: config missing app_id")
	}
	return nil
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("beacon: read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("beacon: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
