// Package config provides configuration loading and management for structscan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete structscan configuration
type Config struct {
	Locations   []LocationConfig           `yaml:"locations"`
	Scanner     ScannerConfig              `yaml:"scanner"`
	Cache       CacheConfig                `yaml:"cache"`
	NATS        NATSConfig                 `yaml:"nats"`
	Output      OutputConfig               `yaml:"output"`
	Discoveries map[string]DiscoveryConfig `yaml:"discoveries"`
}

// LocationConfig declares one scan root
type LocationConfig struct {
	// Prefix is the logical namespace for structures found under Path
	Prefix string `yaml:"prefix"`
	// Path is a directory or glob pattern resolving to directories
	Path string `yaml:"path"`
}

// ScannerConfig configures the source tree walker
type ScannerConfig struct {
	// Workers is the number of locations scanned concurrently (default: 1)
	Workers int `yaml:"workers"`
	// SkipDirs extends the built-in list of directory names never descended into
	SkipDirs []string `yaml:"skip_dirs"`
}

// CacheConfig configures the discovery result cache
type CacheConfig struct {
	// Backend selects the cache: "none", "memory", "file", or "nats"
	Backend string `yaml:"backend"`
	// Dir is the cache directory for the file backend
	Dir string `yaml:"dir"`
	// Bucket is the KV bucket for the nats backend
	Bucket string `yaml:"bucket"`
	// TTL is the cache entry retention (default: 24h)
	TTL time.Duration `yaml:"ttl"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = NATS features disabled)
	URL string `yaml:"url"`
}

// OutputConfig configures run outputs
type OutputConfig struct {
	// Manifest is the path the discovery manifest is written to (empty = no manifest)
	Manifest string `yaml:"manifest"`
	// Subject is the NATS subject run notifications publish to
	Subject string `yaml:"subject"`
}

// DiscoveryConfig configures one built-in discovery
type DiscoveryConfig struct {
	// Enabled toggles the discovery (default: enabled)
	Enabled *bool `yaml:"enabled"`
	// Attributes overrides the matched annotation or interface names,
	// keyed by role ("action", "filter", "attribute", "interface")
	Attributes map[string]string `yaml:"attributes"`
}

// On reports whether the discovery is enabled.
func (d DiscoveryConfig) On() bool {
	return d.Enabled == nil || *d.Enabled
}

// Valid cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheNATS   = "nats"
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Workers: 1,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     ".structscan/cache",
			TTL:     24 * time.Hour,
		},
		Output: OutputConfig{
			Manifest: ".structscan/manifest.json",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheFile, CacheNATS:
	default:
		return fmt.Errorf("cache.backend must be one of none, memory, file, nats")
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required for the file backend")
	}
	if c.Cache.Backend == CacheNATS && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required for the nats cache backend")
	}
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("scanner.workers must not be negative")
	}
	for i, loc := range c.Locations {
		if loc.Path == "" {
			return fmt.Errorf("locations[%d].path is required", i)
		}
		if loc.Prefix == "" {
			return fmt.Errorf("locations[%d].prefix is required", i)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Locations) > 0 {
		c.Locations = other.Locations
	}

	if other.Scanner.Workers != 0 {
		c.Scanner.Workers = other.Scanner.Workers
	}
	if len(other.Scanner.SkipDirs) > 0 {
		c.Scanner.SkipDirs = other.Scanner.SkipDirs
	}

	if other.Cache.Backend != "" {
		c.Cache.Backend = other.Cache.Backend
	}
	if other.Cache.Dir != "" {
		c.Cache.Dir = other.Cache.Dir
	}
	if other.Cache.Bucket != "" {
		c.Cache.Bucket = other.Cache.Bucket
	}
	if other.Cache.TTL != 0 {
		c.Cache.TTL = other.Cache.TTL
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	if other.Output.Manifest != "" {
		c.Output.Manifest = other.Output.Manifest
	}
	if other.Output.Subject != "" {
		c.Output.Subject = other.Output.Subject
	}

	if len(other.Discoveries) > 0 {
		if c.Discoveries == nil {
			c.Discoveries = make(map[string]DiscoveryConfig, len(other.Discoveries))
		}
		for id, dc := range other.Discoveries {
			c.Discoveries[id] = dc
		}
	}
}
