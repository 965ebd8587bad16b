// Package config provides configuration management for topomon.
//
// Config file locations (priority order):
//  1. $TOPOMON_CONFIG
//  2. ./topomon.yaml
//  3. $XDG_CONFIG_HOME/topomon/config.yaml
//  4. ~/.config/topomon/config.yaml
//  5. /etc/topomon/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./topomon.db"
	}
	if c.Topology.UpdateInterval == nil {
		d := Duration(time.Hour)
		c.Topology.UpdateInterval = &d
	}
	if c.Topology.MaxPathDepth == 0 {
		c.Topology.MaxPathDepth = 10
	}
	if c.Topology.MaxPaths == 0 {
		c.Topology.MaxPaths = 100
	}
	if c.Discovery.Workers == 0 {
		c.Discovery.Workers = 10
	}
	if c.Discovery.ProbeTimeout == nil {
		d := Duration(2 * time.Second)
		c.Discovery.ProbeTimeout = &d
	}
	if c.Discovery.SSH.Port == 0 {
		c.Discovery.SSH.Port = 22
	}
}

// Validate reports configuration errors that would break startup
func (c *Config) Validate() error {
	if c.Discovery.SSH.Enabled {
		if c.Discovery.SSH.Username == "" {
			return fmt.Errorf("discovery.ssh: username is required when enabled")
		}
		if c.Discovery.SSH.Password == "" && c.Discovery.SSH.KeyPath == "" {
			return fmt.Errorf("discovery.ssh: password or key_path is required when enabled")
		}
	}
	seen := make(map[string]struct{}, len(c.Devices))
	for _, dev := range c.Devices {
		if dev.Key == "" {
			return fmt.Errorf("devices: entry missing key")
		}
		if _, dup := seen[dev.Key]; dup {
			return fmt.Errorf("devices: duplicate key %s", dev.Key)
		}
		seen[dev.Key] = struct{}{}
	}
	return nil
}
