package config

import (
	"time"

	"topomon/internal/inventory"
)

// Config is the root configuration structure
type Config struct {
	Version   int                `yaml:"version"`
	Server    ServerConfig       `yaml:"server"`
	Database  DatabaseConfig     `yaml:"database"`
	Topology  TopologyConfig     `yaml:"topology"`
	Discovery DiscoveryConfig    `yaml:"discovery"`
	Devices   []inventory.Device `yaml:"devices,omitempty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TopologyConfig tunes the snapshot store and query bounds
type TopologyConfig struct {
	UpdateInterval *Duration `yaml:"update_interval,omitempty"`
	MaxPathDepth   int       `yaml:"max_path_depth,omitempty"`
	MaxPaths       int       `yaml:"max_paths,omitempty"`
}

// DiscoveryConfig tunes the probe aggregator and its probes
type DiscoveryConfig struct {
	Workers      int              `yaml:"workers,omitempty"`
	ProbeTimeout *Duration        `yaml:"probe_timeout,omitempty"`
	SSH          SSHConfig        `yaml:"ssh"`
	Traceroute   TracerouteConfig `yaml:"traceroute"`
	RecordsPath  string           `yaml:"records_path,omitempty"`
}

// SSHConfig holds SSH probe settings. KeyPath references a key file; the
// key material itself never lives in the config.
type SSHConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Username   string `yaml:"username,omitempty"`
	Password   string `yaml:"password,omitempty"`
	KeyPath    string `yaml:"key_path,omitempty"`
	Passphrase string `yaml:"passphrase,omitempty"`
	Port       int    `yaml:"port,omitempty"`
}

// TracerouteConfig holds traceroute probe settings
type TracerouteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Origin  string `yaml:"origin,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
