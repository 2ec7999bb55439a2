// Package config provides configuration management for the ModelParity CLI.
//
// Configuration is layered: built-in defaults, then modelparity.yaml, then
// MODELPARITY_ environment variables, then explicitly set CLI flags.
package config

import (
	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/diff"
)

// Config holds all CLI configuration options.
type Config struct {
	LeftPath   string `koanf:"left_path"`
	RightPath  string `koanf:"right_path"`
	LeftLabel  string `koanf:"left_label"`
	RightLabel string `koanf:"right_label"`

	Layers           []string `koanf:"layers"`
	Workers          int      `koanf:"workers"`
	Strategy         string   `koanf:"strategy"`
	SimilarThreshold int      `koanf:"similar_threshold"`
	OverlapPercent   float64  `koanf:"overlap_percent"`

	StorePath string `koanf:"store_path"`
	NoCache   bool   `koanf:"no_cache"`

	Teams  map[string]string `koanf:"teams"`
	Schema *SchemaConfig     `koanf:"schema"`
	Server *ServerConfig     `koanf:"server"`

	Profile  string                   `koanf:"profile"`
	Profiles map[string]ProfileConfig `koanf:"profiles"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	// ProjectRoot is the directory all relative paths resolve against.
	// Set by the loader, never read from file.
	ProjectRoot string `koanf:"-"`
}

// SchemaConfig holds warehouse connection settings for schema pulls.
// Either DSN or the discrete fields may be set; DSN wins.
type SchemaConfig struct {
	Driver   string            `koanf:"driver"`
	DSN      string            `koanf:"dsn"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	Username string            `koanf:"username"`
	Password string            `koanf:"password"`
	Path     string            `koanf:"path"`
	Options  map[string]string `koanf:"options"`
}

// ServerConfig holds settings for the JSON API server.
type ServerConfig struct {
	Addr  string `koanf:"addr"`
	Watch bool   `koanf:"watch"`
}

// DefaultServerConfig returns a ServerConfig with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:  DefaultServerAddr,
		Watch: false,
	}
}

// GetServerConfig returns the server config with defaults applied for any
// unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return DefaultServerConfig()
	}
	srv := c.Server
	if srv.Addr == "" {
		srv.Addr = DefaultServerAddr
	}
	return srv
}

// ProfileConfig holds per-profile overrides so one config file can
// describe several comparison pairings.
type ProfileConfig struct {
	LeftPath   string `koanf:"left_path"`
	RightPath  string `koanf:"right_path"`
	LeftLabel  string `koanf:"left_label"`
	RightLabel string `koanf:"right_label"`
	Strategy   string `koanf:"strategy"`
}

// Default configuration values.
const (
	DefaultStoreFile        = ".modelparity/history.db"
	DefaultStrategy         = "logic"
	DefaultSimilarThreshold = diff.DefaultSimilarThreshold
	DefaultOverlapPercent   = diff.DefaultSimilarPercent
	DefaultWorkers          = 4
	DefaultServerAddr       = ":8722"
	DefaultOutput           = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// DefaultLayers is the layer walk order when none is configured.
func DefaultLayers() []string {
	layers := make([]string, len(catalog.DefaultLayerPriority))
	copy(layers, catalog.DefaultLayerPriority)
	return layers
}
