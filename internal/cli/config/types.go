// Package config provides configuration management for the leaptable CLI.
//
// The shared target type lives in pkg/core and is re-exported here via a
// type alias so CLI code does not need to import pkg/core for it.
package config

import (
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// UIConfig holds configuration for the web UI server.
type UIConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
	// Watch refreshes open pages when a file-based database changes on disk.
	Watch bool `koanf:"watch"`
	// SessionSecret signs the browser session cookie. A random one is
	// generated per process when empty.
	SessionSecret string `koanf:"session_secret"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Config holds all CLI configuration options.
type Config struct {
	Target       *TargetConfig `koanf:"target"`
	DefaultTable string        `koanf:"default_table"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	UI           *UIConfig     `koanf:"ui"`
	Log          *LogConfig    `koanf:"log"`
}

// Default configuration values.
const (
	DefaultTargetType = "sqlserver"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultUIPort     = 8766
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     DefaultUIPort,
		AutoOpen: true,
		Watch:    true,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return ui
}

// GetLogConfig returns the log config with defaults applied.
func (c *Config) GetLogConfig() *LogConfig {
	lc := &LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat}
	if c.Log != nil {
		if c.Log.Level != "" {
			lc.Level = c.Log.Level
		}
		if c.Log.Format != "" {
			lc.Format = c.Log.Format
		}
	}
	return lc
}
