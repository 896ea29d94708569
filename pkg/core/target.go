package core

import "strings"

// TargetConfig holds database connection configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // sqlserver, postgres, mysql, duckdb, sqlite

	// Database is the database name for network targets or the file path
	// for file-based targets (DuckDB, SQLite).
	Database string `koanf:"database"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific connection string options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration decoded by the adapter itself
	Params map[string]any `koanf:"params"`
}

// IsFileBased reports whether the target stores its data in a local file.
func (t *TargetConfig) IsFileBased() bool {
	switch strings.ToLower(t.Type) {
	case "duckdb", "sqlite", "sqlite3":
		return true
	default:
		return false
	}
}

// ToAdapterConfig converts the target into the adapter connection config.
func (t *TargetConfig) ToAdapterConfig() AdapterConfig {
	cfg := AdapterConfig{
		Type:     strings.ToLower(t.Type),
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
		Params:   t.Params,
	}
	if t.IsFileBased() {
		cfg.Path = t.Database
	}
	return cfg
}
