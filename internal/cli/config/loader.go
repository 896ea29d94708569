package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// Config file names searched in the working directory, in order.
const (
	ConfigFileName    = "leaptable.yaml"
	ConfigFileNameAlt = "leaptable.yml"
	DotEnvFileName    = ".env"
)

// envPrefix namespaces leaptable's own environment variables.
const envPrefix = "LEAPTABLE_"

// connectionEnv maps the plain connection variables to config keys.
var connectionEnv = map[string]string{
	"DB_TYPE":       "target.type",
	"DB_HOST":       "target.host",
	"DB_PORT":       "target.port",
	"DB_NAME":       "target.database",
	"DB_USERNAME":   "target.user",
	"DB_PASSWORD":   "target.password",
	"DB_SCHEMA":     "target.schema",
	"DEFAULT_TABLE": "default_table",
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"type":          "target.type",
	"host":          "target.host",
	"port":          "target.port",
	"user":          "target.user",
	"database":      "target.database",
	"schema":        "target.schema",
	"default-table": "default_table",
	"verbose":       "verbose",
	"output":        "output",
}

// Package-level config file tracking
var (
	configFileUsed string
	dotEnvValues   map[string]string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// EnvKey maps an environment variable name to a config key, or "" when the
// variable is not a leaptable setting.
// LEAPTABLE_UI_PORT becomes ui.port and LEAPTABLE_DEFAULT_TABLE default_table.
func EnvKey(name string) string {
	if key, ok := connectionEnv[name]; ok {
		return key
	}
	if !strings.HasPrefix(name, envPrefix) {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	for _, section := range []string{"target", "ui", "log"} {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// findConfigFile finds the config file to use.
// Priority: explicit path > leaptable.yaml > leaptable.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig clears state kept from the last load. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	dotEnvValues = nil
	currentConfig = nil
}

// LoadConfig loads configuration from defaults, .env, the config file,
// environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > .env > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	ResetConfig()

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"target.type":  DefaultTargetType,
		"verbose":      false,
		"output":       DefaultOutput,
		"ui.port":      DefaultUIPort,
		"ui.auto_open": true,
		"ui.watch":     true,
		"log.level":    DefaultLogLevel,
		"log.format":   DefaultLogFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load .env from the config file's directory, or the working directory
	envDir := "."
	if cfgFile != "" {
		envDir = filepath.Dir(cfgFile)
	}
	if err := loadDotEnv(k, filepath.Join(envDir, DotEnvFileName)); err != nil {
		return nil, err
	}

	// 3. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 4. Load environment variables (DB_* names and the LEAPTABLE_ prefix)
	if err := k.Load(env.Provider("", ".", EnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Target == nil {
		cfg.Target = &TargetConfig{Type: DefaultTargetType}
	}
	expandTargetEnvVars(cfg.Target)
	ApplyTargetDefaults(cfg.Target)
	cfg.DefaultTable = strings.TrimSpace(cfg.DefaultTable)

	currentConfig = &cfg
	return &cfg, nil
}

// GetCurrentConfig returns the currently loaded configuration.
// Returns nil if no config has been loaded yet.
func GetCurrentConfig() *Config {
	return currentConfig
}

// SetCurrentConfig replaces the loaded configuration. Used for testing.
func SetCurrentConfig(cfg *Config) {
	currentConfig = cfg
}

// loadDotEnv merges a .env file if it exists. Its raw values are also kept
// for ${VAR} expansion.
func loadDotEnv(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	raw := koanf.New(".")
	if err := raw.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	dotEnvValues = make(map[string]string)
	mapped := make(map[string]interface{})
	for name, v := range raw.All() {
		dotEnvValues[name] = fmt.Sprint(v)
		if key := EnvKey(name); key != "" {
			mapped[key] = v
		}
	}
	if err := k.Load(confmap.Provider(mapped, "."), nil); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns from the environment, then .env.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		if val, ok := dotEnvValues[varName]; ok && val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.Schema = expandEnvVars(t.Schema)
}
