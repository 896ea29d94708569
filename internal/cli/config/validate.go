package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

// DefaultSchemaForType returns the default schema for a database type.
func DefaultSchemaForType(dbType string) string {
	return dialect.DefaultSchemaFor(dbType)
}

// ApplyTargetDefaults fills in the schema and port implied by the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Type = strings.ToLower(strings.TrimSpace(t.Type))
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}
	if t.Port == 0 {
		switch t.Type {
		case "sqlserver", "mssql":
			t.Port = 1433
		case "postgres":
			t.Port = 5432
		case "mysql":
			t.Port = 3306
		}
	}
}

// requiredField pairs a target field with the settings that provide it.
type requiredField struct {
	name  string
	value string
	env   string
}

// ValidateTarget checks the target type is known and that every setting the
// connection needs is present. Failures are ConfigErrors.
func ValidateTarget(t *TargetConfig) error {
	if t == nil || t.Type == "" {
		return core.NewConfigError("validate", "target type is required (set target.type in leaptable.yaml or DB_TYPE)", nil)
	}
	if !adapter.IsRegistered(t.Type) {
		return core.NewConfigError("validate", "invalid target", &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		})
	}

	var fields []requiredField
	if t.IsFileBased() {
		fields = []requiredField{{name: "target.database", value: t.Database, env: "DB_NAME"}}
	} else {
		fields = []requiredField{
			{name: "target.user", value: t.User, env: "DB_USERNAME"},
			{name: "target.password", value: t.Password, env: "DB_PASSWORD"},
			{name: "target.host", value: t.Host, env: "DB_HOST"},
			{name: "target.database", value: t.Database, env: "DB_NAME"},
		}
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, fmt.Sprintf("%s (%s)", f.name, f.env))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return core.NewConfigError("validate",
			fmt.Sprintf("missing required settings for %s target: %s", t.Type, strings.Join(missing, ", ")), nil)
	}
	return nil
}

// Validate checks the configuration needed to connect.
func (c *Config) Validate() error {
	if err := ValidateTarget(c.Target); err != nil {
		return err
	}
	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return core.NewConfigError("validate", fmt.Sprintf("unknown output format %q (auto|text|markdown|json)", c.OutputFormat), nil)
	}
	return nil
}

// ValidateInteractive additionally requires the table to open at start-up.
func (c *Config) ValidateInteractive() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.DefaultTable) == "" {
		return core.NewConfigError("validate", "missing required setting default_table (DEFAULT_TABLE or --default-table)", nil)
	}
	return nil
}
