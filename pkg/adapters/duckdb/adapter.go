// Package duckdb provides a DuckDB database adapter for leaptable.
package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	duckdialect "github.com/leapstack-labs/leaptable/pkg/adapters/duckdb/dialect"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the DuckDB dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return duckdialect.DuckDB
}

// Connect establishes a connection to DuckDB.
// An empty path opens an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return core.NewConfigError("connect", "bad duckdb params", err)
	}

	dsn := cfg.Path
	if params.ReadOnly && dsn != "" {
		dsn += "?access_mode=read_only"
	}

	a.Logger.Debug("opening duckdb", slog.String("path", cfg.Path))
	if err := a.Open(ctx, "duckdb", dsn); err != nil {
		return err
	}
	a.Cfg = cfg

	if err := a.applyParams(ctx, params); err != nil {
		_ = a.Close()
		a.DB = nil
		return core.NewConnectionError("connect", "failed to initialise duckdb session", err)
	}
	return nil
}

// settingName matches extension and setting names that are safe to inline.
var settingName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// applyParams installs extensions and applies session settings.
func (a *Adapter) applyParams(ctx context.Context, p *Params) error {
	for _, ext := range p.Extensions {
		if !settingName.MatchString(ext) {
			return fmt.Errorf("invalid extension name %q", ext)
		}
		if _, err := a.Exec(ctx, "INSTALL "+ext); err != nil {
			return fmt.Errorf("install extension %s: %w", ext, err)
		}
		if _, err := a.Exec(ctx, "LOAD "+ext); err != nil {
			return fmt.Errorf("load extension %s: %w", ext, err)
		}
	}

	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !settingName.MatchString(k) {
			return fmt.Errorf("invalid setting name %q", k)
		}
		value := strings.ReplaceAll(p.Settings[k], "'", "''")
		if _, err := a.Exec(ctx, fmt.Sprintf("SET %s = '%s'", k, value)); err != nil {
			return fmt.Errorf("apply setting %s: %w", k, err)
		}
	}
	return nil
}

// ListTables returns the base tables in the configured schema.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.ListTablesCommon(ctx, a.Dialect())
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.Dialect())
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
