// Package sqlite provides a SQLite database adapter for leaptable.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	sqlitedialect "github.com/leapstack-labs/leaptable/pkg/adapters/sqlite/dialect"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQLite dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return sqlitedialect.SQLite
}

// Connect opens the database file at cfg.Path, or an in-memory database
// when the path is empty.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}
	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	if err := a.Open(ctx, "sqlite", path); err != nil {
		return err
	}
	if _, err := a.Exec(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = a.Close()
		a.DB = nil
		return core.NewConnectionError("connect", "failed to enable foreign keys", err)
	}
	a.Cfg = cfg
	return nil
}

// ListTables returns user tables from sqlite_master, skipping internal ones.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	if !a.IsConnected() {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, core.NewSchemaError("list tables", "failed to query table list", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, core.NewSchemaError("list tables", "failed to scan table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewSchemaError("list tables", "error iterating table list", err)
	}
	return tables, nil
}

// GetTableMetadata reads column and primary key information via pragma_table_info.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	if !a.IsConnected() {
		return nil, fmt.Errorf("database connection not established")
	}

	d := a.Dialect()
	schema, name := adapter.ParseQualifiedName(table, a.SchemaOrDefault(d))

	rows, err := a.DB.QueryContext(ctx, `
		SELECT cid, name, type, "notnull", pk
		FROM pragma_table_info(?, ?)
		ORDER BY cid
	`, name, schema)
	if err != nil {
		return nil, core.NewSchemaError("load schema", "failed to query column metadata", err)
	}
	defer func() { _ = rows.Close() }()

	type pkCol struct {
		name string
		seq  int
	}
	var (
		columns []core.Column
		pkCols  []pkCol
	)
	for rows.Next() {
		var (
			cid     int
			col     core.Column
			notNull int
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &pk); err != nil {
			return nil, core.NewSchemaError("load schema", "failed to scan column metadata", err)
		}
		col.Position = cid + 1
		col.Nullable = notNull == 0
		col.Kind = core.InferKind(col.Type)
		if pk > 0 {
			pkCols = append(pkCols, pkCol{name: col.Name, seq: pk})
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewSchemaError("load schema", "error iterating column metadata", err)
	}
	if len(columns) == 0 {
		return nil, core.NewSchemaError("load schema", fmt.Sprintf("table %s not found", table), nil)
	}
	_ = rows.Close()

	// pk holds the 1-based position within the key, not the column order.
	sort.Slice(pkCols, func(i, j int) bool { return pkCols[i].seq < pkCols[j].seq })
	pk := make([]string, 0, len(pkCols))
	for _, c := range pkCols {
		pk = append(pk, c.name)
	}
	adapter.MarkPrimaryKey(columns, pk)

	return &core.TableMetadata{
		Schema:     schema,
		Name:       name,
		Columns:    columns,
		PrimaryKey: pk,
	}, nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
