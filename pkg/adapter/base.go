package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Ping, Exec and Query implementations and the information_schema
// reflection queries.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Open opens the driver, pins the pool to a single connection and pings it.
// A failed ping closes the handle and returns a ConnectionError.
func (b *BaseSQLAdapter) Open(ctx context.Context, driverName, dsn string) error {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return core.NewConnectionError("connect", fmt.Sprintf("failed to open %s connection", driverName), err)
	}

	// One long-lived handle per session.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return core.NewConnectionError("connect", fmt.Sprintf("failed to reach %s database", driverName), err)
	}

	b.DB = db
	return nil
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (b *BaseSQLAdapter) Ping(ctx context.Context) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if err := b.DB.PingContext(ctx); err != nil {
		return core.NewConnectionError("ping", "database unreachable", err)
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	res, err := b.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute SQL: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report it; the statement still succeeded.
		return -1, nil
	}
	return n, nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*core.Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// SchemaOrDefault returns the configured schema, falling back to the dialect default.
func (b *BaseSQLAdapter) SchemaOrDefault(d *dialect.Dialect) string {
	if b.Cfg.Schema != "" {
		return b.Cfg.Schema
	}
	return d.DefaultSchema
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses the fallback schema if not specified.
func ParseQualifiedName(table, fallback string) (schema, name string) {
	if parts := strings.SplitN(table, ".", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return fallback, table
}

// ListTablesCommon lists base tables of the adapter's schema via information_schema.tables.
func (b *BaseSQLAdapter) ListTablesCommon(ctx context.Context, d *dialect.Dialect) ([]string, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:gosec // Placeholders are safe - they come from dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = %s AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, d.FormatPlaceholder(1))

	rows, err := b.DB.QueryContext(ctx, query, b.SchemaOrDefault(d))
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

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata.
// Uses information_schema.columns with dialect-appropriate placeholders and
// information_schema.table_constraints for the primary key.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table string, d *dialect.Dialect) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, tableName := ParseQualifiedName(table, b.SchemaOrDefault(d))

	//nolint:gosec // Placeholders are safe - they come from dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	columns, err := b.scanColumns(ctx, query, schema, tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, core.NewSchemaError("load schema", fmt.Sprintf("table %s not found", table), nil)
	}

	pk, err := b.primaryKeyCommon(ctx, d, schema, tableName)
	if err != nil {
		// Reflection of constraints is best effort; identity falls back to the first column.
		if b.Logger != nil {
			b.Logger.Debug("primary key lookup failed", "table", table, "error", err)
		}
		pk = nil
	}
	MarkPrimaryKey(columns, pk)

	return &core.TableMetadata{
		Schema:     schema,
		Name:       tableName,
		Columns:    columns,
		PrimaryKey: pk,
	}, nil
}

func (b *BaseSQLAdapter) scanColumns(ctx context.Context, query string, args ...any) ([]core.Column, error) {
	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.NewSchemaError("load schema", "failed to query column metadata", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, core.NewSchemaError("load schema", "failed to scan column metadata", err)
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		col.Kind = core.InferKind(col.Type)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewSchemaError("load schema", "error iterating column metadata", err)
	}
	return columns, nil
}

func (b *BaseSQLAdapter) primaryKeyCommon(ctx context.Context, d *dialect.Dialect, schema, table string) ([]string, error) {
	//nolint:gosec // Placeholders are safe - they come from dialect.FormatPlaceholder
	query := fmt.Sprintf(`
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = %s AND tc.table_name = %s
		ORDER BY kcu.ordinal_position
	`, d.FormatPlaceholder(1), d.FormatPlaceholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pk = append(pk, name)
	}
	return pk, rows.Err()
}

// MarkPrimaryKey flags the columns named in pk.
func MarkPrimaryKey(columns []core.Column, pk []string) {
	for _, name := range pk {
		for i := range columns {
			if strings.EqualFold(columns[i].Name, name) {
				columns[i].PrimaryKey = true
			}
		}
	}
}
