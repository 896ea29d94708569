// Package adapter provides the database adapter contract for leaptable.
//
// This package contains the public contract that all database adapters must implement,
// a database/sql base implementation with shared reflection queries, and the
// adapter registry. Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

// Adapter defines the interface that all database adapters must implement.
// It provides methods for connecting to databases, executing SQL, and
// reflecting table metadata.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg core.AdapterConfig) error

	// Close closes the database connection and releases resources.
	Close() error

	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error

	// Exec executes a statement that doesn't return rows and reports rows affected.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Query executes a statement that returns rows.
	Query(ctx context.Context, query string, args ...any) (*core.Rows, error)

	// ListTables returns the base tables in the configured schema, sorted by name.
	ListTables(ctx context.Context) ([]string, error)

	// GetTableMetadata retrieves ordered columns and the declared primary key for a table.
	GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error)

	// Dialect returns the SQL dialect for this adapter.
	Dialect() *dialect.Dialect
}
