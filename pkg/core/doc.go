// Package core defines the shared language of leaptable.
//
// This package contains:
//   - Schema entities (TableSchema, Column, ColumnKind)
//   - Read parameters and results (QuerySpec, ResultSet)
//   - Configuration types (TargetConfig, AdapterConfig, DialectConfig)
//   - The error taxonomy (ConfigError, ConnectionError, SchemaError, QueryError, StateError)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
