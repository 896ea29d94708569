// Package dialect provides the SQLite SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

func init() {
	dialect.Register(SQLite)
}

// SQLite is the SQLite dialect configuration.
var SQLite = dialect.NewDialect("sqlite").
	Identifiers(`"`, `"`, `""`, dialect.NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(dialect.PlaceholderQuestion).
	LimitStyle(dialect.LimitOffset).
	WithReservedWords(
		"abort", "add", "all", "alter", "and", "as", "asc", "between", "by",
		"case", "check", "collate", "column", "commit", "constraint", "create",
		"cross", "default", "delete", "desc", "distinct", "drop", "else", "end",
		"escape", "except", "exists", "foreign", "from", "full", "group",
		"having", "in", "index", "inner", "insert", "intersect", "into", "is",
		"join", "key", "left", "limit", "natural", "not", "null", "of",
		"offset", "on", "or", "order", "outer", "primary", "references",
		"right", "select", "set", "table", "then", "to", "transaction",
		"union", "unique", "update", "using", "values", "when", "where",
		"with",
	).
	Build()
