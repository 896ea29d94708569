// Package dialect provides the DuckDB SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

func init() {
	dialect.Register(DuckDB)
}

// DuckDB is the DuckDB dialect configuration.
var DuckDB = dialect.NewDialect("duckdb").
	Identifiers(`"`, `"`, `""`, dialect.NormCaseInsensitive).
	DefaultSchema("main").
	PlaceholderStyle(dialect.PlaceholderQuestion).
	LimitStyle(dialect.LimitOffset).
	WithReservedWords(
		"all", "analyse", "analyze", "and", "any", "array", "as", "asc",
		"both", "case", "cast", "check", "collate", "column", "constraint",
		"create", "default", "desc", "distinct", "do", "else", "end", "except",
		"false", "fetch", "for", "foreign", "from", "group", "having", "in",
		"intersect", "into", "lateral", "leading", "limit", "not", "null",
		"offset", "on", "only", "or", "order", "pivot", "primary", "qualify",
		"references", "returning", "select", "some", "table", "then", "to",
		"trailing", "true", "union", "unique", "unpivot", "user", "using",
		"when", "where", "window", "with",
	).
	Build()
