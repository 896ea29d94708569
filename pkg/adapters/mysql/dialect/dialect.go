// Package dialect provides the MySQL SQL dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

func init() {
	dialect.Register(MySQL)
}

// MySQL is the MySQL dialect configuration.
// MySQL has no schema separate from the database, so DefaultSchema is empty
// and the adapter substitutes the connected database name.
var MySQL = dialect.NewDialect("mysql").
	Identifiers("`", "`", "``", dialect.NormCaseSensitive).
	PlaceholderStyle(dialect.PlaceholderQuestion).
	LimitStyle(dialect.LimitOffset).
	DefaultValuesInsert("() VALUES ()").
	WithReservedWords(
		"add", "all", "alter", "and", "as", "asc", "between", "by", "case",
		"change", "check", "column", "condition", "constraint", "create",
		"cross", "database", "default", "delete", "desc", "distinct", "drop",
		"else", "exists", "for", "foreign", "from", "group", "having", "in",
		"index", "inner", "insert", "interval", "into", "is", "join", "key",
		"keys", "left", "like", "limit", "lock", "not", "null", "on", "or",
		"order", "outer", "primary", "range", "rank", "references", "rename",
		"replace", "right", "rows", "select", "set", "show", "table", "then",
		"to", "union", "unique", "update", "usage", "using", "values", "when",
		"where", "window", "with",
	).
	Build()
