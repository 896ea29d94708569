// Package dialect provides the SQL Server (T-SQL) dialect definition.
// This package is lightweight and has no database driver dependencies.
package dialect

import (
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

func init() {
	dialect.Register(SQLServer)
}

// SQLServer is the SQL Server dialect configuration.
// Identifiers are bracket-quoted, parameters are @p1..@pN and row limits
// use TOP or OFFSET/FETCH.
var SQLServer = dialect.NewDialect("sqlserver").
	Identifiers("[", "]", "]]", dialect.NormCaseInsensitive).
	DefaultSchema("dbo").
	PlaceholderStyle(dialect.PlaceholderAtP).
	LimitStyle(dialect.LimitTop).
	WithReservedWords(
		"add", "all", "alter", "and", "any", "as", "asc", "authorization",
		"backup", "begin", "between", "break", "browse", "bulk", "by",
		"cascade", "case", "check", "checkpoint", "close", "clustered",
		"coalesce", "collate", "column", "commit", "compute", "constraint",
		"contains", "continue", "convert", "create", "cross", "current",
		"cursor", "database", "dbcc", "deallocate", "declare", "default",
		"delete", "deny", "desc", "distinct", "distributed", "double", "drop",
		"else", "end", "escape", "except", "exec", "execute", "exists", "exit",
		"external", "fetch", "file", "fillfactor", "for", "foreign", "from",
		"full", "function", "goto", "grant", "group", "having", "holdlock",
		"identity", "if", "in", "index", "inner", "insert", "intersect", "into",
		"is", "join", "key", "kill", "left", "like", "merge", "national",
		"nocheck", "nonclustered", "not", "null", "nullif", "of", "off",
		"offsets", "on", "open", "option", "or", "order", "outer", "over",
		"percent", "pivot", "plan", "primary", "print", "proc", "procedure",
		"public", "raiserror", "read", "references", "restore", "restrict",
		"return", "revert", "revoke", "right", "rollback", "rowcount", "rule",
		"save", "schema", "select", "session_user", "set", "some", "statistics",
		"system_user", "table", "then", "to", "top", "tran", "transaction",
		"trigger", "truncate", "union", "unique", "unpivot", "update", "use",
		"user", "values", "varying", "view", "waitfor", "when", "where",
		"while", "with",
	).
	Build()
