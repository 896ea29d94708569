// Package querybuilder turns a TableSchema and user input into parameterised
// SELECT, INSERT, UPDATE and DELETE statements for one dialect.
//
// Identifiers are always quoted with the dialect's quote characters and
// values are always bound as arguments, never inlined. Row limits are the one
// exception: they are validated integers rendered into the statement text.
//
// Basic usage:
//
//	b := querybuilder.New(adp.Dialect())
//	stmt, err := b.Select(schema, core.QuerySpec{SortColumn: "name", Limit: 10})
//	rows, err := adp.Query(ctx, stmt.SQL, stmt.Args...)
package querybuilder
