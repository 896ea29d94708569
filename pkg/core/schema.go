package core

import "strings"

// ColumnKind is the coarse value kind inferred from a column's database type.
// It drives how user-entered text is converted before binding.
type ColumnKind int

const (
	// KindText covers character, binary and anything unrecognised.
	KindText ColumnKind = iota
	// KindInteger covers integral numeric types.
	KindInteger
	// KindFloat covers decimal and floating point types.
	KindFloat
	// KindBool covers boolean and bit types.
	KindBool
	// KindTime covers date and time types.
	KindTime
)

// String returns the string representation of ColumnKind.
func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "text"
	}
}

// InferKind maps a database type name to a ColumnKind.
func InferKind(dbType string) ColumnKind {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, " unsigned")

	switch t {
	case "int", "integer", "bigint", "smallint", "tinyint", "mediumint",
		"int2", "int4", "int8", "hugeint", "ubigint", "uinteger", "usmallint", "utinyint",
		"serial", "bigserial", "smallserial":
		return KindInteger
	case "decimal", "numeric", "real", "float", "float4", "float8", "double",
		"double precision", "money", "smallmoney":
		return KindFloat
	case "bit", "bool", "boolean":
		return KindBool
	case "date", "time", "datetime", "datetime2", "smalldatetime", "datetimeoffset",
		"timestamp", "timestamptz", "timestamp with time zone", "timestamp without time zone",
		"time with time zone", "time without time zone", "interval":
		return KindTime
	default:
		return KindText
	}
}

// IdentitySource records how a table's row identity columns were chosen.
type IdentitySource int

const (
	// IdentityPrimaryKey means the identity is the declared primary key.
	IdentityPrimaryKey IdentitySource = iota
	// IdentityCompositeKey means the identity is every column of a declared
	// composite primary key.
	IdentityCompositeKey
	// IdentityFirstColumn means no primary key is declared and the first
	// column is assumed to identify rows.
	IdentityFirstColumn
)

// String returns the string representation of IdentitySource.
func (s IdentitySource) String() string {
	switch s {
	case IdentityPrimaryKey:
		return "primary key"
	case IdentityCompositeKey:
		return "composite primary key"
	default:
		return "first column (no primary key)"
	}
}

// TableSchema is the runtime-reflected shape of the selected table.
// Columns are in physical order.
type TableSchema struct {
	Schema  string
	Name    string
	Columns []Column
	// Key holds the positions of the row identity columns, in key order.
	Key    []int
	Source IdentitySource
}

// KeyColumns returns the columns that together target a single row.
// An unresolved key means the first column.
func (s *TableSchema) KeyColumns() []Column {
	if len(s.Key) == 0 {
		if len(s.Columns) == 0 {
			return nil
		}
		return s.Columns[:1]
	}
	cols := make([]Column, len(s.Key))
	for i, idx := range s.Key {
		cols[i] = s.Columns[idx]
	}
	return cols
}

// KeyNames returns the names of the row identity columns.
func (s *TableSchema) KeyNames() []string {
	cols := s.KeyColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
// Matching is case-insensitive.
func (s *TableSchema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// ColumnNames returns the column names in physical order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// QualifiedName returns schema.name, or name when the schema is empty.
func (s *TableSchema) QualifiedName() string {
	if s.Schema == "" {
		return s.Name
	}
	return s.Schema + "." + s.Name
}

// Matches reports whether table names s, bare or schema-qualified,
// ignoring case.
func (s *TableSchema) Matches(table string) bool {
	return s != nil && (strings.EqualFold(s.Name, table) || strings.EqualFold(s.QualifiedName(), table))
}
