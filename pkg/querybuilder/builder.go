package querybuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

// Statement is SQL text plus its bound arguments in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

// String returns the SQL text.
func (s Statement) String() string {
	return s.SQL
}

// Builder renders statements for a single dialect.
type Builder struct {
	d *dialect.Dialect
}

// New creates a Builder for the given dialect.
func New(d *dialect.Dialect) *Builder {
	return &Builder{d: d}
}

// Dialect returns the dialect statements are rendered for.
func (b *Builder) Dialect() *dialect.Dialect {
	return b.d
}

// params hands out placeholders in order and collects their arguments.
type params struct {
	d    *dialect.Dialect
	args []any
}

func (p *params) add(v any) string {
	p.args = append(p.args, v)
	return p.d.FormatPlaceholder(len(p.args))
}

func (b *Builder) table(s *core.TableSchema) string {
	return b.d.QualifiedName(s.Schema, s.Name)
}

func (b *Builder) column(s *core.TableSchema, op, name string) (core.Column, error) {
	idx := s.ColumnIndex(name)
	if idx < 0 {
		return core.Column{}, core.NewSchemaError(op,
			fmt.Sprintf("column %q does not exist in %s", name, s.QualifiedName()), nil)
	}
	return s.Columns[idx], nil
}

// Select builds SELECT * FROM table [WHERE col = ?] [ORDER BY col dir] with the
// dialect's limit clause. The filter applies only when both its column and
// value are set. A zero limit emits no limit clause and disables paging.
func (b *Builder) Select(s *core.TableSchema, spec core.QuerySpec) (Statement, error) {
	const op = "build select"
	if err := spec.Validate(); err != nil {
		return Statement{}, err
	}

	p := &params{d: b.d}
	where, err := b.where(s, op, spec, p)
	if err != nil {
		return Statement{}, err
	}

	orderBy := ""
	if spec.HasSort() {
		col, err := b.column(s, op, spec.SortColumn)
		if err != nil {
			return Statement{}, err
		}
		orderBy = " ORDER BY " + b.d.QuoteIdentifier(col.Name) + " " + string(spec.Direction())
	}

	var sb strings.Builder
	limit, offset := spec.Limit, spec.Offset()

	switch b.d.Limit {
	case core.LimitTop:
		sb.WriteString("SELECT ")
		if limit > 0 && offset == 0 {
			sb.WriteString("TOP (" + strconv.Itoa(limit) + ") ")
		}
		sb.WriteString("* FROM " + b.table(s) + where + orderBy)
		if limit > 0 && offset > 0 {
			// OFFSET/FETCH is only valid after an ORDER BY.
			if orderBy == "" {
				sb.WriteString(" ORDER BY (SELECT NULL)")
			}
			fmt.Fprintf(&sb, " OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", offset, limit)
		}
	default:
		sb.WriteString("SELECT * FROM " + b.table(s) + where + orderBy)
		if limit > 0 {
			sb.WriteString(" LIMIT " + strconv.Itoa(limit))
			if offset > 0 {
				sb.WriteString(" OFFSET " + strconv.Itoa(offset))
			}
		}
	}

	return Statement{SQL: sb.String(), Args: p.args}, nil
}

// Count builds SELECT COUNT(*) with the same filter as Select, ignoring sort
// and limit.
func (b *Builder) Count(s *core.TableSchema, spec core.QuerySpec) (Statement, error) {
	p := &params{d: b.d}
	where, err := b.where(s, "build count", spec, p)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: "SELECT COUNT(*) FROM " + b.table(s) + where, Args: p.args}, nil
}

func (b *Builder) where(s *core.TableSchema, op string, spec core.QuerySpec, p *params) (string, error) {
	if !spec.HasFilter() {
		return "", nil
	}
	col, err := b.column(s, op, spec.FilterColumn)
	if err != nil {
		return "", err
	}
	return " WHERE " + b.d.QuoteIdentifier(col.Name) + " = " + p.add(Coerce(col, spec.FilterValue)), nil
}

// Update builds an UPDATE of one column on the row whose identity columns
// equal key, one value per key column. key should be the values captured
// when the row was read. String values are coerced by column kind; nil
// writes NULL.
func (b *Builder) Update(s *core.TableSchema, key []any, column string, value any) (Statement, error) {
	const op = "build update"
	col, err := b.column(s, op, column)
	if err != nil {
		return Statement{}, err
	}

	p := &params{d: b.d}
	set := b.d.QuoteIdentifier(col.Name) + " = " + p.add(coerceAny(col, value))
	cond, err := b.keyCondition(s, op, key, p)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		SQL:  "UPDATE " + b.table(s) + " SET " + set + " WHERE " + cond,
		Args: p.args,
	}, nil
}

// Insert builds an INSERT of the supplied columns, in schema order.
// Columns not in values are left to the database defaults. An empty map
// produces the dialect's default-values insert.
func (b *Builder) Insert(s *core.TableSchema, values map[string]any) (Statement, error) {
	const op = "build insert"
	for name := range values {
		if _, err := b.column(s, op, name); err != nil {
			return Statement{}, err
		}
	}

	if len(values) == 0 {
		return Statement{SQL: "INSERT INTO " + b.table(s) + " " + b.d.DefaultValuesInsert}, nil
	}

	p := &params{d: b.d}
	var cols, phs []string
	for _, col := range s.Columns {
		v, ok := lookup(values, col.Name)
		if !ok {
			continue
		}
		cols = append(cols, b.d.QuoteIdentifier(col.Name))
		phs = append(phs, p.add(coerceAny(col, v)))
	}

	return Statement{
		SQL:  "INSERT INTO " + b.table(s) + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(phs, ", ") + ")",
		Args: p.args,
	}, nil
}

// Delete builds a DELETE of the row whose identity columns equal key.
func (b *Builder) Delete(s *core.TableSchema, key []any) (Statement, error) {
	const op = "build delete"
	p := &params{d: b.d}
	cond, err := b.keyCondition(s, op, key, p)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: "DELETE FROM " + b.table(s) + " WHERE " + cond, Args: p.args}, nil
}

// keyCondition matches every identity column against its key value.
// The key must have one non-nil value per key column.
func (b *Builder) keyCondition(s *core.TableSchema, op string, key []any, p *params) (string, error) {
	cols := s.KeyColumns()
	if len(key) == 0 {
		return "", core.NewQueryError(op, "row has no identity value", nil)
	}
	if len(key) != len(cols) {
		return "", core.NewQueryError(op,
			fmt.Sprintf("identity of %s needs %d values (%s), got %d",
				s.QualifiedName(), len(cols), strings.Join(s.KeyNames(), ", "), len(key)), nil)
	}

	conds := make([]string, len(cols))
	for i, col := range cols {
		if key[i] == nil {
			return "", core.NewQueryError(op, fmt.Sprintf("identity column %s is NULL", col.Name), nil)
		}
		conds[i] = b.d.QuoteIdentifier(col.Name) + " = " + p.add(coerceAny(col, key[i]))
	}
	return strings.Join(conds, " AND "), nil
}

// lookup finds a value by column name, exact match first, then case-insensitively.
func lookup(values map[string]any, name string) (any, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	for k, v := range values {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
