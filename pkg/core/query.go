package core

import (
	"fmt"
	"strings"
	"time"
)

// SortDirection orders results by the sort column.
type SortDirection string

const (
	// SortAsc sorts ascending. It is the default.
	SortAsc SortDirection = "ASC"
	// SortDesc sorts descending.
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection accepts asc/desc in any case. Anything else is ascending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// NoLimit disables the row limit.
const NoLimit = 0

// Limits are the row limits offered to users, in display order.
var Limits = []int{10, 25, 50, 100}

// IsValidLimit reports whether n is an accepted row limit. Zero means no limit.
func IsValidLimit(n int) bool {
	if n == NoLimit {
		return true
	}
	for _, l := range Limits {
		if l == n {
			return true
		}
	}
	return false
}

// QuerySpec holds the user-chosen read parameters for the selected table.
type QuerySpec struct {
	FilterColumn  string        `json:"filter_column,omitempty"`
	FilterValue   string        `json:"filter_value,omitempty"`
	SortColumn    string        `json:"sort_column,omitempty"`
	SortDirection SortDirection `json:"sort_direction,omitempty"`
	Limit         int           `json:"limit"`
	Page          int           `json:"page,omitempty"`
}

// HasFilter reports whether the equality filter applies.
// Both the column and the value must be set.
func (q QuerySpec) HasFilter() bool {
	return q.FilterColumn != "" && q.FilterValue != ""
}

// HasSort reports whether an ORDER BY applies.
func (q QuerySpec) HasSort() bool {
	return q.SortColumn != ""
}

// Direction returns the sort direction, defaulting to ascending.
func (q QuerySpec) Direction() SortDirection {
	if q.SortDirection == SortDesc {
		return SortDesc
	}
	return SortAsc
}

// Offset returns the row offset for the current page.
// Paging only applies when a limit is set.
func (q QuerySpec) Offset() int {
	if q.Limit == NoLimit || q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Validate checks the limit and page values.
func (q QuerySpec) Validate() error {
	if !IsValidLimit(q.Limit) {
		return NewQueryError("validate", fmt.Sprintf("row limit %d is not one of %v", q.Limit, Limits), nil)
	}
	if q.Page < 0 {
		return NewQueryError("validate", fmt.Sprintf("page %d must not be negative", q.Page), nil)
	}
	return nil
}

// Row is one result row. Values holds display strings in column order.
// Key holds the raw identity values captured when the row was read, one
// per key column.
type Row struct {
	Values []string
	Key    []any
}

// ResultSet is the grid contents for one search.
type ResultSet struct {
	Table    string
	Columns  []string
	Rows     []Row
	Spec     QuerySpec
	Duration time.Duration
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Cell returns the display value at row, col.
func (r *ResultSet) Cell(row, col int) (string, error) {
	if row < 0 || row >= r.Len() {
		return "", fmt.Errorf("row %d out of range (%d rows)", row, r.Len())
	}
	if col < 0 || col >= len(r.Rows[row].Values) {
		return "", fmt.Errorf("column %d out of range (%d columns)", col, len(r.Columns))
	}
	return r.Rows[row].Values[col], nil
}
