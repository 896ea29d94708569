package session

import (
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// State is the controller's position in the browse/edit cycle.
type State int

const (
	// Disconnected is the initial state.
	Disconnected State = iota
	// Connected means the database answered and tables are listed.
	Connected
	// TableSelected means a TableSchema is loaded and no results are shown.
	TableSelected
	// ResultsDisplayed means the grid holds the result of the last search.
	ResultsDisplayed
	// FormOpen means an insert form is being filled in.
	FormOpen
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case TableSelected:
		return "table selected"
	case ResultsDisplayed:
		return "results displayed"
	case FormOpen:
		return "form open"
	default:
		return "disconnected"
	}
}

// HasTable reports whether a table schema is loaded in this state.
func (s State) HasTable() bool {
	return s == TableSelected || s == ResultsDisplayed || s == FormOpen
}

// View is a point-in-time snapshot of the controller for renderers.
// Schema and Results are shared and must be treated as read-only.
type View struct {
	State   State
	Tables  []string
	Schema  *core.TableSchema
	Spec    core.QuerySpec
	Results *core.ResultSet
	// Total is the number of rows matching the filter, ignoring the limit.
	// It is -1 when unknown.
	Total int64
	// Busy names the operation in flight, or is empty.
	Busy string
	// Err is the failure of the last operation, cleared by the next success.
	Err error
}

// Pages returns the number of pages for the current limit, at least 1.
func (v View) Pages() int {
	if v.Spec.Limit <= 0 || v.Total <= 0 {
		return 1
	}
	return int((v.Total + int64(v.Spec.Limit) - 1) / int64(v.Spec.Limit))
}

// DefaultSpec is the QuerySpec a freshly selected table starts with:
// sorted ascending by its first column and limited to the smallest page size.
func DefaultSpec(s *core.TableSchema) core.QuerySpec {
	spec := core.QuerySpec{SortDirection: core.SortAsc, Limit: core.Limits[0], Page: 1}
	if s != nil && len(s.Columns) > 0 {
		spec.SortColumn = s.Columns[0].Name
	}
	return spec
}
