// Package browser is the web table browser: one page over the shared
// session controller, updated through datastar SSE patches.
package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// Signals is the page state sent by the browser with every action.
// Table and Key name the row the page showed, so an edit never lands on
// another table selected from a different tab.
type Signals struct {
	Table        string            `json:"table"`
	FilterColumn string            `json:"filterColumn"`
	FilterValue  string            `json:"filterValue"`
	SortColumn   string            `json:"sortColumn"`
	SortDir      string            `json:"sortDir"`
	Limit        string            `json:"limit"`
	Page         int               `json:"page"`
	Row          int               `json:"row"`
	Col          int               `json:"col"`
	Key          []any             `json:"key"`
	EditValue    string            `json:"editValue"`
	ShowForm     bool              `json:"showForm"`
	Form         map[string]string `json:"form"`
}

// Spec builds the QuerySpec the signals describe.
func (s Signals) Spec() (core.QuerySpec, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(s.Limit))
	if err != nil {
		return core.QuerySpec{}, core.NewQueryError("search", fmt.Sprintf("row limit %q is not a number", s.Limit), nil)
	}
	spec := core.QuerySpec{
		FilterColumn:  s.FilterColumn,
		FilterValue:   s.FilterValue,
		SortColumn:    s.SortColumn,
		SortDirection: core.ParseSortDirection(s.SortDir),
		Limit:         limit,
		Page:          max(s.Page, 1),
	}
	return spec, spec.Validate()
}

// Column returns the name of the selected column of s, or "" when Col is
// out of range.
func (s Signals) Column(schema *core.TableSchema) string {
	if schema == nil || s.Col < 0 || s.Col >= len(schema.Columns) {
		return ""
	}
	return schema.Columns[s.Col].Name
}

// rowKey renders a row's identity values for the page. They come back as
// text and are coerced by column kind; NULL stays null.
func rowKey(key []any) []any {
	out := make([]any, len(key))
	for i, v := range key {
		if v != nil {
			out[i] = adapter.FormatValue(v)
		}
	}
	return out
}

// formKey names the signal holding field i of the add form. Positions are
// used instead of column names because attribute names are lower-cased.
func formKey(i int) string {
	return "c" + strconv.Itoa(i)
}

// FormInput maps the add-form signals back to column values. Blank fields
// are dropped so the database defaults apply.
func (s Signals) FormInput(fields []session.FormField) map[string]any {
	raw := make(map[string]string, len(fields))
	for i, f := range fields {
		raw[f.Name] = s.Form[formKey(i)]
	}
	return session.FormValues(raw)
}

// signalsFor is the initial page state for a view.
func signalsFor(v session.View, fields []session.FormField) Signals {
	s := Signals{
		FilterColumn: v.Spec.FilterColumn,
		FilterValue:  v.Spec.FilterValue,
		SortColumn:   v.Spec.SortColumn,
		SortDir:      string(v.Spec.Direction()),
		Limit:        strconv.Itoa(v.Spec.Limit),
		Page:         max(v.Spec.Page, 1),
		Row:          -1,
		Col:          -1,
		Key:          []any{},
		Form:         make(map[string]string, len(fields)),
	}
	if v.Schema != nil {
		s.Table = v.Schema.Name
	}
	for i := range fields {
		s.Form[formKey(i)] = ""
	}
	return s
}

// AppData is everything the app container renders.
type AppData struct {
	View   session.View
	Fields []session.FormField
	// Err is a request failure the controller never saw, such as bad
	// signals. Controller failures are read from View.Err.
	Err error
}

// Error returns the failure to show in the banner, if any.
func (d AppData) Error() error {
	if d.Err != nil {
		return d.Err
	}
	return d.View.Err
}
