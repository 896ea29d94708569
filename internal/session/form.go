package session

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leaptable/pkg/core"
)

// FormField is one input of the insert form, generated from a column.
type FormField struct {
	Name     string
	Label    string
	Kind     core.ColumnKind
	Type     string
	Nullable bool
	Key      bool
}

var titleCaser = cases.Title(language.English)

// Label turns a column name into a form label: underscores become spaces and
// words are title-cased, so "created_at" reads "Created At".
func Label(column string) string {
	return titleCaser.String(strings.ReplaceAll(column, "_", " "))
}

// Form returns the insert form fields for s, one per column in order.
func Form(s *core.TableSchema) []FormField {
	if s == nil {
		return nil
	}
	fields := make([]FormField, len(s.Columns))
	for i, c := range s.Columns {
		fields[i] = FormField{
			Name:     c.Name,
			Label:    Label(c.Name),
			Kind:     c.Kind,
			Type:     c.Type,
			Nullable: c.Nullable,
			Key:      c.PrimaryKey,
		}
	}
	return fields
}

// FormValues converts submitted form text into insert values. Blank fields
// are left out so the database applies its defaults.
func FormValues(fields map[string]string) map[string]any {
	values := make(map[string]any, len(fields))
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			continue
		}
		values[name] = v
	}
	return values
}
