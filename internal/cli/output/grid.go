package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// Grid formats accepted by --format.
var GridFormats = []string{"table", "json", "csv", "md", "yaml"}

// GridFormat resolves an explicit --format value, falling back to the
// renderer's effective mode.
func (r *Renderer) GridFormat(format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	switch r.EffectiveMode() {
	case ModeJSON:
		return "json"
	case ModeMarkdown:
		return "md"
	default:
		return "table"
	}
}

// Grid writes a result set in the given format.
func (r *Renderer) Grid(rs *core.ResultSet, format string) error {
	switch r.GridFormat(format) {
	case "json":
		return writeGridJSON(r.w, rs)
	case "csv":
		return writeGridCSV(r.w, rs)
	case "yaml", "yml":
		return writeGridYAML(r.w, rs)
	case "md", "markdown":
		r.Println(r.gridTable(rs, table.StyleDefault).RenderMarkdown())
		r.Println(FormatRowCount(rs.Len()))
		return nil
	case "table":
		if rs.Len() == 0 {
			r.Println(FormatRowCount(0))
			return nil
		}
		style := table.StyleLight
		if r.isTTY {
			style = table.StyleRounded
		}
		r.Println(r.gridTable(rs, style).Render())
		r.Println(r.styles.Muted.Render(FormatRowCount(rs.Len())))
		return nil
	default:
		return fmt.Errorf("unknown format %q (%s)", format, strings.Join(GridFormats, ", "))
	}
}

func (r *Renderer) gridTable(rs *core.ResultSet, style table.Style) table.Writer {
	t := table.NewWriter()
	t.SetStyle(style)

	header := make(table.Row, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, row := range rs.Rows {
		out := make(table.Row, len(row.Values))
		for i, v := range row.Values {
			if v == adapter.NullDisplay && r.isTTY {
				out[i] = r.styles.Null.Render(v)
				continue
			}
			out[i] = v
		}
		t.AppendRow(out)
	}
	return t
}

// Table writes a simple key table with a header row.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	h := make(table.Row, len(header))
	for i, c := range header {
		h[i] = c
	}
	t.AppendHeader(h)
	for _, row := range rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = v
		}
		t.AppendRow(out)
	}

	if r.EffectiveMode() == ModeText {
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		return
	}
	r.Println(t.RenderMarkdown())
}

// nullable maps the NULL display value back to nil for structured formats.
func nullable(v string) any {
	if v == adapter.NullDisplay {
		return nil
	}
	return v
}

func writeGridJSON(w io.Writer, rs *core.ResultSet) error {
	records := make([]map[string]any, 0, rs.Len())
	for _, row := range rs.Rows {
		rec := make(map[string]any, len(rs.Columns))
		for i, c := range rs.Columns {
			rec[c] = nullable(row.Values[i])
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeGridCSV(w io.Writer, rs *core.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	for _, row := range rs.Rows {
		if err := cw.Write(row.Values); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeGridYAML keeps column order by building mapping nodes directly.
func writeGridYAML(w io.Writer, rs *core.ResultSet) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rs.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, c := range rs.Columns {
			val := &yaml.Node{Kind: yaml.ScalarNode, Value: row.Values[i]}
			if row.Values[i] == adapter.NullDisplay {
				val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			} else {
				val.Tag = "!!str"
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c}, val)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}
