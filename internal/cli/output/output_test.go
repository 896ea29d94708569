package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/pkg/core"
)

func sampleResults() *core.ResultSet {
	return &core.ResultSet{
		Columns: []string{"id", "name", "email"},
		Rows: []core.Row{
			{Values: []string{"1", "Ann", "ann@example.com"}},
			{Values: []string{"2", "Bo, Jr.", "NULL"}},
		},
	}
}

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewRenderer(&out, &errOut, mode), &out, &errOut
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{ModeAuto, ModeMarkdown},
		{"", ModeMarkdown},
		{ModeText, ModeText},
		{ModeJSON, ModeJSON},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode)
			assert.False(t, r.IsTTY())
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_Messages(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)
	r.Success("done")
	r.Warning("careful")
	r.Error("broken")
	r.StatusLine("database", "success", "sqlite")

	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, out.String(), "✓ database sqlite")
	assert.Contains(t, errOut.String(), "! careful")
	assert.Contains(t, errOut.String(), "✗ broken")
	assert.NotContains(t, out.String(), "\x1b[", "no colour codes off a TTY")
}

func TestRenderer_Header(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown)
	r.Header(2, "Columns")
	assert.Equal(t, "## Columns\n", out.String())
}

func TestRenderer_GridFormat(t *testing.T) {
	r, _, _ := newTestRenderer(ModeJSON)
	assert.Equal(t, "json", r.GridFormat(""))
	assert.Equal(t, "csv", r.GridFormat("CSV"))

	r, _, _ = newTestRenderer(ModeText)
	assert.Equal(t, "table", r.GridFormat(""))
}

func TestRenderer_Grid(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText)
		require.NoError(t, r.Grid(sampleResults(), "table"))
		assert.Contains(t, out.String(), "ann@example.com")
		assert.Contains(t, out.String(), "(2 rows)")
	})

	t.Run("empty table", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText)
		require.NoError(t, r.Grid(&core.ResultSet{Columns: []string{"id"}}, "table"))
		assert.Equal(t, "(0 rows)\n", out.String())
	})

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown)
		require.NoError(t, r.Grid(sampleResults(), "md"))
		assert.Contains(t, out.String(), "| id | name | email |")
		assert.Contains(t, out.String(), "| 1 | Ann | ann@example.com |")
	})

	t.Run("json maps NULL to null", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText)
		require.NoError(t, r.Grid(sampleResults(), "json"))
		var got []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Ann", got[0]["name"])
		assert.Nil(t, got[1]["email"])
	})

	t.Run("csv quotes commas", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText)
		require.NoError(t, r.Grid(sampleResults(), "csv"))
		assert.Equal(t, "id,name,email\n1,Ann,ann@example.com\n2,\"Bo, Jr.\",NULL\n", out.String())
	})

	t.Run("yaml keeps column order", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText)
		require.NoError(t, r.Grid(sampleResults(), "yaml"))
		assert.Equal(t, `- id: "1"
  name: Ann
  email: ann@example.com
- id: "2"
  name: Bo, Jr.
  email: null
`, out.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		r, _, _ := newTestRenderer(ModeText)
		assert.Error(t, r.Grid(sampleResults(), "xml"))
	})
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Sub", FormatHeader(3, "Sub"))
	assert.Equal(t, "- **Type**: sqlite", FormatKeyValue("Type", "sqlite"))
	assert.Equal(t, "(1 row)", FormatRowCount(1))
	assert.Equal(t, "(3 rows)", FormatRowCount(3))
}
