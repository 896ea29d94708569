package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/internal/ui/features/common"
	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// BrowserPage is the full document for the browser.
func BrowserPage(data AppData) templ.Component {
	title := "leaptable"
	if s := data.View.Schema; s != nil {
		title = s.QualifiedName()
	}
	return common.Page(title, "/api/updates", App(data))
}

// App is the #app container patched by every SSE response.
func App(data AppData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		v := data.View
		signals, err := json.Marshal(signalsFor(v, data.Fields))
		if err != nil {
			return err
		}

		h := common.NewHTML(w)
		h.Open("div", "").Attr("id", "app").Attr("data-signals", string(signals)).End()

		h.Open("header", "bar").End()
		h.Raw("<h1>leaptable</h1>")
		tableSelect(h, v)
		h.Close("header")

		if err := data.Error(); err != nil {
			h.Open("div", "banner error").Attr("id", "error").Attr("role", "alert").End().
				Text(err.Error()).Close("div")
		}

		if v.Schema != nil {
			controls(h, v)
			grid(h, v)
			pager(h, v)
			editBar(h)
			addForm(h, data.Fields)
		} else {
			h.Open("p", "muted").End().Text("Choose a table to browse.").Close("p")
		}

		h.Close("div")
		return h.Err()
	})
}

func option(h *common.HTML, value, label string, selected bool) {
	h.Open("option", "").Attr("value", value).AttrIf(selected, "selected", "selected").End().
		Text(label).Close("option")
}

func tableSelect(h *common.HTML, v session.View) {
	current := ""
	if v.Schema != nil {
		current = v.Schema.Name
	}
	h.Raw("<label>Table ")
	h.Open("select", "").Attr("data-bind:table", "").Attr("data-on:change", "@post('/api/table')").End()
	if current == "" {
		option(h, "", "choose a table", true)
	}
	for _, t := range v.Tables {
		option(h, t, t, t == current)
	}
	h.Raw("</select></label>")
}

func controls(h *common.HTML, v session.View) {
	cols := v.Schema.ColumnNames()

	h.Open("section", "controls").End()

	h.Raw("<label>Filter ")
	h.Open("select", "").Attr("data-bind:filter-column", "").End()
	option(h, "", "none", v.Spec.FilterColumn == "")
	for _, c := range cols {
		option(h, c, c, c == v.Spec.FilterColumn)
	}
	h.Raw("</select></label>")
	h.Raw("<label>= ")
	h.Open("input", "").Attr("type", "text").Attr("data-bind:filter-value", "").
		Attr("value", v.Spec.FilterValue).Attr("data-on:keydown", "evt.key === 'Enter' && ($page = 1, @post('/api/search'))").End()
	h.Raw("</label>")

	h.Raw("<label>Sort ")
	h.Open("select", "").Attr("data-bind:sort-column", "").End()
	option(h, "", "none", v.Spec.SortColumn == "")
	for _, c := range cols {
		option(h, c, c, c == v.Spec.SortColumn)
	}
	h.Raw("</select>")
	h.Open("select", "").Attr("data-bind:sort-dir", "").End()
	for _, d := range []core.SortDirection{core.SortAsc, core.SortDesc} {
		option(h, string(d), string(d), d == v.Spec.Direction())
	}
	h.Raw("</select></label>")

	h.Raw("<label>Rows ")
	h.Open("select", "").Attr("data-bind:limit", "").End()
	for _, l := range core.Limits {
		option(h, strconv.Itoa(l), strconv.Itoa(l), l == v.Spec.Limit)
	}
	option(h, strconv.Itoa(core.NoLimit), "all", v.Spec.Limit == core.NoLimit)
	h.Raw("</select></label>")

	h.Open("button", "primary").Attr("data-on:click", "$page = 1; @post('/api/search')").End().Text("Select").Close("button")
	h.Open("button", "").Attr("data-on:click", "@post('/api/refresh')").End().Text("Refresh").Close("button")

	h.Close("section")
}

func grid(h *common.HTML, v session.View) {
	h.Open("table", "grid").Attr("id", "grid").End()
	h.Raw("<thead><tr><th>#</th>")
	for _, c := range v.Schema.Columns {
		h.Open("th", "").Attr("title", c.Type).End().Text(c.Name).Close("th")
	}
	h.Raw("</tr></thead><tbody>")

	if v.Results != nil {
		for i, row := range v.Results.Rows {
			idx := strconv.Itoa(i)
			key, err := json.Marshal(rowKey(row.Key))
			if err != nil {
				key = []byte("[]")
			}
			h.Open("tr", "").Attr("data-class:selected", "$row == "+idx).End()
			h.Open("td", "rownum").End().Text(strconv.Itoa(i + 1)).Close("td")
			for j, val := range row.Values {
				class := ""
				if val == adapter.NullDisplay {
					class = "null"
				}
				h.Open("td", class).
					Attr("data-value", val).
					Attr("data-on:click", fmt.Sprintf("$row = %d; $col = %d; $key = %s; $editValue = el.dataset.value", i, j, key)).
					End().Text(val).Close("td")
			}
			h.Close("tr")
		}
	}
	h.Raw("</tbody></table>")
}

func pager(h *common.HTML, v session.View) {
	page, pages := max(v.Spec.Page, 1), v.Pages()

	h.Open("footer", "pager").End()
	h.Open("button", "").AttrIf(page <= 1, "disabled", "disabled").
		Attr("data-on:click", fmt.Sprintf("$page = %d; @post('/api/search')", page-1)).End().Text("Prev").Close("button")

	h.Open("span", "muted").Attr("id", "summary").End()
	if v.Spec.Limit != core.NoLimit {
		h.Text(fmt.Sprintf("page %d of %d, ", page, pages))
	}
	if v.Total >= 0 {
		h.Text(fmt.Sprintf("%d matching rows", v.Total))
	} else {
		h.Text(fmt.Sprintf("%d rows shown", v.Results.Len()))
	}
	h.Close("span")

	h.Open("button", "").AttrIf(page >= pages, "disabled", "disabled").
		Attr("data-on:click", fmt.Sprintf("$page = %d; @post('/api/search')", page+1)).End().Text("Next").Close("button")
	h.Close("footer")
}

func editBar(h *common.HTML) {
	h.Open("section", "edit").Attr("data-show", "$row >= 0").End()
	h.Raw(`<span>Row <b data-text="$row + 1"></b></span>`)
	h.Open("input", "").Attr("type", "text").Attr("data-bind:edit-value", "").End()
	h.Open("button", "primary").Attr("data-on:click", "@post('/api/update')").End().Text("Update").Close("button")
	h.Open("button", "").Attr("data-on:click", "@post('/api/update?null=1')").End().Text("Set NULL").Close("button")
	h.Open("button", "danger").
		Attr("data-on:click", "confirm('Delete row ' + ($row + 1) + '?') && @post('/api/delete')").
		End().Text("Delete Record").Close("button")
	h.Close("section")
}

func addForm(h *common.HTML, fields []session.FormField) {
	h.Open("button", "").Attr("data-on:click", "$showForm = !$showForm").End().Text("Add Record").Close("button")

	h.Open("div", "add").Attr("id", "add-form").Attr("data-show", "$showForm").End()
	for i, f := range fields {
		id := "field-" + formKey(i)
		placeholder := f.Type
		if f.Nullable {
			placeholder += ", blank for default"
		}
		h.Open("div", "field").End()
		h.Open("label", "").Attr("for", id).End().Text(f.Label).Close("label")
		h.Open("input", "").Attr("type", "text").Attr("id", id).
			Attr("data-bind:form."+formKey(i), "").Attr("placeholder", placeholder).End()
		h.Close("div")
	}
	h.Open("button", "primary").Attr("data-on:click", "@post('/api/insert')").End().Text("Submit").Close("button")
	h.Close("div")
}
