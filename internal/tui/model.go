// Package tui is the terminal renderer: a bubbletea program over a
// session.Controller.
//
// Every database call runs as a tea.Cmd off the render loop with a spinner
// shown; esc cancels the call in flight through its context.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

type mode int

const (
	modeBrowse mode = iota
	modeTables
	modeFilter
	modeForm
	modeEdit
	modeConfirm
)

const maxColumnWidth = 32

// opDoneMsg reports a finished controller operation.
type opDoneMsg struct {
	op       string
	affected int64
	err      error
}

type formInput struct {
	field session.FormField
	input textinput.Model
}

// Model is the bubbletea model for browsing one session.
type Model struct {
	ctrl   *session.Controller
	parent context.Context
	cancel context.CancelFunc

	keys    keyMap
	help    help.Model
	grid    table.Model
	tables  table.Model
	spinner spinner.Model

	mode   mode
	col    int
	busy   string
	status string
	err    error

	filter    textinput.Model
	edit      textinput.Model
	editRow   int
	editCol   int
	form      []formInput
	formFocus int

	width    int
	height   int
	quitting bool
}

// New creates the model. ctx bounds every database call the model starts.
func New(ctx context.Context, ctrl *session.Controller) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	grid := table.New(table.WithFocused(true), table.WithHeight(12))
	grid.SetStyles(tableStyles())

	tables := table.New(
		table.WithColumns([]table.Column{{Title: "table", Width: 40}}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	tables.SetStyles(tableStyles())

	m := Model{
		ctrl:    ctrl,
		parent:  ctx,
		keys:    defaultKeys(),
		help:    help.New(),
		grid:    grid,
		tables:  tables,
		spinner: sp,
		filter:  newInput(),
		edit:    newInput(),
	}
	m.sync()
	return m
}

// newInput returns a text input with a steady cursor.
func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 4096
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Run starts the program on the terminal and blocks until it exits.
func Run(ctx context.Context, ctrl *session.Controller) error {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		h := max(3, msg.Height-9)
		m.grid.SetHeight(h)
		m.tables.SetHeight(h)
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		return m.finish(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.busy != "" {
			if key.Matches(msg, m.keys.Cancel) && m.cancel != nil {
				m.cancel()
				m.status = "cancelling " + m.busy
			}
			return m, nil
		}

		switch m.mode {
		case modeTables:
			return m.updateTables(msg)
		case modeFilter:
			return m.updateFilter(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.quitting = true
	return m, tea.Quit
}

// start runs fn as a command off the render loop.
func (m *Model) start(op string, fn func(ctx context.Context) (int64, error)) tea.Cmd {
	ctx, cancel := context.WithCancel(m.parent)
	m.cancel = cancel
	m.busy = op
	m.err = nil
	m.status = ""

	run := func() tea.Msg {
		defer cancel()
		n, err := fn(ctx)
		return opDoneMsg{op: op, affected: n, err: err}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) search(spec core.QuerySpec) tea.Cmd {
	if err := spec.Validate(); err != nil {
		m.err = err
		return nil
	}
	return m.start("search", func(ctx context.Context) (int64, error) {
		return 0, m.ctrl.Search(ctx, spec)
	})
}

func (m Model) finish(msg opDoneMsg) Model {
	m.busy = ""
	m.cancel = nil

	if msg.err != nil {
		m.err = msg.err
		// A failed insert keeps the form open for correction.
		if msg.op != "insert" {
			m.mode = modeBrowse
		}
		m.sync()
		return m
	}

	switch msg.op {
	case "insert", "update", "delete":
		m.status = fmt.Sprintf("%s: %d row(s) affected", msg.op, msg.affected)
	case "select table":
		m.col = 0
	}
	m.mode = modeBrowse
	m.sync()
	return m
}

// sync rebuilds the grid from the controller's current view.
func (m *Model) sync() {
	v := m.ctrl.View()

	trows := make([]table.Row, len(v.Tables))
	for i, t := range v.Tables {
		trows[i] = table.Row{t}
	}
	m.tables.SetRows(trows)

	if v.Schema == nil {
		m.grid.SetRows(nil)
		m.grid.SetColumns(nil)
		return
	}

	names := v.Schema.ColumnNames()
	if m.col >= len(names) {
		m.col = len(names) - 1
	}
	if m.col < 0 {
		m.col = 0
	}

	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = lipgloss.Width(n) + 2
	}
	rows := make([]table.Row, v.Results.Len())
	if v.Results != nil {
		for i, r := range v.Results.Rows {
			rows[i] = table.Row(r.Values)
			for j, val := range r.Values {
				if j < len(widths) {
					widths[j] = max(widths[j], lipgloss.Width(val))
				}
			}
		}
	}

	cols := make([]table.Column, len(names))
	for i, n := range names {
		title := n
		if i == m.col {
			title = "▸ " + n
		}
		cols[i] = table.Column{Title: title, Width: min(max(widths[i], 4), maxColumnWidth)}
	}

	cursor := m.grid.Cursor()
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	m.grid.SetCursor(max(cursor, 0))
}

func (m Model) selectedColumn() (core.Column, bool) {
	s := m.ctrl.View().Schema
	if s == nil || m.col < 0 || m.col >= len(s.Columns) {
		return core.Column{}, false
	}
	return s.Columns[m.col], true
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.ctrl.View()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
			m.sync()
		}

	case key.Matches(msg, m.keys.Right):
		if v.Schema != nil && m.col < len(v.Schema.Columns)-1 {
			m.col++
			m.sync()
		}

	case key.Matches(msg, m.keys.Tables):
		m.mode = modeTables

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Refresh):
		if v.State.HasTable() {
			return m, m.start("refresh", func(ctx context.Context) (int64, error) {
				return 0, m.ctrl.Refresh(ctx)
			})
		}

	case key.Matches(msg, m.keys.Filter):
		col, ok := m.selectedColumn()
		if !ok {
			return m, nil
		}
		m.filter.SetValue("")
		if strings.EqualFold(v.Spec.FilterColumn, col.Name) {
			m.filter.SetValue(v.Spec.FilterValue)
		}
		m.filter.CursorEnd()
		_ = m.filter.Focus()
		m.mode = modeFilter

	case key.Matches(msg, m.keys.Sort):
		col, ok := m.selectedColumn()
		if !ok {
			return m, nil
		}
		spec := v.Spec
		if strings.EqualFold(spec.SortColumn, col.Name) && spec.Direction() == core.SortAsc {
			spec.SortDirection = core.SortDesc
		} else {
			spec.SortColumn, spec.SortDirection = col.Name, core.SortAsc
		}
		return m, m.search(spec)

	case key.Matches(msg, m.keys.Limit):
		if v.Schema == nil {
			return m, nil
		}
		spec := v.Spec
		spec.Limit, spec.Page = nextLimit(spec.Limit), 1
		return m, m.search(spec)

	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		if v.Schema == nil {
			return m, nil
		}
		spec := v.Spec
		page := max(spec.Page, 1)
		if key.Matches(msg, m.keys.Next) {
			page++
		} else {
			page--
		}
		if page < 1 || page > v.Pages() {
			return m, nil
		}
		spec.Page = page
		return m, m.search(spec)

	case key.Matches(msg, m.keys.Add):
		if err := m.ctrl.OpenInsertForm(); err != nil {
			m.err = err
			return m, nil
		}
		m.openForm()

	case key.Matches(msg, m.keys.Edit):
		if v.Results.Len() == 0 {
			return m, nil
		}
		m.editRow, m.editCol = m.grid.Cursor(), m.col
		val, err := v.Results.Cell(m.editRow, m.editCol)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.edit.SetValue(val)
		m.edit.CursorEnd()
		_ = m.edit.Focus()
		m.mode = modeEdit

	case key.Matches(msg, m.keys.Delete):
		if v.Results.Len() == 0 {
			return m, nil
		}
		m.editRow = m.grid.Cursor()
		m.mode = modeConfirm
	}
	return m, nil
}

// nextLimit cycles through the offered row limits.
func nextLimit(current int) int {
	for i, l := range core.Limits {
		if l == current {
			return core.Limits[(i+1)%len(core.Limits)]
		}
	}
	return core.Limits[0]
}

func (m Model) updateTables(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		return m, nil
	case msg.String() == "q":
		return m.quit()
	case msg.String() == "enter":
		row := m.tables.SelectedRow()
		if row == nil {
			return m, nil
		}
		name := row[0]
		return m, m.start("select table", func(ctx context.Context) (int64, error) {
			if err := m.ctrl.SelectTable(ctx, name); err != nil {
				return 0, err
			}
			return 0, m.ctrl.Search(ctx, session.DefaultSpec(m.ctrl.View().Schema))
		})
	}
	var cmd tea.Cmd
	m.tables, cmd = m.tables.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter.Blur()
		m.mode = modeBrowse
		return m, nil
	case "enter":
		m.filter.Blur()
		m.mode = modeBrowse
		col, ok := m.selectedColumn()
		if !ok {
			return m, nil
		}
		spec := m.ctrl.View().Spec
		spec.FilterColumn, spec.FilterValue = col.Name, m.filter.Value()
		if spec.FilterValue == "" {
			spec.FilterColumn = ""
		}
		spec.Page = 1
		return m, m.search(spec)
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *Model) openForm() {
	fields := session.Form(m.ctrl.View().Schema)
	m.form = make([]formInput, len(fields))
	for i, f := range fields {
		in := newInput()
		in.Placeholder = strings.ToLower(f.Type)
		if f.Key {
			in.Placeholder += " (key, blank for default)"
		}
		m.form[i] = formInput{field: f, input: in}
	}
	m.formFocus = 0
	if len(m.form) > 0 {
		_ = m.form[0].input.Focus()
	}
	m.mode = modeForm
}

func (m *Model) focusField(i int) {
	if len(m.form) == 0 {
		return
	}
	m.form[m.formFocus].input.Blur()
	m.formFocus = (i + len(m.form)) % len(m.form)
	_ = m.form[m.formFocus].input.Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if err := m.ctrl.CancelInsert(); err != nil {
			m.err = err
		}
		m.form = nil
		m.mode = modeBrowse
		m.sync()
		return m, nil
	case "tab", "down":
		m.focusField(m.formFocus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusField(m.formFocus - 1)
		return m, nil
	case "enter", "ctrl+s":
		if msg.String() == "enter" && m.formFocus < len(m.form)-1 {
			m.focusField(m.formFocus + 1)
			return m, nil
		}
		raw := make(map[string]string, len(m.form))
		for _, f := range m.form {
			raw[f.field.Name] = f.input.Value()
		}
		values := session.FormValues(raw)
		return m, m.start("insert", func(ctx context.Context) (int64, error) {
			return m.ctrl.SubmitInsert(ctx, values)
		})
	}
	if len(m.form) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.form[m.formFocus].input, cmd = m.form[m.formFocus].input.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.edit.Blur()
		m.mode = modeBrowse
		return m, nil
	case "enter", "ctrl+n":
		m.edit.Blur()
		m.mode = modeBrowse
		var value any = m.edit.Value()
		if msg.String() == "ctrl+n" {
			value = nil
		}
		row, col := m.editRow, m.editCol
		return m, m.start("update", func(ctx context.Context) (int64, error) {
			return m.ctrl.UpdateCell(ctx, row, col, value)
		})
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.mode = modeBrowse
		row := m.editRow
		return m, m.start("delete", func(ctx context.Context) (int64, error) {
			return m.ctrl.DeleteRow(ctx, row)
		})
	case "n", "esc", "q":
		m.mode = modeBrowse
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.ctrl.View()

	var b strings.Builder
	b.WriteString(m.header(v))
	b.WriteString("\n\n")

	switch m.mode {
	case modeTables:
		b.WriteString(titleStyle.Render("Select a table"))
		b.WriteString("\n")
		b.WriteString(m.tables.View())
	default:
		b.WriteString(m.grid.View())
	}
	b.WriteString("\n")

	switch m.mode {
	case modeFilter:
		col, _ := m.selectedColumn()
		b.WriteString(boxStyle.Render(promptStyle.Render("Filter "+col.Name+" = ") + m.filter.View() +
			mutedStyle.Render("  enter apply, empty clears, esc cancel")))
		b.WriteString("\n")
	case modeEdit:
		name := ""
		if s := v.Schema; s != nil && m.editCol < len(s.Columns) {
			name = s.Columns[m.editCol].Name
		}
		b.WriteString(boxStyle.Render(promptStyle.Render(fmt.Sprintf("Update row %d %s: ", m.editRow+1, name)) + m.edit.View() +
			mutedStyle.Render("  enter save, ctrl+n NULL, esc cancel")))
		b.WriteString("\n")
	case modeConfirm:
		b.WriteString(boxStyle.Render(promptStyle.Render(fmt.Sprintf("Delete row %d? ", m.editRow+1)) + "(y/n)"))
		b.WriteString("\n")
	case modeForm:
		b.WriteString(m.formView())
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) header(v session.View) string {
	if v.Schema == nil {
		return titleStyle.Render("leaptable") + mutedStyle.Render("  no table selected, press t")
	}

	parts := []string{}
	if v.Spec.HasSort() {
		parts = append(parts, fmt.Sprintf("sorted by %s %s", v.Spec.SortColumn, v.Spec.Direction()))
	}
	if v.Spec.HasFilter() {
		parts = append(parts, fmt.Sprintf("%s = %s", v.Spec.FilterColumn, v.Spec.FilterValue))
	}
	if v.Spec.Limit == core.NoLimit {
		parts = append(parts, "all rows")
	} else {
		parts = append(parts, fmt.Sprintf("%d per page", v.Spec.Limit), fmt.Sprintf("page %d/%d", max(v.Spec.Page, 1), v.Pages()))
	}
	if v.Total >= 0 {
		parts = append(parts, fmt.Sprintf("%d rows", v.Total))
	}
	return titleStyle.Render(v.Schema.QualifiedName()) + mutedStyle.Render("  "+strings.Join(parts, " · "))
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("Add Record"))
	b.WriteString("\n")
	for i, f := range m.form {
		marker := "  "
		if i == m.formFocus {
			marker = "▸ "
		}
		b.WriteString(marker + labelStyle.Render(f.field.Label) + f.input.View() + "\n")
	}
	b.WriteString(mutedStyle.Render("tab next field, enter on last field or ctrl+s submit, esc cancel"))
	return boxStyle.Render(b.String())
}

func (m Model) statusLine() string {
	switch {
	case m.busy != "":
		return m.spinner.View() + " " + m.busy + "…" + mutedStyle.Render("  esc to cancel")
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	case m.status != "":
		return okStyle.Render(m.status)
	default:
		return ""
	}
}
