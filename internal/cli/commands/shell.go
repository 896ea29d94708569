package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse and edit tables in an interactive shell",
		Long: `Open an interactive shell on the default table.

Dot-commands select tables, filter, sort, page and edit rows; rows are
addressed by the number shown in the # column. Tab completes commands,
table names and column names. Ctrl-C cancels a running query.`,
		Example: `  leaptable --default-table users shell`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Grid format: "+strings.Join(output.GridFormats, ", "))

	return cmd
}

func runShell(cmd *cobra.Command, format string) error {
	cmdCtx, cleanup, err := NewInteractiveContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sh := newShell(cmdCtx.Controller, cmdCtx.Renderer, format)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sh.prompt(),
		HistoryFile:     shellHistoryFile(),
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sh.confirm = func(prompt string) (bool, error) {
		rl.SetPrompt(prompt + " [y/N] ")
		defer rl.SetPrompt(sh.prompt())
		line, err := rl.Readline()
		if err != nil {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}

	r := cmdCtx.Renderer
	r.Printf("leaptable shell (%s)\n", cmdCtx.Controller.Dialect())
	r.Println("Type .help for commands, .quit to exit")
	r.Println()
	sh.showResults()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		quit := sh.exec(ctx, line)
		stop()
		if quit {
			break
		}
		rl.SetPrompt(sh.prompt())
	}

	return nil
}

// shellHistoryFile returns the history path under the user cache directory,
// or "" to disable history.
func shellHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "leaptable")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "shell_history")
}

// shell executes dot-commands against a session controller.
type shell struct {
	ctrl    *session.Controller
	r       *output.Renderer
	format  string
	confirm func(prompt string) (bool, error)
}

func newShell(ctrl *session.Controller, r *output.Renderer, format string) *shell {
	return &shell{
		ctrl:   ctrl,
		r:      r,
		format: format,
		confirm: func(string) (bool, error) {
			return false, errNotInteractive
		},
	}
}

func (s *shell) prompt() string {
	if sc := s.ctrl.View().Schema; sc != nil {
		return sc.Name + "> "
	}
	return "leaptable> "
}

// exec runs one input line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ".") {
		s.r.Error("unknown input (commands start with '.', type .help)")
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	if name == ".quit" || name == ".exit" {
		return true
	}
	if err := s.dispatch(ctx, strings.ToLower(name), rest); err != nil {
		_, _ = fmt.Fprintf(s.r.ErrWriter(), "Error: %v\n", err)
	}
	return false
}

func (s *shell) dispatch(ctx context.Context, name, rest string) error {
	switch name {
	case ".help":
		printShellHelp(s.r.Writer())
		return nil

	case ".tables":
		for _, t := range s.ctrl.View().Tables {
			s.r.Println(t)
		}
		return nil

	case ".use":
		if rest == "" {
			return errors.New("usage: .use <table>")
		}
		if err := s.ctrl.SelectTable(ctx, rest); err != nil {
			return err
		}
		return s.search(ctx, session.DefaultSpec(s.ctrl.View().Schema))

	case ".schema":
		v := s.ctrl.View()
		if v.Schema == nil {
			return errors.New("no table selected (.use <table>)")
		}
		return renderSchema(s.r, v.Schema)

	case ".show", ".refresh":
		if err := s.ctrl.Refresh(ctx); err != nil {
			return err
		}
		s.showResults()
		return nil

	case ".where":
		spec := s.ctrl.View().Spec
		spec.FilterColumn, spec.FilterValue = "", ""
		if rest != "" {
			col, val, err := parseAssignment(rest)
			if err != nil {
				return err
			}
			spec.FilterColumn, spec.FilterValue = col, val
		}
		spec.Page = 1
		return s.search(ctx, spec)

	case ".sort":
		args := strings.Fields(rest)
		if len(args) == 0 || len(args) > 2 {
			return errors.New("usage: .sort <column> [asc|desc]")
		}
		spec := s.ctrl.View().Spec
		spec.SortColumn = args[0]
		spec.SortDirection = core.SortAsc
		if len(args) == 2 {
			spec.SortDirection = core.ParseSortDirection(args[1])
		}
		return s.search(ctx, spec)

	case ".limit":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("usage: .limit <%s|0>", joinInts(core.Limits, "|"))
		}
		spec := s.ctrl.View().Spec
		spec.Limit, spec.Page = n, 1
		return s.search(ctx, spec)

	case ".page":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return errors.New("usage: .page <n>")
		}
		return s.gotoPage(ctx, n)

	case ".next":
		return s.gotoPage(ctx, s.ctrl.View().Spec.Page+1)

	case ".prev":
		return s.gotoPage(ctx, s.ctrl.View().Spec.Page-1)

	case ".insert":
		values := make(map[string]any)
		for _, arg := range splitArgs(rest) {
			col, val, err := parseAssignment(arg)
			if err != nil {
				return err
			}
			values[col] = val
		}
		n, err := s.ctrl.InsertRow(ctx, values)
		if err != nil {
			return err
		}
		s.r.Success(fmt.Sprintf("inserted %d row", n))
		s.showResults()
		return nil

	case ".update", ".setnull":
		args := splitArgs(rest)
		if (name == ".update" && len(args) != 3) || (name == ".setnull" && len(args) != 2) {
			return fmt.Errorf("usage: .update <row> <column> <value> or .setnull <row> <column>")
		}
		row, col, err := s.cell(args[0], args[1])
		if err != nil {
			return err
		}
		var value any
		if name == ".update" {
			value = args[2]
		}
		n, err := s.ctrl.UpdateCell(ctx, row, col, value)
		if err != nil {
			return err
		}
		s.r.Success(fmt.Sprintf("updated %d row(s)", n))
		s.showResults()
		return nil

	case ".delete":
		row, err := s.row(rest)
		if err != nil {
			return err
		}
		ok, err := s.confirm(fmt.Sprintf("Delete row %d?", row+1))
		if err != nil {
			return err
		}
		if !ok {
			s.r.Muted("cancelled")
			return nil
		}
		n, err := s.ctrl.DeleteRow(ctx, row)
		if err != nil {
			return err
		}
		s.r.Success(fmt.Sprintf("deleted %d row(s)", n))
		s.showResults()
		return nil

	case ".format":
		switch strings.ToLower(rest) {
		case "table", "json", "csv", "md", "markdown", "yaml", "yml":
			s.format = strings.ToLower(rest)
			return nil
		}
		return fmt.Errorf("unknown format %q (%s)", rest, strings.Join(output.GridFormats, ", "))

	case ".clear":
		s.r.Printf("\033[H\033[2J")
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type .help for commands)", name)
	}
}

func (s *shell) search(ctx context.Context, spec core.QuerySpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := s.ctrl.Search(ctx, spec); err != nil {
		return err
	}
	s.showResults()
	return nil
}

func (s *shell) gotoPage(ctx context.Context, page int) error {
	v := s.ctrl.View()
	if page < 1 || page > v.Pages() {
		return fmt.Errorf("page %d out of range (1-%d)", page, v.Pages())
	}
	spec := v.Spec
	spec.Page = page
	return s.search(ctx, spec)
}

// row parses a 1-based row number as shown in the # column.
func (s *shell) row(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("row must be a number, got %q", arg)
	}
	return n - 1, nil
}

func (s *shell) cell(rowArg, colArg string) (int, int, error) {
	row, err := s.row(rowArg)
	if err != nil {
		return 0, 0, err
	}
	sc := s.ctrl.View().Schema
	if sc == nil {
		return 0, 0, errors.New("no table selected (.use <table>)")
	}
	col := sc.ColumnIndex(colArg)
	if col < 0 {
		return 0, 0, fmt.Errorf("column %q does not exist in %s", colArg, sc.QualifiedName())
	}
	return row, col, nil
}

func (s *shell) showResults() {
	v := s.ctrl.View()
	if v.Results == nil {
		return
	}
	if err := s.r.Grid(numbered(v.Results), s.format); err != nil {
		_, _ = fmt.Fprintf(s.r.ErrWriter(), "Error: %v\n", err)
		return
	}
	if v.Total >= 0 && v.Spec.Limit != core.NoLimit {
		s.r.Muted(pageSummary(v))
	}
}

// numbered returns a copy of rs with a leading 1-based "#" column.
func numbered(rs *core.ResultSet) *core.ResultSet {
	out := *rs
	out.Columns = append([]string{"#"}, rs.Columns...)
	out.Rows = make([]core.Row, len(rs.Rows))
	for i, row := range rs.Rows {
		out.Rows[i] = core.Row{
			Values: append([]string{strconv.Itoa(i + 1)}, row.Values...),
			Key:    row.Key,
		}
	}
	return &out
}

// splitArgs splits on spaces, keeping single- or double-quoted runs together.
func splitArgs(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote, inArg = r, true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}

func joinInts(ns []int, sep string) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}

// completer completes dot-commands, table names after .use and column names
// after the commands that take one.
func (s *shell) completer() *readline.PrefixCompleter {
	tables := func(string) []string {
		return s.ctrl.View().Tables
	}
	columns := func(string) []string {
		if sc := s.ctrl.View().Schema; sc != nil {
			return sc.ColumnNames()
		}
		return nil
	}
	filters := func(line string) []string {
		names := columns(line)
		for i := range names {
			names[i] += "="
		}
		return names
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".use", readline.PcItemDynamic(tables)),
		readline.PcItem(".schema"),
		readline.PcItem(".show"),
		readline.PcItem(".refresh"),
		readline.PcItem(".where", readline.PcItemDynamic(filters)),
		readline.PcItem(".sort", readline.PcItemDynamic(columns, readline.PcItem("asc"), readline.PcItem("desc"))),
		readline.PcItem(".limit", readline.PcItem("10"), readline.PcItem("25"), readline.PcItem("50"), readline.PcItem("100")),
		readline.PcItem(".page"),
		readline.PcItem(".next"),
		readline.PcItem(".prev"),
		readline.PcItem(".insert", readline.PcItemDynamic(filters)),
		readline.PcItem(".update"),
		readline.PcItem(".setnull"),
		readline.PcItem(".delete"),
		readline.PcItem(".format", readline.PcItem("table"), readline.PcItem("json"), readline.PcItem("csv"), readline.PcItem("md"), readline.PcItem("yaml")),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help                        Show this help message
  .tables                      List tables
  .use <table>                 Select a table and show its first page
  .schema                      Show the selected table's columns
  .show / .refresh             Re-run the current query
  .where <column>=<value>      Filter by equality (.where alone clears it)
  .sort <column> [asc|desc]    Sort the results
  .limit <10|25|50|100|0>      Rows per page (0 for all)
  .page <n> / .next / .prev    Move between pages
  .insert col=value ...        Insert a row (unset columns get defaults)
  .update <row> <col> <value>  Set one cell of a displayed row
  .setnull <row> <col>         Set one cell to NULL
  .delete <row>                Delete a displayed row after confirmation
  .format <table|json|csv|md|yaml>
  .clear                       Clear the screen
  .quit / .exit                Exit the shell

Tips:
  - Rows are numbered by the # column of the last result
  - Quote values with spaces: .insert name="Ann Lee"
  - Tab completion works for commands, tables and columns
`
	_, _ = fmt.Fprintln(w, help)
}
