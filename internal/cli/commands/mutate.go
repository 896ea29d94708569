package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// MutationOutput is the JSON shape of insert, update and delete.
type MutationOutput struct {
	Table    string `json:"table"`
	Action   string `json:"action"`
	Affected int64  `json:"affected"`
}

func renderMutation(r *output.Renderer, out MutationOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	noun := "rows"
	if out.Affected == 1 {
		noun = "row"
	}
	r.Success(fmt.Sprintf("%s %d %s in %s", out.Action, out.Affected, noun, out.Table))
	if out.Affected == 0 && out.Action != "inserted" {
		r.Warning("no row matched the key")
	}
	return nil
}

// InsertOptions holds options for the insert command.
type InsertOptions struct {
	Set  []string
	Null []string
}

// NewInsertCommand creates the insert command.
func NewInsertCommand() *cobra.Command {
	opts := &InsertOptions{}

	cmd := &cobra.Command{
		Use:   "insert <table>",
		Short: "Insert one row",
		Long: `Insert one row into a table.

Columns that are not given keep the database default. Values are converted
to the column's kind (integer, float, bool) when they parse, and passed as
text otherwise.`,
		Example: `  leaptable insert users --set name=Zed --set email=zed@example.com
  leaptable insert users --set name=Nobody --null email`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := opts.values()
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd, "")
			if err != nil {
				return err
			}
			defer cleanup()

			ctrl := cmdCtx.Controller
			if err := ctrl.SelectTable(cmd.Context(), args[0]); err != nil {
				return err
			}
			n, err := ctrl.InsertRow(cmd.Context(), values)
			if err != nil {
				return err
			}
			return renderMutation(cmdCtx.Renderer, MutationOutput{
				Table:    ctrl.View().Schema.QualifiedName(),
				Action:   "inserted",
				Affected: n,
			})
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "Column value as column=value (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Null, "null", nil, "Column to set to NULL (repeatable)")

	return cmd
}

func (o *InsertOptions) values() (map[string]any, error) {
	values := make(map[string]any, len(o.Set)+len(o.Null))
	for _, s := range o.Set {
		col, val, err := parseAssignment(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --set: %w", err)
		}
		values[col] = val
	}
	for _, col := range o.Null {
		col = strings.TrimSpace(col)
		if _, dup := values[col]; dup {
			return nil, fmt.Errorf("column %q given with both --set and --null", col)
		}
		values[col] = nil
	}
	return values, nil
}

// UpdateOptions holds options for the update command.
type UpdateOptions struct {
	Key    []string
	Column string
	Value  string
	Null   bool
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	opts := &UpdateOptions{}

	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Set one column on the row with the given identity value",
		Long: `Set one column on the row whose identity columns equal --key.

The identity columns are shown by "leaptable schema <table>". Repeat --key
once per column of a composite primary key, in key order. When identity
values are not unique every matching row is updated and a warning is logged.`,
		Example: `  leaptable update users --key 3 --column email --value trent@example.com
  leaptable update users --key 3 --column email --null
  leaptable update user_roles --key 2 --key admin --column role --value owner`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Null && cmd.Flags().Changed("value") {
				return errors.New("--value and --null are mutually exclusive")
			}
			var value any = opts.Value
			if opts.Null {
				value = nil
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd, "")
			if err != nil {
				return err
			}
			defer cleanup()

			ctrl := cmdCtx.Controller
			if err := ctrl.SelectTable(cmd.Context(), args[0]); err != nil {
				return err
			}
			n, err := ctrl.UpdateByKey(cmd.Context(), keyValues(opts.Key), opts.Column, value)
			if err != nil {
				return err
			}
			return renderMutation(cmdCtx.Renderer, MutationOutput{
				Table:    ctrl.View().Schema.QualifiedName(),
				Action:   "updated",
				Affected: n,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Key, "key", "k", nil, "Identity value of the row, once per key column")
	cmd.Flags().StringVarP(&opts.Column, "column", "c", "", "Column to set")
	cmd.Flags().StringVar(&opts.Value, "value", "", "New value")
	cmd.Flags().BoolVar(&opts.Null, "null", false, "Set the column to NULL")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}

// DeleteOptions holds options for the delete command.
type DeleteOptions struct {
	Key []string
	Yes bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	opts := &DeleteOptions{}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete the row with the given identity value",
		Long: `Delete the row whose identity columns equal --key.

Repeat --key once per column of a composite primary key, in key order. Asks for confirmation unless --yes is given. Without a terminal on stdin
--yes is required.`,
		Example: `  leaptable delete users --key 12
  leaptable delete users --key 12 --yes
  leaptable delete user_roles --key 2 --key editor`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, "")
			if err != nil {
				return err
			}
			defer cleanup()

			ctrl := cmdCtx.Controller
			if err := ctrl.SelectTable(cmd.Context(), args[0]); err != nil {
				return err
			}
			s := ctrl.View().Schema

			if !opts.Yes {
				prompt := fmt.Sprintf("Delete from %s where %s?", s.QualifiedName(), describeKey(s.KeyNames(), opts.Key))
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
				if err != nil {
					return err
				}
				if !ok {
					cmdCtx.Renderer.Muted("cancelled")
					return nil
				}
			}

			n, err := ctrl.DeleteByKey(cmd.Context(), keyValues(opts.Key))
			if err != nil {
				return err
			}
			return renderMutation(cmdCtx.Renderer, MutationOutput{
				Table:    s.QualifiedName(),
				Action:   "deleted",
				Affected: n,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Key, "key", "k", nil, "Identity value of the row, once per key column")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

// keyValues converts --key flags to identity values. They are coerced by
// column kind when the statement is built.
func keyValues(keys []string) []any {
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return values
}

// describeKey renders "a = 1 and b = x" for a confirmation prompt.
func describeKey(names, keys []string) string {
	parts := make([]string, 0, len(keys))
	for i, k := range keys {
		name := "?"
		if i < len(names) {
			name = names[i]
		}
		parts = append(parts, name+" = "+k)
	}
	return strings.Join(parts, " and ")
}

// errNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal.
var errNotInteractive = errors.New("confirmation required: stdin is not a terminal, pass --yes")

// confirm asks a yes/no question on w and reads the answer from in.
// Only "y" and "yes" confirm.
func confirm(in io.Reader, w io.Writer, prompt string) (bool, error) {
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return false, errNotInteractive
	}
	return readConfirmation(in, w, prompt)
}

func readConfirmation(in io.Reader, w io.Writer, prompt string) (bool, error) {
	_, _ = fmt.Fprintf(w, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
