package commands

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show a table's columns and row identity",
		Long: `Show the columns of a table as reflected from the database, with their
inferred kinds, nullability and primary key membership.

The row identity column is the one update and delete statements match on:
the declared primary key, its first column for composite keys, or the
table's first column when no key is declared.`,
		Example: `  leaptable schema users
  leaptable schema dbo.orders -o json`,
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
			return renderSchema(cmdCtx.Renderer, ctrl.View().Schema)
		},
	}
}

// SchemaOutput is the JSON shape of the schema command.
type SchemaOutput struct {
	Table          string         `json:"table"`
	Identity       string         `json:"identity"`
	IdentitySource string         `json:"identity_source"`
	Columns        []ColumnOutput `json:"columns"`
}

// ColumnOutput describes one column.
type ColumnOutput struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Kind       string `json:"kind"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

func buildSchemaOutput(s *core.TableSchema) SchemaOutput {
	out := SchemaOutput{
		Table:          s.QualifiedName(),
		Identity:       strings.Join(s.KeyNames(), ", "),
		IdentitySource: s.Source.String(),
		Columns:        make([]ColumnOutput, len(s.Columns)),
	}
	for i, c := range s.Columns {
		out.Columns[i] = ColumnOutput{
			Name:       c.Name,
			Type:       c.Type,
			Kind:       c.Kind.String(),
			Nullable:   c.Nullable,
			PrimaryKey: c.PrimaryKey,
		}
	}
	return out
}

func renderSchema(r *output.Renderer, s *core.TableSchema) error {
	out := buildSchemaOutput(s)
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, out.Table)
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println()
		r.Println(output.FormatKeyValue("Identity", out.Identity+" ("+out.IdentitySource+")"))
		r.Println()
	} else {
		r.Println(r.Styles().Key.Render("identity: ") + out.Identity + " " + r.Styles().Muted.Render("("+out.IdentitySource+")"))
	}

	rows := make([][]string, len(out.Columns))
	for i, c := range out.Columns {
		rows[i] = []string{c.Name, c.Type, c.Kind, strconv.FormatBool(c.Nullable), yesNo(c.PrimaryKey)}
	}
	r.Table([]string{"column", "type", "kind", "nullable", "pk"}, rows)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
