package commands

import (
	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables",
		Long:  `List the base tables in the configured database and schema.`,
		Example: `  leaptable tables
  leaptable tables -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd, "")
			if err != nil {
				return err
			}
			defer cleanup()
			return renderTables(cmdCtx.Renderer, cmdCtx.Controller.View().Tables)
		},
	}
}

func renderTables(r *output.Renderer, tables []string) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(tables)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Tables"))
		r.Println()
		for _, t := range tables {
			r.Println("- " + t)
		}
	default:
		for _, t := range tables {
			r.Println(t)
		}
		r.Muted(output.FormatRowCount(len(tables)))
	}
	return nil
}
