package commands

import (
	"fmt"

	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/leapstack-labs/leaptable/internal/demo"
	"github.com/spf13/cobra"
)

// DefaultDemoPath is where the demo command writes its database.
const DefaultDemoPath = "leaptable-demo.db"

// DemoOutput is the JSON output for the demo command.
type DemoOutput struct {
	Path         string `json:"path"`
	Version      int64  `json:"version"`
	DefaultTable string `json:"default_table"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo [path]",
		Short: "Create a sqlite demo database",
		Long: `Create (or bring up to date) a sqlite database with a few small tables
to try leaptable against:

  users        id, name, email (single primary key)
  user_roles   user_id, role   (composite primary key)
  notes        body, created_at (no primary key)`,
		Example: `  leaptable demo
  leaptable --type sqlite --database leaptable-demo.db --default-table users browse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultDemoPath
			if len(args) == 1 {
				path = args[0]
			}

			cmdCtx := NewCommandContextWithoutSession(cmd)
			version, err := demo.Create(cmd.Context(), path, cmdCtx.Logger)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			out := DemoOutput{Path: path, Version: version, DefaultTable: demo.DefaultTable}
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(out)
			}
			r.Success(fmt.Sprintf("demo database ready at %s (version %d)", path, version))
			r.Muted(fmt.Sprintf("browse it with: leaptable --type sqlite --database %s --default-table %s browse", path, demo.DefaultTable))
			return nil
		},
	}
}
