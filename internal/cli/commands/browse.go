package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaptable/internal/tui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit tables in a terminal UI",
		Long: `Open a full-screen terminal UI on the default table.

Move with the arrow keys, pick a column with left/right, then filter (/),
sort (s), page (n/p), change the row limit (L), add (a), edit (e or enter)
or delete (d) rows. Press t to switch tables and ? for all keys.`,
		Example: `  # Browse the configured default table
  leaptable browse

  # Browse the demo database
  leaptable demo && leaptable browse --type sqlite --database leaptable-demo.db --default-table users`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewInteractiveContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.Run(cmd.Context(), cmdCtx.Controller)
		},
	}
}
