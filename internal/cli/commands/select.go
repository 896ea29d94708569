package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/spf13/cobra"
)

// SelectOptions holds options for the select command.
type SelectOptions struct {
	Where  string
	Sort   string
	Desc   bool
	Limit  int
	Page   int
	Format string
}

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	opts := &SelectOptions{}

	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Read rows from a table",
		Long: `Read rows from a table with an optional equality filter, sort and row limit.

Without --sort the rows are ordered by the table's first column. The limit
must be one of 10, 25, 50 or 100, or 0 for every row.`,
		Example: `  # First ten users
  leaptable select users

  # Filter by equality and sort descending
  leaptable select users --where name=Alice --sort id --desc

  # Second page of 25 rows as CSV
  leaptable select users --limit 25 --page 2 --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "Equality filter as column=value")
	cmd.Flags().StringVarP(&opts.Sort, "sort", "s", "", "Sort column (default: first column)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "Sort descending")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", core.Limits[0], "Row limit: 10, 25, 50, 100 or 0 for all")
	cmd.Flags().IntVarP(&opts.Page, "page", "p", 1, "Page number")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: "+strings.Join(output.GridFormats, ", "))

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.GridFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("limit", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"10", "25", "50", "100", "0"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runSelect(cmd *cobra.Command, table string, opts *SelectOptions) error {
	spec, err := opts.querySpec()
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	defer cleanup()

	ctrl := cmdCtx.Controller
	if err := ctrl.SelectTable(cmd.Context(), table); err != nil {
		return err
	}
	if spec.SortColumn == "" {
		spec.SortColumn = session.DefaultSpec(ctrl.View().Schema).SortColumn
	}
	if err := ctrl.Search(cmd.Context(), spec); err != nil {
		return err
	}

	v := ctrl.View()
	r := cmdCtx.Renderer
	format := r.GridFormat(opts.Format)
	if err := r.Grid(v.Results, format); err != nil {
		return err
	}
	if format == "table" && v.Total >= 0 && v.Spec.Limit != core.NoLimit {
		r.Muted(pageSummary(v))
	}
	return nil
}

// querySpec builds the QuerySpec from the flags. The sort column is left
// empty when not given.
func (o *SelectOptions) querySpec() (core.QuerySpec, error) {
	spec := core.QuerySpec{
		SortColumn:    o.Sort,
		SortDirection: core.SortAsc,
		Limit:         o.Limit,
		Page:          o.Page,
	}
	if o.Desc {
		spec.SortDirection = core.SortDesc
	}
	if o.Where != "" {
		col, val, err := parseAssignment(o.Where)
		if err != nil {
			return spec, fmt.Errorf("invalid --where: %w", err)
		}
		spec.FilterColumn, spec.FilterValue = col, val
	}
	return spec, spec.Validate()
}

// parseAssignment splits "column=value". The value may be empty or contain '='.
func parseAssignment(s string) (column, value string, err error) {
	column, value, ok := strings.Cut(s, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return "", "", fmt.Errorf("expected column=value, got %q", s)
	}
	return column, value, nil
}

func pageSummary(v session.View) string {
	page := v.Spec.Page
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("page %d of %d, %d matching rows", page, v.Pages(), v.Total)
}
