package commands

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leaptable/internal/cli/config"
	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, connectivity and row identity",
		Long: `Check that leaptable can browse the configured database.

The report covers:
- Configuration (target settings, default table)
- Connectivity (connect, list tables)
- Adapters compiled into this binary
- Row identity for every table: tables without a primary key, or with a
  composite one, are matched on a single column that may not be unique

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run checks
  leaptable doctor

  # Output as JSON
  leaptable doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Target     TargetSummary `json:"target"`
	Checks     []HealthCheck `json:"checks"`
	ErrorCount int           `json:"error_count"`
	WarnCount  int           `json:"warn_count"`
}

// TargetSummary describes the configured target without secrets.
type TargetSummary struct {
	Type         string `json:"type"`
	Host         string `json:"host,omitempty"`
	Port         int    `json:"port,omitempty"`
	Database     string `json:"database,omitempty"`
	Schema       string `json:"schema,omitempty"`
	DefaultTable string `json:"default_table,omitempty"`
	ConfigFile   string `json:"config_file,omitempty"`
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	Group   string   `json:"group"`
	Name    string   `json:"name"`
	Status  string   `json:"status"` // "pass", "warn", "error", "skip"
	Details []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContextWithoutSession(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	out := buildDoctorOutput(cmd.Context(), cmdCtx)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}

	if out.ErrorCount > 0 {
		return fmt.Errorf("%d check(s) failed", out.ErrorCount)
	}
	return nil
}

func buildDoctorOutput(ctx context.Context, cmdCtx *CommandContext) *DoctorOutput {
	cfg := cmdCtx.Cfg
	out := &DoctorOutput{
		Target: TargetSummary{
			DefaultTable: cfg.DefaultTable,
			ConfigFile:   config.GetConfigFileUsed(),
		},
	}
	if t := cfg.Target; t != nil {
		out.Target.Type = t.Type
		out.Target.Host = t.Host
		out.Target.Port = t.Port
		out.Target.Database = t.Database
		out.Target.Schema = t.Schema
	}

	out.Checks = append(out.Checks, HealthCheck{
		Group:   "adapters",
		Name:    "registered adapters",
		Status:  "pass",
		Details: adapter.ListAdapters(),
	})

	cfgCheck := HealthCheck{Group: "configuration", Name: "target settings", Status: "pass"}
	if err := cfg.Validate(); err != nil {
		cfgCheck.Status = "error"
		cfgCheck.Details = []string{err.Error()}
	}
	out.Checks = append(out.Checks, cfgCheck)

	tableCheck := HealthCheck{Group: "configuration", Name: "default table", Status: "pass"}
	if cfg.DefaultTable == "" {
		tableCheck.Status = "warn"
		tableCheck.Details = []string{"not set: browse, shell and ui need DEFAULT_TABLE or --default-table"}
	}
	out.Checks = append(out.Checks, tableCheck)

	if cfgCheck.Status == "error" {
		out.Checks = append(out.Checks, HealthCheck{Group: "connectivity", Name: "connect", Status: "skip",
			Details: []string{"configuration is invalid"}})
		return out.count()
	}

	ctrl, err := openSession(ctx, cfg, cmdCtx.Logger, "")
	if err != nil {
		out.Checks = append(out.Checks, HealthCheck{Group: "connectivity", Name: "connect", Status: "error",
			Details: []string{err.Error()}})
		return out.count()
	}
	defer func() { _ = ctrl.Close() }()

	tables := ctrl.View().Tables
	out.Checks = append(out.Checks, HealthCheck{
		Group:   "connectivity",
		Name:    "connect",
		Status:  "pass",
		Details: []string{fmt.Sprintf("%s, %d tables", ctrl.Dialect(), len(tables))},
	})

	if cfg.DefaultTable != "" && !containsFold(tables, cfg.DefaultTable) && !strings.Contains(cfg.DefaultTable, ".") {
		out.Checks = append(out.Checks, HealthCheck{Group: "connectivity", Name: "default table exists", Status: "error",
			Details: []string{fmt.Sprintf("%q is not one of the listed tables", cfg.DefaultTable)}})
	}

	out.Checks = append(out.Checks, identityChecks(ctx, ctrl, tables)...)
	return out.count()
}

// identityChecks reports how each table's row identity is resolved.
func identityChecks(ctx context.Context, ctrl *session.Controller, tables []string) []HealthCheck {
	check := HealthCheck{Group: "row identity", Name: "primary keys", Status: "pass"}
	for _, t := range tables {
		if err := ctrl.SelectTable(ctx, t); err != nil {
			check.Status = "error"
			check.Details = append(check.Details, fmt.Sprintf("%s: %v", t, err))
			continue
		}
		s := ctrl.View().Schema
		if s.Source != core.IdentityFirstColumn {
			continue
		}
		if check.Status == "pass" {
			check.Status = "warn"
		}
		check.Details = append(check.Details, fmt.Sprintf("%s: %s uses %s", t, strings.Join(s.KeyNames(), ", "), s.Source))
	}
	return []HealthCheck{check}
}

func (o *DoctorOutput) count() *DoctorOutput {
	o.ErrorCount, o.WarnCount = 0, 0
	for _, c := range o.Checks {
		switch c.Status {
		case "error":
			o.ErrorCount++
		case "warn":
			o.WarnCount++
		}
	}
	return o
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Title.Render("leaptable doctor"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Printf("   Target: %s %s\n", out.Target.Type, targetLocation(out.Target))
	if out.Target.ConfigFile != "" {
		r.Printf("   Config: %s\n", out.Target.ConfigFile)
	}
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		status := "success"
		switch check.Status {
		case "warn":
			status = "warning"
		case "error":
			status = "error"
		case "skip":
			status = "skipped"
		}
		r.Printf("   ")
		r.StatusLine(check.Name, status, "")

		// Show first 5 details
		for i, detail := range check.Details {
			if i >= 5 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-5)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Printf("   %d errors, %d warnings\n", out.ErrorCount, out.WarnCount)
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# leaptable doctor")
	r.Println("")
	r.Println(output.FormatKeyValue("Target", strings.TrimSpace(out.Target.Type+" "+targetLocation(out.Target))))
	if out.Target.ConfigFile != "" {
		r.Println(output.FormatKeyValue("Config", out.Target.ConfigFile))
	}
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("## " + titleCaser.String(currentGroup))
			r.Println("")
		}
		r.Printf("- **[%s]** %s\n", strings.ToUpper(check.Status), check.Name)
		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")
	r.Printf("**%d errors, %d warnings**\n", out.ErrorCount, out.WarnCount)
}

func targetLocation(t TargetSummary) string {
	if t.Host == "" {
		return t.Database
	}
	return fmt.Sprintf("%s:%d/%s", t.Host, t.Port, t.Database)
}
