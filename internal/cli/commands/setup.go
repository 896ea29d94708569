package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaptable/internal/cli/config"
	"github.com/leapstack-labs/leaptable/internal/cli/output"
	"github.com/leapstack-labs/leaptable/internal/session"
	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/spf13/cobra"

	// Register every adapter the CLI can connect to.
	_ "github.com/leapstack-labs/leaptable/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leaptable/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/leaptable/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leaptable/pkg/adapters/sqlite"
	_ "github.com/leapstack-labs/leaptable/pkg/adapters/sqlserver"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg        *config.Config
	Logger     *slog.Logger
	Renderer   *output.Renderer
	Controller *session.Controller
}

// NewCommandContext validates the target, connects a session controller and
// creates the renderer. defaultTable, when set, is selected and loaded on
// connect. The returned cleanup closes the connection and must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command, defaultTable string) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutSession(cmd)

	if err := cmdCtx.Cfg.Validate(); err != nil {
		return nil, nil, err
	}

	ctrl, err := openSession(cmd.Context(), cmdCtx.Cfg, cmdCtx.Logger, defaultTable)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Controller = ctrl

	cleanup := func() {
		_ = ctrl.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewInteractiveContext is NewCommandContext for the interactive renderers:
// it requires a default table and opens the session on it.
func NewInteractiveContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	if err := cfg.ValidateInteractive(); err != nil {
		return nil, nil, err
	}
	return NewCommandContext(cmd, cfg.DefaultTable)
}

// NewCommandContextWithoutSession creates a CommandContext without a
// database connection. Useful for commands that don't need one.
func NewCommandContextWithoutSession(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or the defaults when none was
// loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	target := &config.TargetConfig{Type: config.DefaultTargetType}
	config.ApplyTargetDefaults(target)
	return &config.Config{
		Target:       target,
		OutputFormat: config.DefaultOutput,
		UI:           config.DefaultUIConfig(),
	}
}

// openSession creates the adapter for the configured target and connects a
// controller over it.
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, defaultTable string) (*session.Controller, error) {
	acfg := cfg.Target.ToAdapterConfig()
	adp, err := adapter.NewAdapter(acfg, logger)
	if err != nil {
		return nil, err
	}

	ctrl := session.New(adp, acfg,
		session.WithLogger(logger),
		session.WithDefaultTable(defaultTable),
	)
	if err := ctrl.Connect(ctx); err != nil {
		_ = adp.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Target.Type, err)
	}
	return ctrl, nil
}
