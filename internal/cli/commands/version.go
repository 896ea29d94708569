package commands

import (
	"fmt"
	"runtime"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/spf13/cobra"
)

// BuildInfo carries the values stamped in at build time.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leaptable version, build information and the compiled-in database adapters.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "leaptable v%s\n", info.Version)
			_, _ = fmt.Fprintf(w, "commit %s, built %s with %s\n", info.GitCommit, info.BuildDate, runtime.Version())
			_, _ = fmt.Fprintf(w, "adapters: %v\n", adapter.ListAdapters())
		},
	}
}
