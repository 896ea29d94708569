package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/internal/cli/config"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

func TestInteractiveCommands_RequireDefaultTable(t *testing.T) {
	commands := map[string]func() *cobra.Command{
		"browse": NewBrowseCommand,
		"shell":  NewShellCommand,
		"ui":     NewUICommand,
	}

	for name, newCmd := range commands {
		t.Run(name, func(t *testing.T) {
			path := useDemo(t, "text")
			config.SetCurrentConfig(&config.Config{
				Target: &config.TargetConfig{Type: "sqlite", Database: path},
			})

			_, _, err := execute(t, newCmd())
			require.Error(t, err)
			assert.True(t, core.IsKind(err, core.KindConfig))
			assert.Contains(t, err.Error(), "default_table")
		})
	}
}

func TestInteractiveCommands_MissingTable(t *testing.T) {
	path := useDemo(t, "text")
	config.SetCurrentConfig(&config.Config{
		Target:       &config.TargetConfig{Type: "sqlite", Database: path},
		DefaultTable: "nope",
	})

	_, _, err := execute(t, NewBrowseCommand())
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindSchema))
}

func TestUICommand_Flags(t *testing.T) {
	cmd := NewUICommand()

	port := cmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "0", port.DefValue)

	noBrowser := cmd.Flags().Lookup("no-browser")
	require.NotNil(t, noBrowser)
	assert.Equal(t, "false", noBrowser.DefValue)

	watch := cmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "true", watch.DefValue)
}

func TestSessionSecret(t *testing.T) {
	assert.Equal(t, "configured", sessionSecret(&config.UIConfig{SessionSecret: "configured"}))

	a := sessionSecret(&config.UIConfig{})
	b := sessionSecret(&config.UIConfig{})
	assert.Len(t, a, 72)
	assert.NotEqual(t, a, b, "a fresh secret is generated per call")
}
