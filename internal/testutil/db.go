package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/internal/demo"
	"github.com/leapstack-labs/leaptable/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// OpenDemoDB returns a connected in-memory sqlite adapter seeded with the
// demo tables. It is closed when the test ends.
func OpenDemoDB(t testing.TB) *sqlite.Adapter {
	t.Helper()
	return OpenDemoFile(t, sqlite.MemoryPath)
}

// OpenDemoFile is OpenDemoDB backed by the database file at path.
func OpenDemoFile(t testing.TB, path string) *sqlite.Adapter {
	t.Helper()

	ctx := context.Background()
	adp := sqlite.New(NewTestLogger(t))
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{Type: "sqlite", Path: path}))
	t.Cleanup(func() { _ = adp.Close() })

	require.NoError(t, demo.Migrate(ctx, adp.DB))
	return adp
}
