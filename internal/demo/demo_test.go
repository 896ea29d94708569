package demo

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.NoError(t, Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 12, n)

	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_roles").Scan(&n))
	assert.Equal(t, 3, n)

	version, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 12, n, "seed must not be applied twice")
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "demo.db")

	version, err := Create(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	// Re-running against the same file is a no-op.
	version, err = Create(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 12, n)
}
