// Package demo creates a small sqlite database to try leaptable against.
package demo

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/leapstack-labs/leaptable/pkg/adapters/sqlite"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

// VersionTable is the goose bookkeeping table created in the demo database.
const VersionTable = "leaptable_demo_version"

// DefaultTable is the table the demo is meant to be browsed from.
const DefaultTable = "users"

// Migrate creates and seeds the demo tables. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetTableName(VersionTable)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run demo migrations: %w", err)
	}

	return nil
}

// Version returns the applied demo migration version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	goose.SetBaseFS(migrations)
	goose.SetTableName(VersionTable)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

// Create opens (creating if needed) the sqlite database at path, migrates it
// and returns the applied version.
func Create(ctx context.Context, path string, logger *slog.Logger) (int64, error) {
	adp := sqlite.New(logger)
	if err := adp.Connect(ctx, core.AdapterConfig{Type: "sqlite", Path: path}); err != nil {
		return 0, err
	}
	defer func() { _ = adp.Close() }()

	if err := Migrate(ctx, adp.DB); err != nil {
		return 0, err
	}
	return Version(ctx, adp.DB)
}
