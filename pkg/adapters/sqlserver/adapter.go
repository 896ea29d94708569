// Package sqlserver provides a Microsoft SQL Server database adapter for leaptable.
package sqlserver

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	sqlserverdialect "github.com/leapstack-labs/leaptable/pkg/adapters/sqlserver/dialect"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver
)

const (
	defaultPort    = 1433
	defaultAppName = "leaptable"
)

// Adapter implements the adapter.Adapter interface for SQL Server.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQL Server adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQL Server dialect.
func (a *Adapter) Dialect() *dialect.Dialect {
	return sqlserverdialect.SQLServer
}

// Connect establishes a connection to SQL Server.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return core.NewConfigError("connect", "bad sqlserver params", err)
	}

	a.Logger.Debug("connecting to sqlserver",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.String("user", cfg.Username))

	if err := a.Open(ctx, "sqlserver", buildSQLServerDSN(cfg, params)); err != nil {
		return err
	}
	a.Cfg = cfg
	return nil
}

// ListTables returns the base tables in the configured schema.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return a.ListTablesCommon(ctx, a.Dialect())
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.Dialect())
}

// buildSQLServerDSN constructs a sqlserver:// connection URL.
func buildSQLServerDSN(cfg core.AdapterConfig, p *Params) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	q := url.Values{}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	appName := p.AppName
	if appName == "" {
		appName = defaultAppName
	}
	q.Set("app name", appName)
	if p.Encrypt != "" {
		q.Set("encrypt", p.Encrypt)
	}
	if p.TrustServerCertificate {
		q.Set("TrustServerCertificate", "true")
	}
	if p.ConnectionTimeout > 0 {
		q.Set("connection timeout", strconv.Itoa(p.ConnectionTimeout))
	}
	for k, v := range cfg.Options {
		q.Set(k, v)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		RawQuery: q.Encode(),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	if p.Instance != "" {
		u.Host = host
		u.Path = p.Instance
	} else {
		u.Host = net.JoinHostPort(host, strconv.Itoa(port))
	}
	return u.String()
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
