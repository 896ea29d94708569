// Package schema reflects tables through an adapter, caches the result for
// the session and resolves which column identifies a row.
package schema

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

// Introspector lists tables and loads TableSchemas, caching both until
// Invalidate is called.
type Introspector struct {
	adp    adapter.Adapter
	logger *slog.Logger

	mu     sync.Mutex
	tables []string
	cache  map[string]*core.TableSchema
}

// New creates an Introspector over a connected adapter.
func New(adp adapter.Adapter, logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Introspector{
		adp:    adp,
		logger: logger,
		cache:  make(map[string]*core.TableSchema),
	}
}

// ListTables returns the table names in the configured schema.
func (i *Introspector) ListTables(ctx context.Context) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.tables != nil {
		return i.tables, nil
	}

	tables, err := i.adp.ListTables(ctx)
	if err != nil {
		return nil, i.classify(ctx, "list tables", err)
	}
	if tables == nil {
		tables = []string{}
	}
	i.tables = tables
	return tables, nil
}

// Load returns the schema of the named table, reflecting it on first use.
func (i *Introspector) Load(ctx context.Context, table string) (*core.TableSchema, error) {
	if strings.TrimSpace(table) == "" {
		return nil, core.NewSchemaError("load schema", "no table name given", nil)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	key := strings.ToLower(table)
	if s, ok := i.cache[key]; ok {
		return s, nil
	}

	meta, err := i.adp.GetTableMetadata(ctx, table)
	if err != nil {
		return nil, i.classify(ctx, "load schema", err)
	}

	s := FromMetadata(meta)
	i.warnIdentity(s, meta.PrimaryKey)
	i.cache[key] = s
	return s, nil
}

// Invalidate drops all cached metadata.
func (i *Introspector) Invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tables = nil
	i.cache = make(map[string]*core.TableSchema)
}

// classify reports a ConnectionError when the database no longer answers a
// ping. Otherwise typed errors pass through and the rest become SchemaErrors.
func (i *Introspector) classify(ctx context.Context, op string, err error) error {
	if pingErr := i.adp.Ping(ctx); pingErr != nil {
		return core.NewConnectionError(op, "database unreachable", err)
	}
	if core.KindOf(err) != "" {
		return err
	}
	return core.NewSchemaError(op, "reflection failed", err)
}

func (i *Introspector) warnIdentity(s *core.TableSchema, pk []string) {
	if s.Source != core.IdentityFirstColumn {
		return
	}
	attrs := []any{
		slog.String("table", s.QualifiedName()),
		slog.String("column", s.KeyNames()[0]),
	}
	if len(pk) > 0 {
		attrs = append(attrs, slog.String("primary_key", strings.Join(pk, ",")))
		i.logger.Warn("primary key columns not found, using first column as row identity", attrs...)
		return
	}
	i.logger.Warn("no primary key declared, using first column as row identity", attrs...)
}

// FromMetadata builds a TableSchema and resolves its row identity: every
// column of the declared primary key, in key order, otherwise the first
// physical column.
func FromMetadata(meta *core.TableMetadata) *core.TableSchema {
	s := &core.TableSchema{
		Schema:  meta.Schema,
		Name:    meta.Name,
		Columns: meta.Columns,
		Key:     []int{0},
		Source:  core.IdentityFirstColumn,
	}
	if len(meta.PrimaryKey) == 0 {
		return s
	}

	key := make([]int, 0, len(meta.PrimaryKey))
	for _, name := range meta.PrimaryKey {
		idx := s.ColumnIndex(name)
		if idx < 0 {
			return s
		}
		key = append(key, idx)
	}
	s.Key = key
	s.Source = core.IdentityPrimaryKey
	if len(key) > 1 {
		s.Source = core.IdentityCompositeKey
	}
	return s
}
