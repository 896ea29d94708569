package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

func connect(t *testing.T) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: MemoryPath}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func exec(t *testing.T, adp *Adapter, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		_, err := adp.Exec(context.Background(), s)
		require.NoError(t, err, s)
	}
}

func TestAdapter_ConnectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: path}))
	defer func() { _ = adp.Close() }()

	assert.True(t, adp.IsConnected())
	assert.NoError(t, adp.Ping(context.Background()))
}

func TestAdapter_ListTables(t *testing.T) {
	adp := connect(t)
	exec(t, adp,
		`CREATE TABLE zebra (id INTEGER PRIMARY KEY AUTOINCREMENT)`,
		`CREATE TABLE apple (name TEXT)`,
		`CREATE VIEW v_apple AS SELECT * FROM apple`,
	)

	tables, err := adp.ListTables(context.Background())
	require.NoError(t, err)
	// AUTOINCREMENT creates sqlite_sequence, which must be hidden.
	assert.Equal(t, []string{"apple", "zebra"}, tables)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	tests := []struct {
		name      string
		ddl       string
		table     string
		wantPK    []string
		wantCols  []string
		wantKinds []core.ColumnKind
		wantNull  []bool
	}{
		{
			name:      "single primary key",
			ddl:       `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score REAL)`,
			table:     "users",
			wantPK:    []string{"id"},
			wantCols:  []string{"id", "name", "score"},
			wantKinds: []core.ColumnKind{core.KindInteger, core.KindText, core.KindFloat},
			wantNull:  []bool{true, false, true},
		},
		{
			name:      "composite key ordered by key position",
			ddl:       `CREATE TABLE grants (role TEXT, user_id INTEGER, PRIMARY KEY (user_id, role))`,
			table:     "main.grants",
			wantPK:    []string{"user_id", "role"},
			wantCols:  []string{"role", "user_id"},
			wantKinds: []core.ColumnKind{core.KindText, core.KindInteger},
			wantNull:  []bool{true, true},
		},
		{
			name:      "no primary key",
			ddl:       `CREATE TABLE log (msg VARCHAR(200), at TIMESTAMP)`,
			table:     "log",
			wantPK:    []string{},
			wantCols:  []string{"msg", "at"},
			wantKinds: []core.ColumnKind{core.KindText, core.KindTime},
			wantNull:  []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adp := connect(t)
			exec(t, adp, tt.ddl)

			meta, err := adp.GetTableMetadata(context.Background(), tt.table)
			require.NoError(t, err)
			assert.Equal(t, "main", meta.Schema)
			assert.Equal(t, tt.wantPK, meta.PrimaryKey)

			var names []string
			var kinds []core.ColumnKind
			var nulls []bool
			for _, c := range meta.Columns {
				names = append(names, c.Name)
				kinds = append(kinds, c.Kind)
				nulls = append(nulls, c.Nullable)
			}
			assert.Equal(t, tt.wantCols, names)
			assert.Equal(t, tt.wantKinds, kinds)
			assert.Equal(t, tt.wantNull, nulls)
			assert.Equal(t, 1, meta.Columns[0].Position)
		})
	}
}

func TestAdapter_GetTableMetadata_PrimaryKey(t *testing.T) {
	adp := connect(t)
	exec(t, adp,
		`CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`,
		`CREATE TABLE pair (b TEXT, a INTEGER, note TEXT, PRIMARY KEY (a, b))`,
	)

	meta, err := adp.GetTableMetadata(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, meta.PrimaryKey)
	assert.True(t, meta.Columns[0].PrimaryKey)
	assert.False(t, meta.Columns[1].PrimaryKey)

	meta, err = adp.GetTableMetadata(context.Background(), "pair")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, meta.PrimaryKey, "key order, not column order")
	assert.False(t, meta.Columns[2].PrimaryKey)
}

func TestAdapter_GetTableMetadata_Missing(t *testing.T) {
	adp := connect(t)

	_, err := adp.GetTableMetadata(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindSchema))
	assert.Contains(t, err.Error(), "table nope not found")
}

func TestAdapter_NotConnected(t *testing.T) {
	adp := New(nil)
	ctx := context.Background()

	_, err := adp.ListTables(ctx)
	assert.Error(t, err)
	_, err = adp.GetTableMetadata(ctx, "t")
	assert.Error(t, err)
	_, err = adp.Exec(ctx, "SELECT 1")
	assert.Error(t, err)
}

func TestAdapter_CollectResultSet(t *testing.T) {
	adp := connect(t)
	exec(t, adp,
		`CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT, n REAL)`,
		`INSERT INTO t (id, v, n) VALUES (7, 'x', NULL), (9, NULL, 1.5)`,
	)

	rows, err := adp.Query(context.Background(), `SELECT * FROM t ORDER BY id`)
	require.NoError(t, err)
	rs, err := adapter.CollectResultSet(rows, "id")
	require.NoError(t, err)

	require.Equal(t, 2, rs.Len())
	assert.Equal(t, []string{"7", "x", "NULL"}, rs.Rows[0].Values)
	assert.Equal(t, []string{"9", "NULL", "1.5"}, rs.Rows[1].Values)
	assert.Equal(t, []any{int64(7)}, rs.Rows[0].Key)
}

func TestRegistration(t *testing.T) {
	for _, name := range []string{"sqlite", "sqlite3", "SQLite"} {
		assert.True(t, adapter.IsRegistered(name), name)
	}
}
