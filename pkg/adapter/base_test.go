package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/dialect"
)

func testDialect() *dialect.Dialect {
	return dialect.NewDialect("mock").
		Identifiers("[", "]", "]]", dialect.NormCaseInsensitive).
		DefaultSchema("dbo").
		PlaceholderStyle(dialect.PlaceholderAtP).
		Build()
}

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		expectErr bool
	}{
		{
			name:      "close with nil DB",
			setupDB:   false,
			expectErr: false,
		},
		{
			name:      "close with open DB",
			setupDB:   true,
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			err := base.Close()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name         string
		setupDB      bool
		setupMock    func(mock sqlmock.Sqlmock)
		sql          string
		args         []any
		wantAffected int64
		expectErr    bool
		errMsg       string
	}{
		{
			name:      "exec without connection",
			setupDB:   false,
			sql:       "DELETE FROM users",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "exec success reports rows affected",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE users").
					WithArgs("bob", 1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			sql:          "UPDATE users SET name = ? WHERE id = ?",
			args:         []any{"bob", 1},
			wantAffected: 1,
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			n, err := base.Exec(ctx, tt.sql, tt.args...)
			if tt.expectErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAffected, n)
			}
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		expectErr bool
		errMsg    string
	}{
		{
			name:      "query without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: true,
			errMsg:    "database connection not established",
		},
		{
			name:    "query success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name"}).
					AddRow(1, "alice").
					AddRow(2, "bob")
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			sql:       "SELECT id, name FROM users",
			expectErr: false,
		},
		{
			name:    "query with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INVALID").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: true,
			errMsg:    "failed to execute query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			rows, err := base.Query(ctx, tt.sql)
			if tt.expectErr {
				require.Error(t, err)
				assert.Nil(t, rows)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				require.NoError(t, err)
				assert.NotNil(t, rows)
				defer func() { _ = rows.Close() }()
			}
		})
	}
}

func TestBaseSQLAdapter_IsConnected(t *testing.T) {
	tests := []struct {
		name     string
		setupDB  bool
		expected bool
	}{
		{
			name:     "not connected",
			setupDB:  false,
			expected: false,
		},
		{
			name:     "connected",
			setupDB:  true,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, _, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()
				base.DB = db
			}

			assert.Equal(t, tt.expected, base.IsConnected())
		})
	}
}

func TestBaseSQLAdapter_ListTablesCommon(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("sales").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("customers").AddRow("orders"))

	base := &BaseSQLAdapter{DB: db, Cfg: core.AdapterConfig{Schema: "sales"}}
	tables, err := base.ListTablesCommon(context.Background(), testDialect())
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_GetTableMetadataCommon(t *testing.T) {
	t.Run("columns with primary key", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("FROM information_schema.columns").
			WithArgs("dbo", "users").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
				AddRow("user_id", "int", "NO", 1).
				AddRow("name", "nvarchar", "YES", 2).
				AddRow("email", "varchar", "YES", 3))
		mock.ExpectQuery("PRIMARY KEY").
			WithArgs("dbo", "users").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("user_id"))

		base := &BaseSQLAdapter{DB: db}
		meta, err := base.GetTableMetadataCommon(context.Background(), "users", testDialect())
		require.NoError(t, err)

		assert.Equal(t, "dbo", meta.Schema)
		assert.Equal(t, "users", meta.Name)
		require.Len(t, meta.Columns, 3)
		assert.True(t, meta.Columns[0].PrimaryKey)
		assert.False(t, meta.Columns[0].Nullable)
		assert.Equal(t, core.KindInteger, meta.Columns[0].Kind)
		assert.Equal(t, core.KindText, meta.Columns[1].Kind)
		assert.Equal(t, []string{"user_id"}, meta.PrimaryKey)
		// Reflection reads metadata only; it never scans the table.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("primary key lookup failure is not fatal", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("FROM information_schema.columns").
			WithArgs("archive", "log").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
				AddRow("line", "text", "YES", 1))
		mock.ExpectQuery("PRIMARY KEY").WillReturnError(assert.AnError)

		base := &BaseSQLAdapter{DB: db}
		meta, err := base.GetTableMetadataCommon(context.Background(), "archive.log", testDialect())
		require.NoError(t, err)
		assert.Empty(t, meta.PrimaryKey)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing table is a schema error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("FROM information_schema.columns").
			WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}))

		base := &BaseSQLAdapter{DB: db}
		_, err = base.GetTableMetadataCommon(context.Background(), "ghosts", testDialect())
		require.Error(t, err)
		assert.True(t, core.IsKind(err, core.KindSchema))
		assert.Contains(t, err.Error(), "table ghosts not found")
	})
}

func TestParseQualifiedName(t *testing.T) {
	schema, name := ParseQualifiedName("sales.orders", "dbo")
	assert.Equal(t, "sales", schema)
	assert.Equal(t, "orders", name)

	schema, name = ParseQualifiedName("orders", "dbo")
	assert.Equal(t, "dbo", schema)
	assert.Equal(t, "orders", name)
}

func TestCollectResultSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"ID", "name", "joined"}).
			AddRow(int64(7), []byte("Ada"), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
			AddRow(int64(8), nil, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	base := &BaseSQLAdapter{DB: db}
	rows, err := base.Query(context.Background(), "SELECT * FROM users")
	require.NoError(t, err)

	rs, err := CollectResultSet(rows, "id")
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "name", "joined"}, rs.Columns)
	require.Equal(t, 2, rs.Len())
	assert.Equal(t, []string{"7", "Ada", "2024-03-01"}, rs.Rows[0].Values)
	assert.Equal(t, []string{"8", "NULL", "2024-03-01 09:30:00"}, rs.Rows[1].Values)
	assert.Equal(t, []any{int64(7)}, rs.Rows[0].Key)
	assert.Equal(t, []any{int64(8)}, rs.Rows[1].Key)
}

func TestCollectResultSet_CompositeKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	query := func() *core.Rows {
		mock.ExpectQuery("SELECT").WillReturnRows(
			sqlmock.NewRows([]string{"user_id", "role", "since"}).
				AddRow(int64(2), "admin", "2024").
				AddRow(int64(2), "editor", "2025"))
		rows, err := (&BaseSQLAdapter{DB: db}).Query(context.Background(), "SELECT * FROM user_roles")
		require.NoError(t, err)
		return rows
	}

	rs, err := CollectResultSet(query(), "role", "USER_ID")
	require.NoError(t, err)
	assert.Equal(t, []any{"admin", int64(2)}, rs.Rows[0].Key, "key values follow key order")
	assert.Equal(t, []any{"editor", int64(2)}, rs.Rows[1].Key)

	rs, err = CollectResultSet(query(), "user_id", "missing")
	require.NoError(t, err)
	assert.Nil(t, rs.Rows[0].Key, "a partial key is never captured")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"x", "x"},
		{[]byte("bytes"), "bytes"},
		{int64(42), "42"},
		{1.5, "1.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}
