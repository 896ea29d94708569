package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mysqldialect "github.com/leapstack-labs/leaptable/pkg/adapters/mysql/dialect"
	pgdialect "github.com/leapstack-labs/leaptable/pkg/adapters/postgres/dialect"
	sqlitedialect "github.com/leapstack-labs/leaptable/pkg/adapters/sqlite/dialect"
	mssqldialect "github.com/leapstack-labs/leaptable/pkg/adapters/sqlserver/dialect"
	"github.com/leapstack-labs/leaptable/pkg/core"
)

func usersSchema(schema string) *core.TableSchema {
	return &core.TableSchema{
		Schema: schema,
		Name:   "users",
		Columns: []core.Column{
			{Name: "id", Type: "int", Kind: core.KindInteger, PrimaryKey: true},
			{Name: "name", Type: "varchar", Kind: core.KindText},
			{Name: "email", Type: "varchar", Kind: core.KindText, Nullable: true},
			{Name: "active", Type: "bit", Kind: core.KindBool},
		},
	}
}

func TestSelect_SQLite(t *testing.T) {
	b := New(sqlitedialect.SQLite)
	s := usersSchema("main")

	tests := []struct {
		name     string
		spec     core.QuerySpec
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no parameters",
			spec:    core.QuerySpec{},
			wantSQL: `SELECT * FROM "main"."users"`,
		},
		{
			name:    "filter column without value is ignored",
			spec:    core.QuerySpec{FilterColumn: "name"},
			wantSQL: `SELECT * FROM "main"."users"`,
		},
		{
			name:    "filter value without column is ignored",
			spec:    core.QuerySpec{FilterValue: "ann"},
			wantSQL: `SELECT * FROM "main"."users"`,
		},
		{
			name:     "equality filter coerces by kind",
			spec:     core.QuerySpec{FilterColumn: "id", FilterValue: "42"},
			wantSQL:  `SELECT * FROM "main"."users" WHERE "id" = ?`,
			wantArgs: []any{int64(42)},
		},
		{
			name:    "sort defaults to ascending",
			spec:    core.QuerySpec{SortColumn: "name", Limit: 10},
			wantSQL: `SELECT * FROM "main"."users" ORDER BY "name" ASC LIMIT 10`,
		},
		{
			name:     "everything",
			spec:     core.QuerySpec{FilterColumn: "NAME", FilterValue: "ann", SortColumn: "email", SortDirection: core.SortDesc, Limit: 25, Page: 3},
			wantSQL:  `SELECT * FROM "main"."users" WHERE "name" = ? ORDER BY "email" DESC LIMIT 25 OFFSET 50`,
			wantArgs: []any{"ann"},
		},
		{
			name:    "page ignored without limit",
			spec:    core.QuerySpec{Page: 4},
			wantSQL: `SELECT * FROM "main"."users"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := b.Select(s, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			assert.Equal(t, tt.wantArgs, stmt.Args)
		})
	}
}

func TestSelect_SQLServer(t *testing.T) {
	b := New(mssqldialect.SQLServer)
	s := usersSchema("dbo")

	tests := []struct {
		name    string
		spec    core.QuerySpec
		wantSQL string
	}{
		{
			name:    "no limit",
			spec:    core.QuerySpec{SortColumn: "name"},
			wantSQL: `SELECT * FROM [dbo].[users] ORDER BY [name] ASC`,
		},
		{
			name:    "first page uses TOP",
			spec:    core.QuerySpec{SortColumn: "name", Limit: 10, Page: 1},
			wantSQL: `SELECT TOP (10) * FROM [dbo].[users] ORDER BY [name] ASC`,
		},
		{
			name:    "later page uses OFFSET FETCH",
			spec:    core.QuerySpec{SortColumn: "name", SortDirection: core.SortDesc, Limit: 10, Page: 2},
			wantSQL: `SELECT * FROM [dbo].[users] ORDER BY [name] DESC OFFSET 10 ROWS FETCH NEXT 10 ROWS ONLY`,
		},
		{
			name:    "OFFSET FETCH without sort orders by constant",
			spec:    core.QuerySpec{Limit: 50, Page: 3},
			wantSQL: `SELECT * FROM [dbo].[users] ORDER BY (SELECT NULL) OFFSET 100 ROWS FETCH NEXT 50 ROWS ONLY`,
		},
		{
			name:    "filter placeholder",
			spec:    core.QuerySpec{FilterColumn: "email", FilterValue: "a@b.c", Limit: 100},
			wantSQL: `SELECT TOP (100) * FROM [dbo].[users] WHERE [email] = @p1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := b.Select(s, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
		})
	}
}

func TestSelect_Errors(t *testing.T) {
	b := New(pgdialect.Postgres)
	s := usersSchema("public")

	tests := []struct {
		name string
		spec core.QuerySpec
		kind core.ErrorKind
	}{
		{name: "limit outside the offered set", spec: core.QuerySpec{Limit: 7}, kind: core.KindQuery},
		{name: "negative page", spec: core.QuerySpec{Limit: 10, Page: -1}, kind: core.KindQuery},
		{name: "unknown filter column", spec: core.QuerySpec{FilterColumn: "age", FilterValue: "3"}, kind: core.KindSchema},
		{name: "unknown sort column", spec: core.QuerySpec{SortColumn: "age"}, kind: core.KindSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Select(s, tt.spec)
			require.Error(t, err)
			assert.Equal(t, tt.kind, core.KindOf(err))
		})
	}
}

func TestCount(t *testing.T) {
	b := New(pgdialect.Postgres)
	stmt, err := b.Count(usersSchema("public"), core.QuerySpec{
		FilterColumn: "active", FilterValue: "true", SortColumn: "name", Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "public"."users" WHERE "active" = $1`, stmt.SQL)
	assert.Equal(t, []any{true}, stmt.Args)
}

func TestUpdate(t *testing.T) {
	b := New(mssqldialect.SQLServer)
	s := usersSchema("dbo")

	stmt, err := b.Update(s, []any{int64(7)}, "name", "Zed")
	require.NoError(t, err)
	assert.Equal(t, `UPDATE [dbo].[users] SET [name] = @p1 WHERE [id] = @p2`, stmt.SQL)
	assert.Equal(t, []any{"Zed", int64(7)}, stmt.Args)

	t.Run("string key is coerced by identity kind", func(t *testing.T) {
		stmt, err := b.Update(s, []any{"7"}, "active", "yes")
		require.NoError(t, err)
		assert.Equal(t, []any{true, int64(7)}, stmt.Args)
	})

	t.Run("nil value writes NULL", func(t *testing.T) {
		stmt, err := b.Update(s, []any{int64(7)}, "email", nil)
		require.NoError(t, err)
		assert.Equal(t, []any{nil, int64(7)}, stmt.Args)
	})

	t.Run("identity follows the resolved column", func(t *testing.T) {
		s := usersSchema("dbo")
		s.Key = []int{2}
		stmt, err := b.Update(s, []any{"a@b.c"}, "name", "x")
		require.NoError(t, err)
		assert.Equal(t, `UPDATE [dbo].[users] SET [name] = @p1 WHERE [email] = @p2`, stmt.SQL)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := b.Update(s, []any{int64(7)}, "age", "3")
		assert.True(t, core.IsKind(err, core.KindSchema))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := b.Update(s, nil, "name", "x")
		assert.True(t, core.IsKind(err, core.KindQuery))

		_, err = b.Update(s, []any{nil}, "name", "x")
		assert.True(t, core.IsKind(err, core.KindQuery))
	})
}

func rolesSchema() *core.TableSchema {
	return &core.TableSchema{
		Schema: "main",
		Name:   "user_roles",
		Columns: []core.Column{
			{Name: "user_id", Type: "INTEGER", Kind: core.KindInteger, PrimaryKey: true},
			{Name: "role", Type: "TEXT", Kind: core.KindText, PrimaryKey: true},
			{Name: "note", Type: "TEXT", Kind: core.KindText, Nullable: true},
		},
		Key:    []int{0, 1},
		Source: core.IdentityCompositeKey,
	}
}

func TestCompositeKey(t *testing.T) {
	b := New(sqlitedialect.SQLite)
	s := rolesSchema()

	t.Run("update matches every key column", func(t *testing.T) {
		stmt, err := b.Update(s, []any{"2", "admin"}, "note", "x")
		require.NoError(t, err)
		assert.Equal(t, `UPDATE "main"."user_roles" SET "note" = ? WHERE "user_id" = ? AND "role" = ?`, stmt.SQL)
		assert.Equal(t, []any{"x", int64(2), "admin"}, stmt.Args)
	})

	t.Run("delete matches every key column", func(t *testing.T) {
		stmt, err := b.Delete(s, []any{int64(2), "editor"})
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM "main"."user_roles" WHERE "user_id" = ? AND "role" = ?`, stmt.SQL)
		assert.Equal(t, []any{int64(2), "editor"}, stmt.Args)
	})

	t.Run("partial key is rejected", func(t *testing.T) {
		_, err := b.Delete(s, []any{int64(2)})
		require.Error(t, err)
		assert.True(t, core.IsKind(err, core.KindQuery))
		assert.Contains(t, err.Error(), "needs 2 values (user_id, role), got 1")
	})

	t.Run("postgres numbers placeholders across set and key", func(t *testing.T) {
		stmt, err := New(pgdialect.Postgres).Update(s, []any{int64(4), "editor"}, "role", "viewer")
		require.NoError(t, err)
		assert.Equal(t, `UPDATE "main"."user_roles" SET "role" = $1 WHERE "user_id" = $2 AND "role" = $3`, stmt.SQL)
	})
}

func TestInsert(t *testing.T) {
	s := usersSchema("public")

	t.Run("schema order and only supplied columns", func(t *testing.T) {
		b := New(pgdialect.Postgres)
		stmt, err := b.Insert(s, map[string]any{"email": "e@x.io", "id": "5"})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "public"."users" ("id", "email") VALUES ($1, $2)`, stmt.SQL)
		assert.Equal(t, []any{int64(5), "e@x.io"}, stmt.Args)
	})

	t.Run("column names match case-insensitively", func(t *testing.T) {
		b := New(pgdialect.Postgres)
		stmt, err := b.Insert(s, map[string]any{"Name": "Ann"})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "public"."users" ("name") VALUES ($1)`, stmt.SQL)
	})

	t.Run("empty values use default values", func(t *testing.T) {
		b := New(pgdialect.Postgres)
		stmt, err := b.Insert(s, nil)
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "public"."users" DEFAULT VALUES`, stmt.SQL)
		assert.Empty(t, stmt.Args)
	})

	t.Run("mysql default values form", func(t *testing.T) {
		b := New(mysqldialect.MySQL)
		stmt, err := b.Insert(&core.TableSchema{Name: "users", Columns: s.Columns}, map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO `users` () VALUES ()", stmt.SQL)
	})

	t.Run("unknown column", func(t *testing.T) {
		b := New(pgdialect.Postgres)
		_, err := b.Insert(s, map[string]any{"age": 3})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `column "age" does not exist`)
	})
}

func TestDelete(t *testing.T) {
	b := New(sqlitedialect.SQLite)
	s := usersSchema("main")

	stmt, err := b.Delete(s, []any{int64(3)})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "main"."users" WHERE "id" = ?`, stmt.SQL)
	assert.Equal(t, []any{int64(3)}, stmt.Args)

	_, err = b.Delete(s, nil)
	assert.True(t, core.IsKind(err, core.KindQuery))
}

func TestQuoting(t *testing.T) {
	b := New(mssqldialect.SQLServer)
	s := &core.TableSchema{
		Schema:  "dbo",
		Name:    "odd]name",
		Columns: []core.Column{{Name: "key col", Kind: core.KindText}},
	}
	stmt, err := b.Select(s, core.QuerySpec{SortColumn: "key col"})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM [dbo].[odd]]name] ORDER BY [key col] ASC`, stmt.SQL)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		kind core.ColumnKind
		raw  string
		want any
	}{
		{name: "integer", kind: core.KindInteger, raw: " 12 ", want: int64(12)},
		{name: "integer passthrough", kind: core.KindInteger, raw: "twelve", want: "twelve"},
		{name: "float", kind: core.KindFloat, raw: "1.25", want: 1.25},
		{name: "float passthrough", kind: core.KindFloat, raw: "1,25", want: "1,25"},
		{name: "bool true", kind: core.KindBool, raw: "TRUE", want: true},
		{name: "bool numeric", kind: core.KindBool, raw: "0", want: false},
		{name: "bool word", kind: core.KindBool, raw: "No", want: false},
		{name: "bool passthrough", kind: core.KindBool, raw: "maybe", want: "maybe"},
		{name: "time stays text", kind: core.KindTime, raw: "2024-01-02", want: "2024-01-02"},
		{name: "text keeps spaces", kind: core.KindText, raw: " hi ", want: " hi "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(core.Column{Kind: tt.kind}, tt.raw))
		})
	}
}
