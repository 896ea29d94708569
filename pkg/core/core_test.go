package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferKind(t *testing.T) {
	tests := []struct {
		dbType string
		want   ColumnKind
	}{
		{"int", KindInteger},
		{"INTEGER", KindInteger},
		{"bigint", KindInteger},
		{"int unsigned", KindInteger},
		{"decimal(10,2)", KindFloat},
		{"NUMERIC", KindFloat},
		{"double precision", KindFloat},
		{"money", KindFloat},
		{"bit", KindBool},
		{"BOOLEAN", KindBool},
		{"datetime2", KindTime},
		{"timestamp with time zone", KindTime},
		{"varchar(255)", KindText},
		{"nvarchar", KindText},
		{"uniqueidentifier", KindText},
		{"point", KindText},
		{"", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.dbType))
		})
	}
}

func TestQuerySpec_FilterAndSort(t *testing.T) {
	assert.False(t, QuerySpec{FilterColumn: "name"}.HasFilter(), "value missing")
	assert.False(t, QuerySpec{FilterValue: "bob"}.HasFilter(), "column missing")
	assert.True(t, QuerySpec{FilterColumn: "name", FilterValue: "bob"}.HasFilter())

	assert.False(t, QuerySpec{}.HasSort())
	assert.Equal(t, SortAsc, QuerySpec{SortColumn: "id"}.Direction())
	assert.Equal(t, SortDesc, QuerySpec{SortColumn: "id", SortDirection: SortDesc}.Direction())

	assert.Equal(t, SortDesc, ParseSortDirection("desc"))
	assert.Equal(t, SortAsc, ParseSortDirection("sideways"))
}

func TestQuerySpec_Offset(t *testing.T) {
	tests := []struct {
		name string
		spec QuerySpec
		want int
	}{
		{"no limit ignores page", QuerySpec{Limit: 0, Page: 3}, 0},
		{"first page", QuerySpec{Limit: 25, Page: 1}, 0},
		{"unset page", QuerySpec{Limit: 25}, 0},
		{"third page", QuerySpec{Limit: 25, Page: 3}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Offset())
		})
	}
}

func TestQuerySpec_Validate(t *testing.T) {
	for _, limit := range []int{0, 10, 25, 50, 100} {
		assert.NoError(t, QuerySpec{Limit: limit}.Validate(), "limit %d", limit)
	}

	err := QuerySpec{Limit: 7}.Validate()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindQuery))

	err = QuerySpec{Limit: 10, Page: -1}.Validate()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindQuery))
}

func TestTableSchema_Lookup(t *testing.T) {
	s := &TableSchema{
		Schema: "dbo",
		Name:   "users",
		Columns: []Column{
			{Name: "id", PrimaryKey: true},
			{Name: "Name"},
		},
	}

	assert.Equal(t, 1, s.ColumnIndex("name"))
	assert.Equal(t, -1, s.ColumnIndex("missing"))
	assert.Equal(t, []string{"id", "Name"}, s.ColumnNames())
	assert.Equal(t, "dbo.users", s.QualifiedName())
	assert.Equal(t, []string{"id"}, s.KeyNames(), "unresolved key is the first column")

	s.Key = []int{1, 0}
	assert.Equal(t, []string{"Name", "id"}, s.KeyNames())
	assert.Equal(t, "Name", s.KeyColumns()[0].Name)

	assert.True(t, s.Matches("USERS"))
	assert.True(t, s.Matches("dbo.users"))
	assert.False(t, s.Matches("sales.users"))
	var none *TableSchema
	assert.False(t, none.Matches("users"))
}

func TestResultSet_Cell(t *testing.T) {
	rs := &ResultSet{
		Columns: []string{"id", "name"},
		Rows:    []Row{{Values: []string{"1", "Ada"}, Key: []any{int64(1)}}},
	}

	v, err := rs.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)

	_, err = rs.Cell(1, 0)
	assert.Error(t, err)
	_, err = rs.Cell(0, 2)
	assert.Error(t, err)

	var empty *ResultSet
	assert.Equal(t, 0, empty.Len())
}

func TestErrors(t *testing.T) {
	cause := errors.New("login failed")
	err := NewConnectionError("connect", "cannot reach sqlserver", cause)

	assert.Equal(t, "connect: cannot reach sqlserver: login failed", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("startup: %w", err)
	assert.True(t, IsKind(wrapped, KindConnection))
	assert.False(t, IsKind(wrapped, KindQuery))
	assert.Equal(t, KindConnection, KindOf(wrapped))

	nested := NewQueryError("insert", "statement failed", NewSchemaError("load", "no table", nil))
	assert.True(t, IsKind(nested, KindSchema))
	assert.Equal(t, KindQuery, KindOf(nested))

	assert.False(t, IsKind(errors.New("plain"), KindQuery))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestTargetConfig_ToAdapterConfig(t *testing.T) {
	file := TargetConfig{Type: "SQLite", Database: "demo.db"}
	assert.True(t, file.IsFileBased())
	cfg := file.ToAdapterConfig()
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "demo.db", cfg.Path)

	network := TargetConfig{Type: "sqlserver", Host: "db", User: "sa", Password: "pw", Database: "shop"}
	assert.False(t, network.IsFileBased())
	cfg = network.ToAdapterConfig()
	assert.Empty(t, cfg.Path)
	assert.Equal(t, "sa", cfg.Username)
	assert.Equal(t, "shop", cfg.Database)
}
