package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaptable/pkg/core"
)

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"name":       "Name",
		"created_at": "Created At",
		"user_id":    "User Id",
		"EMAIL":      "Email",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), "input %q", in)
	}
}

func TestForm(t *testing.T) {
	c := newController(t, WithDefaultTable("users"))
	fields := Form(c.View().Schema)
	require.Len(t, fields, 3)

	assert.Equal(t, FormField{Name: "id", Label: "Id", Kind: core.KindInteger, Type: "INTEGER", Nullable: true, Key: true}, fields[0])
	assert.Equal(t, "Name", fields[1].Label)
	assert.False(t, fields[1].Nullable)
	assert.Nil(t, Form(nil))
}

func TestFormValues(t *testing.T) {
	got := FormValues(map[string]string{"id": "", "name": "Ann", "email": "  "})
	assert.Equal(t, map[string]any{"name": "Ann"}, got)
}

func TestFormValues_InsertUsesDefaults(t *testing.T) {
	c := newController(t, WithDefaultTable("users"))
	ctx := context.Background()

	require.NoError(t, c.OpenInsertForm())
	_, err := c.SubmitInsert(ctx, FormValues(map[string]string{"id": "", "name": "Ann", "email": ""}))
	require.NoError(t, err)

	require.NoError(t, c.Search(ctx, core.QuerySpec{FilterColumn: "name", FilterValue: "Ann", Limit: 10}))
	rs := c.View().Results
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, []string{"13", "Ann", "NULL"}, rs.Rows[0].Values)
}
