package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	t.Run("Columns keep insertion order", func(t *testing.T) {
		table := New()
		require.NoError(t, table.AddColumn("a", []any{1.0, 2.0}))
		require.NoError(t, table.AddColumn("b", []any{"x", "y"}))

		assert.Equal(t, []string{"a", "b"}, table.Columns())
		assert.Equal(t, 2, table.Len())
	})

	t.Run("Duplicate and mismatched columns are rejected", func(t *testing.T) {
		table := New()
		require.NoError(t, table.AddColumn("a", []any{1.0}))

		assert.Error(t, table.AddColumn("a", []any{2.0}))
		assert.Error(t, table.AddColumn("b", []any{1.0, 2.0}))
	})

	t.Run("DropColumn removes name and values", func(t *testing.T) {
		table := New()
		require.NoError(t, table.AddColumn("a", []any{1.0}))
		require.NoError(t, table.AddColumn("b", []any{2.0}))

		require.NoError(t, table.DropColumn("a"))
		assert.Equal(t, []string{"b"}, table.Columns())
		assert.False(t, table.HasColumn("a"))

		assert.Error(t, table.DropColumn("a"))
	})

	t.Run("Float distinguishes nulls from values", func(t *testing.T) {
		table := New()
		require.NoError(t, table.AddColumn("a", []any{1.5, nil, "text"}))

		value, ok := table.Float("a", 0)
		assert.True(t, ok)
		assert.Equal(t, 1.5, value)

		_, ok = table.Float("a", 1)
		assert.False(t, ok)

		_, ok = table.Float("a", 2)
		assert.False(t, ok)

		assert.Equal(t, 1, table.CountNulls("a"))
	})

	t.Run("UniqueStrings dedups in first occurrence order", func(t *testing.T) {
		table := New()
		require.NoError(t, table.AddColumn("names", []any{"b", "a", "b", nil, ""}))

		assert.Equal(t, []string{"b", "a"}, table.UniqueStrings("names"))
	})
}
