package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenDB(filepath.Join(t.TempDir(), "rodizio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRead_MissingTableIsEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Read(context.Background(), "roster")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Equal(t, "roster", got.Name)
}

func TestAppendThenRead(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "loading", []string{"task_id", "driver_id"}, [][]string{
		{"T1", "5"},
		{"T2", "6"},
	}))
	require.NoError(t, store.Append(ctx, "loading", []string{"driver_id", "week_key"}, [][]string{
		{"7", "2026-W07"},
	}))

	got, err := store.Read(ctx, "loading")
	require.NoError(t, err)
	assert.Equal(t, []string{"task_id", "driver_id", "week_key"}, got.Columns)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "T2", got.Get(1, "task_id"))
	assert.Equal(t, "", got.Get(1, "week_key"))
	assert.Equal(t, "7", got.Get(2, "driver_id"))
	assert.Equal(t, "2026-W07", got.Get(2, "week_key"))
	assert.Equal(t, "", got.Get(2, "task_id"))
}

func TestAppend_EmptyIsNoop(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "refusals", []string{"driver_id"}, nil))

	names, err := store.ListTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListTables(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "returns", []string{"driver_id"}, [][]string{{"1"}}))
	require.NoError(t, store.Append(ctx, "availability", []string{"driver_id"}, [][]string{{"1"}}))

	names, err := store.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"availability", "returns"}, names)
}

func TestMergeColumns(t *testing.T) {
	merged, positions := mergeColumns([]string{"a", "b"}, []string{"c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, merged)
	assert.Equal(t, []int{2, 0}, positions)
}
