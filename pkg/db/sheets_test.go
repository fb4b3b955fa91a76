package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSheets struct {
	tabs   map[string][][]interface{}
	getErr error
}

func (s *stubSheets) GetValues(_ context.Context, _ string, sheetRange string) ([][]interface{}, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.tabs[sheetRange], nil
}

func (s *stubSheets) AppendRows(_ context.Context, _ string, sheetRange string, values [][]interface{}) error {
	s.tabs[sheetRange] = append(s.tabs[sheetRange], values...)
	return nil
}

func (s *stubSheets) CreateSheet(_ context.Context, _ string, sheetTitle string) (int64, error) {
	s.tabs[sheetTitle] = nil
	return 1, nil
}

func (s *stubSheets) ListSheets(context.Context, string) ([]string, error) {
	names := make([]string, 0, len(s.tabs))
	for n := range s.tabs {
		names = append(names, n)
	}
	return names, nil
}

func TestSheetsStore_CreatesManagedTabs(t *testing.T) {
	client := &stubSheets{tabs: map[string][][]interface{}{}}

	_, err := NewSheetsStore(context.Background(), client, "sheet", Tables{TableLoading: "carregamento"})
	require.NoError(t, err)

	assert.Contains(t, client.tabs, "carregamento")
	assert.Contains(t, client.tabs, "import_log")
	assert.NotContains(t, client.tabs, "roster")
	assert.Equal(t, "task_id", client.tabs["carregamento"][0][0])
	assert.Equal(t, "text", client.tabs["carregamento"][1][0])
}

func TestSheetsStore_ReadMissingTableIsEmpty(t *testing.T) {
	client := &stubSheets{tabs: map[string][][]interface{}{}}
	store, err := NewSheetsStore(context.Background(), client, "sheet", nil)
	require.NoError(t, err)

	got, err := store.Read(context.Background(), "roster")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestSheetsStore_ReadFailureIsUnavailable(t *testing.T) {
	client := &stubSheets{tabs: map[string][][]interface{}{}}
	store, err := NewSheetsStore(context.Background(), client, "sheet", nil)
	require.NoError(t, err)

	client.getErr = errors.New("quota exceeded")
	_, err = store.Read(context.Background(), "availability")

	var sue *StorageUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.Equal(t, "availability", sue.Table)
}
