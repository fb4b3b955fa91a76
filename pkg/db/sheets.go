package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakechorley/rodizio/pkg/sheetssql"
	"github.com/jakechorley/rodizio/pkg/table"
)

// SheetsStore keeps every table in a tab of one Google spreadsheet
type SheetsStore struct {
	ssql *sheetssql.DB
}

// SheetsSchema derives the managed tables of the spreadsheet, under their physical names
func SheetsSchema(tables Tables) (*sheetssql.Schema, error) {
	schemas := make([]sheetssql.TableSchema, 0, len(managedModels))
	for _, logical := range LogicalTables {
		m, ok := managedModels[logical]
		if !ok {
			continue
		}
		ts, err := sheetssql.TableFromModel(tables.Physical(logical), m)
		if err != nil {
			return nil, fmt.Errorf("failed to build schema for %s: %w", logical, err)
		}
		schemas = append(schemas, ts)
	}
	return sheetssql.SchemaFromTables(schemas...), nil
}

// NewSheetsStore connects to the spreadsheet and creates any missing managed tabs
func NewSheetsStore(ctx context.Context, client sheetssql.SheetsClient, spreadsheetID string, tables Tables) (*SheetsStore, error) {
	schema, err := SheetsSchema(tables)
	if err != nil {
		return nil, err
	}

	ssql, err := sheetssql.NewDB(ctx, client, spreadsheetID, schema)
	if err != nil {
		return nil, Unavailable("connect", spreadsheetID, err)
	}

	return &SheetsStore{ssql: ssql}, nil
}

// Read implements TableStore
func (s *SheetsStore) Read(ctx context.Context, name string) (*table.Table, error) {
	t, err := s.ssql.ReadTable(ctx, name)
	if errors.Is(err, sheetssql.ErrTableNotFound) {
		return table.Empty(name), nil
	}
	if err != nil {
		return nil, Unavailable("read", name, err)
	}
	return t, nil
}

// Append implements TableStore
func (s *SheetsStore) Append(ctx context.Context, name string, columns []string, rows [][]string) error {
	return Unavailable("append", name, s.ssql.AppendTable(ctx, name, columns, rows))
}

// ListTables implements TableLister
func (s *SheetsStore) ListTables(ctx context.Context) ([]string, error) {
	names, err := s.ssql.Tables(ctx)
	if err != nil {
		return nil, Unavailable("list", s.ssql.SpreadsheetID(), err)
	}
	return names, nil
}
