// Package sheetssql treats a Google spreadsheet as a small table database.
//
// Every tab is a table whose first row holds the column headers. Tables
// declared in the Schema are managed: they also carry a second row with the
// column types and are created on startup when missing. Any other tab is read
// with its header row only.
package sheetssql

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrTableNotFound is returned when the spreadsheet has no tab with the requested name
var ErrTableNotFound = errors.New("table not found")

// SheetsClient defines the interface for sheets operations
type SheetsClient interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
	AppendRows(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error
	CreateSheet(ctx context.Context, spreadsheetID, sheetTitle string) (int64, error)
	ListSheets(ctx context.Context, spreadsheetID string) ([]string, error)
}

// Column defines a column with name and type
type Column struct {
	Name string
	Type string // e.g., "text", "date", "int", "bool", "uuid", "shift", "week"
}

// TableSchema defines the structure of a table
type TableSchema struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the header row of the table
func (ts TableSchema) ColumnNames() []string {
	names := make([]string, len(ts.Columns))
	for i, c := range ts.Columns {
		names[i] = c.Name
	}
	return names
}

// Schema defines the database schema
type Schema struct {
	Tables []TableSchema
}

// Table returns the managed table with the given name
func (s *Schema) Table(name string) (TableSchema, bool) {
	if s == nil {
		return TableSchema{}, false
	}
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSchema{}, false
}

// DB represents a connection to a Google Sheets "database"
type DB struct {
	client        SheetsClient
	spreadsheetID string
	schema        *Schema

	mu     sync.Mutex
	sheets map[string]bool
}

// NewDB creates a new Sheets SQL database connection and ensures schema exists
func NewDB(ctx context.Context, client SheetsClient, spreadsheetID string, schema *Schema) (*DB, error) {
	db := &DB{
		client:        client,
		spreadsheetID: spreadsheetID,
		schema:        schema,
	}

	if err := db.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// SpreadsheetID returns the database spreadsheet ID
func (db *DB) SpreadsheetID() string {
	return db.spreadsheetID
}

// Tables lists every tab in the spreadsheet
func (db *DB) Tables(ctx context.Context) ([]string, error) {
	names, err := db.client.ListSheets(ctx, db.spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	db.setSheets(names)
	return names, nil
}

func (db *DB) setSheets(names []string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sheets = make(map[string]bool, len(names))
	for _, n := range names {
		db.sheets[n] = true
	}
}

func (db *DB) markSheet(name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.sheets == nil {
		db.sheets = make(map[string]bool)
	}
	db.sheets[name] = true
}

func (db *DB) hasCachedSheet(name string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.sheets[name]
}

// hasSheet checks the cached tab list, refreshing it once on a miss so tabs
// added by hand after startup are found
func (db *DB) hasSheet(ctx context.Context, name string) (bool, error) {
	if db.hasCachedSheet(name) {
		return true, nil
	}

	names, err := db.Tables(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}
