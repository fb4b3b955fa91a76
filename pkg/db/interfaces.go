package db

import (
	"context"

	"github.com/jakechorley/rodizio/pkg/table"
)

// TableStore is a named-table storage backend.
// The Sheets, Postgres and SQLite backends all implement this interface.
type TableStore interface {
	// Read returns the whole table. A table that does not exist yet is
	// returned empty with a nil error.
	Read(ctx context.Context, name string) (*table.Table, error)
	// Append adds rows to the table, creating it when missing. Values are
	// written as plain text and empty input is a no-op.
	Append(ctx context.Context, name string, columns []string, rows [][]string) error
}

// TableLister is implemented by stores that can enumerate their tables
type TableLister interface {
	ListTables(ctx context.Context) ([]string, error)
}
