// Package db holds the storage abstraction and the typed repository on top of it.
package db

import (
	"context"
	"fmt"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/sheetssql"
	"github.com/jakechorley/rodizio/pkg/table"
)

// DB reads and writes the logical tables through a TableStore
type DB struct {
	store  TableStore
	tables Tables
}

// New creates a repository over store using the given physical table names
func New(store TableStore, tables Tables) *DB {
	return &DB{store: store, tables: tables}
}

// PhysicalName returns the physical name of a logical table
func (db *DB) PhysicalName(logical string) string {
	return db.tables.Physical(logical)
}

// ReadTable reads a logical table as stored, without any normalization
func (db *DB) ReadTable(ctx context.Context, logical string) (*table.Table, error) {
	return db.store.Read(ctx, db.tables.Physical(logical))
}

// InsertAvailability appends availability records
func (db *DB) InsertAvailability(ctx context.Context, records []model.AvailabilityRecord) error {
	return insert(ctx, db, TableAvailability, records)
}

// InsertLoading appends loading records
func (db *DB) InsertLoading(ctx context.Context, records []model.LoadingRecord) error {
	return insert(ctx, db, TableLoading, records)
}

// InsertReturns appends return records
func (db *DB) InsertReturns(ctx context.Context, records []model.ReturnRecord) error {
	return insert(ctx, db, TableReturns, records)
}

// InsertCancellations appends cancellation records
func (db *DB) InsertCancellations(ctx context.Context, records []model.CancellationRecord) error {
	return insert(ctx, db, TableCancellation, records)
}

// InsertRefusals appends refusal records
func (db *DB) InsertRefusals(ctx context.Context, records []model.RefusalRecord) error {
	return insert(ctx, db, TableRefusals, records)
}

// InsertImportLog appends one import log entry
func (db *DB) InsertImportLog(ctx context.Context, entry *model.ImportLog) error {
	return insert(ctx, db, TableImportLog, []model.ImportLog{*entry})
}

// GetImportLogs retrieves all import log entries
func (db *DB) GetImportLogs(ctx context.Context) ([]model.ImportLog, error) {
	t, err := db.ReadTable(ctx, TableImportLog)
	if err != nil {
		return nil, err
	}
	logs, err := sheetssql.Decode[model.ImportLog](table.NormalizeColumns(t))
	if err != nil {
		return nil, fmt.Errorf("failed to decode import log: %w", err)
	}
	return logs, nil
}

// GetLoadedTaskIDs returns the task IDs already persisted in the loading table
func (db *DB) GetLoadedTaskIDs(ctx context.Context) (map[string]bool, error) {
	t, err := db.ReadTable(ctx, TableLoading)
	if err != nil {
		return nil, err
	}
	t = table.NormalizeColumns(t)

	ids := make(map[string]bool, t.Len())
	for i := 0; i < t.Len(); i++ {
		if id := model.CanonicalID(t.Get(i, "task_id")); id != "" {
			ids[id] = true
		}
	}
	return ids, nil
}

func insert[T any](ctx context.Context, db *DB, logical string, records []T) error {
	if len(records) == 0 {
		return nil
	}
	columns, rows, err := sheetssql.Encode(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s records: %w", logical, err)
	}
	return db.store.Append(ctx, db.tables.Physical(logical), columns, rows)
}
