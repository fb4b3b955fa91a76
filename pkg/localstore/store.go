// Package localstore keeps tables in a single SQLite file for offline use.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/table"
)

// Store implements db.TableStore on SQLite through gorm
type Store struct {
	gdb *gorm.DB
}

// OpenDB opens (creating if needed) the SQLite file at path and migrates it
func OpenDB(path string) (*Store, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, db.Unavailable("connect", path, err)
	}
	if err := gdb.AutoMigrate(&StoredTable{}, &StoredRow{}); err != nil {
		return nil, db.Unavailable("connect", path, fmt.Errorf("failed to migrate: %w", err))
	}
	return &Store{gdb: gdb}, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Read implements db.TableStore
func (s *Store) Read(ctx context.Context, name string) (*table.Table, error) {
	var meta StoredTable
	err := s.gdb.WithContext(ctx).Where("name = ?", name).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return table.Empty(name), nil
	}
	if err != nil {
		return nil, db.Unavailable("read", name, err)
	}

	var columns []string
	if err := json.Unmarshal([]byte(meta.ColumnsJSON), &columns); err != nil {
		return nil, db.Unavailable("read", name, fmt.Errorf("corrupt columns: %w", err))
	}

	var stored []StoredRow
	if err := s.gdb.WithContext(ctx).Where("table_name = ?", name).Order("id").Find(&stored).Error; err != nil {
		return nil, db.Unavailable("read", name, err)
	}

	out := table.New(name, columns...)
	for _, r := range stored {
		var cells []string
		if err := json.Unmarshal([]byte(r.CellsJSON), &cells); err != nil {
			return nil, db.Unavailable("read", name, fmt.Errorf("corrupt row %d: %w", r.ID, err))
		}
		out.Append(cells...)
	}
	return out, nil
}

// Append implements db.TableStore
func (s *Store) Append(ctx context.Context, name string, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meta StoredTable
		var existing []string
		err := tx.Where("name = ?", name).First(&meta).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			meta = StoredTable{Name: name}
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(meta.ColumnsJSON), &existing); err != nil {
				return fmt.Errorf("corrupt columns: %w", err)
			}
		}

		merged, positions := mergeColumns(existing, columns)
		encoded, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		meta.ColumnsJSON = string(encoded)
		if err := tx.Save(&meta).Error; err != nil {
			return err
		}

		batch := make([]StoredRow, 0, len(rows))
		for _, row := range rows {
			cells := make([]string, len(merged))
			for i, v := range row {
				if i < len(positions) {
					cells[positions[i]] = v
				}
			}
			data, err := json.Marshal(cells)
			if err != nil {
				return err
			}
			batch = append(batch, StoredRow{TableName: name, CellsJSON: string(data)})
		}
		return tx.CreateInBatches(batch, 500).Error
	})
	return db.Unavailable("append", name, err)
}

// ListTables implements db.TableLister
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.gdb.WithContext(ctx).Model(&StoredTable{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, db.Unavailable("list", "sqlite", err)
	}
	return names, nil
}

// mergeColumns appends unseen columns to existing and returns where each of
// columns lands in the merged list
func mergeColumns(existing, columns []string) ([]string, []int) {
	merged := append([]string(nil), existing...)
	index := make(map[string]int, len(merged))
	for i, c := range merged {
		index[c] = i
	}

	positions := make([]int, len(columns))
	for i, c := range columns {
		pos, ok := index[c]
		if !ok {
			merged = append(merged, c)
			pos = len(merged) - 1
			index[c] = pos
		}
		positions[i] = pos
	}
	return merged, positions
}
