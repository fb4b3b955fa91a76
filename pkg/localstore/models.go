package localstore

import "time"

// StoredTable holds the column order of one logical table
type StoredTable struct {
	Name        string `gorm:"primaryKey;size:255"`
	ColumnsJSON string `gorm:"type:text"`
	UpdatedAt   time.Time
}

// StoredRow is one row, its cells aligned to the table's columns at write time
type StoredRow struct {
	ID        uint   `gorm:"primaryKey"`
	TableName string `gorm:"column:table_name;index;size:255"`
	CellsJSON string `gorm:"type:text"`
	CreatedAt time.Time
}
