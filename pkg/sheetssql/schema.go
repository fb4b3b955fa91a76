package sheetssql

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Struct tags read by TableFromModel
const (
	headerTag = "ssql_header"
	typeTag   = "ssql_type"
)

// SchemaFromTables builds a Schema from table definitions
func SchemaFromTables(tables ...TableSchema) *Schema {
	return &Schema{Tables: tables}
}

// TableFromModel builds a TableSchema named name from a struct whose fields
// all carry `ssql_header` and `ssql_type` tags
func TableFromModel(name string, model interface{}) (TableSchema, error) {
	t := reflect.TypeOf(model)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return TableSchema{}, fmt.Errorf("model must be a struct, got %v", kindOf(t))
	}
	if t.NumField() == 0 {
		return TableSchema{}, fmt.Errorf("struct %s has no fields", t.Name())
	}

	columns := make([]Column, t.NumField())
	for i := range columns {
		col, err := columnOf(t, t.Field(i))
		if err != nil {
			return TableSchema{}, err
		}
		columns[i] = col
	}

	return TableSchema{Name: name, Columns: columns}, nil
}

func kindOf(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.Kind().String()
}

func columnOf(owner reflect.Type, field reflect.StructField) (Column, error) {
	header, ok := field.Tag.Lookup(headerTag)
	if !ok || header == "" {
		return Column{}, fmt.Errorf("field %s.%s missing '%s' tag", owner.Name(), field.Name, headerTag)
	}
	typ, ok := field.Tag.Lookup(typeTag)
	if !ok || typ == "" {
		return Column{}, fmt.Errorf("field %s.%s missing '%s' tag", owner.Name(), field.Name, typeTag)
	}
	return Column{Name: header, Type: typ}, nil
}

// ensureSchema creates the managed tables that are missing and checks the
// header and type rows of those that exist
func (db *DB) ensureSchema(ctx context.Context) error {
	if _, err := db.Tables(ctx); err != nil {
		return fmt.Errorf("failed to get existing sheets: %w", err)
	}

	for _, ts := range db.schema.Tables {
		if !db.hasCachedSheet(ts.Name) {
			if err := db.createTable(ctx, ts.Name, ts.ColumnNames(), columnTypes(ts)); err != nil {
				return fmt.Errorf("failed to create table %s: %w", ts.Name, err)
			}
			continue
		}
		if err := db.verifyTableSchema(ctx, ts); err != nil {
			return fmt.Errorf("table %s schema mismatch: %w", ts.Name, err)
		}
	}

	return nil
}

func columnTypes(ts TableSchema) []string {
	types := make([]string, len(ts.Columns))
	for i, c := range ts.Columns {
		types[i] = c.Type
	}
	return types
}

// verifyTableSchema compares a tab's first two rows with the schema and
// reports every mismatching column
func (db *DB) verifyTableSchema(ctx context.Context, ts TableSchema) error {
	values, err := db.client.GetValues(ctx, db.spreadsheetID, fmt.Sprintf("%s!A1:ZZ2", ts.Name))
	if err != nil {
		return fmt.Errorf("failed to read table headers: %w", err)
	}
	if len(values) < 2 {
		return fmt.Errorf("table missing header or type row")
	}

	headers, types := values[0], values[1]
	if len(headers) != len(ts.Columns) {
		return fmt.Errorf("expected %d columns, found %d", len(ts.Columns), len(headers))
	}

	var errs []error
	for i, col := range ts.Columns {
		if got := cellAt(headers, i); got != col.Name {
			errs = append(errs, fmt.Errorf("column %d: expected header '%s', got '%s'", i, col.Name, got))
			continue
		}
		if got := cellAt(types, i); got != col.Type {
			errs = append(errs, fmt.Errorf("column %d (%s): expected type '%s', got '%s'", i, col.Name, col.Type, got))
		}
	}
	return errors.Join(errs...)
}

func cellAt(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

// createTable adds a tab holding the header row and, when types is non-nil,
// the type row of a managed table
func (db *DB) createTable(ctx context.Context, name string, headers, types []string) error {
	if _, err := db.client.CreateSheet(ctx, db.spreadsheetID, name); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	db.markSheet(name)

	rows := [][]interface{}{toCells(headers)}
	if types != nil {
		rows = append(rows, toCells(types))
	}
	if err := db.client.AppendRows(ctx, db.spreadsheetID, name, rows); err != nil {
		return fmt.Errorf("failed to write headers and types: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
