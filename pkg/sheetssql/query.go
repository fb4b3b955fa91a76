package sheetssql

import (
	"context"
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/jakechorley/rodizio/pkg/table"
)

// ReadTable retrieves a whole tab as a table.
// Managed tables skip their type row. Returns ErrTableNotFound when the tab
// does not exist
func (db *DB) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	exists, err := db.hasSheet(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	values, err := db.client.GetValues(ctx, db.spreadsheetID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", name, err)
	}

	if len(values) == 0 {
		return table.Empty(name), nil
	}

	headers := cellStrings(values[0])
	skip := 1
	if _, managed := db.schema.Table(name); managed {
		skip = 2
	}

	out := table.New(name, headers...)
	if len(values) <= skip {
		return out, nil
	}
	for _, row := range values[skip:] {
		cells := cellStrings(row)
		if len(cells) > len(headers) {
			cells = cells[:len(headers)]
		}
		out.Append(cells...)
	}

	return out, nil
}

// AppendTable appends rows to a tab, matching the given columns to the tab's
// header by name. Missing tabs are created with the given columns as header
func (db *DB) AppendTable(ctx context.Context, name string, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	exists, err := db.hasSheet(ctx, name)
	if err != nil {
		return err
	}

	var headers []string
	schema, managed := db.schema.Table(name)
	switch {
	case managed:
		headers = schema.ColumnNames()
		if !exists {
			if err := db.createTable(ctx, name, headers, columnTypes(schema)); err != nil {
				return fmt.Errorf("failed to create table %s: %w", name, err)
			}
		}
	case !exists:
		headers = columns
		if err := db.createTable(ctx, name, headers, nil); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
	default:
		values, err := db.client.GetValues(ctx, db.spreadsheetID, fmt.Sprintf("%s!1:1", name))
		if err != nil {
			return fmt.Errorf("failed to read header of %s: %w", name, err)
		}
		if len(values) == 0 || len(values[0]) == 0 {
			headers = columns
			if err := db.client.AppendRows(ctx, db.spreadsheetID, name, [][]interface{}{toCells(headers)}); err != nil {
				return fmt.Errorf("failed to write header of %s: %w", name, err)
			}
		} else {
			headers = cellStrings(values[0])
		}
	}

	positions := make([]int, len(columns))
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	for i, c := range columns {
		pos, ok := index[c]
		if !ok {
			return fmt.Errorf("column %s not in table %s", c, name)
		}
		positions[i] = pos
	}

	cells := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		out := make([]interface{}, len(headers))
		for i := range out {
			out[i] = ""
		}
		for i, v := range row {
			if i < len(positions) {
				out[positions[i]] = v
			}
		}
		cells = append(cells, out)
	}

	if err := db.client.AppendRows(ctx, db.spreadsheetID, name, cells); err != nil {
		return fmt.Errorf("failed to append to %s: %w", name, err)
	}
	return nil
}

func cellStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case nil:
		case string:
			out[i] = v
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// Decode maps the rows of a table to structs of type T by their ssql_header tags.
// Columns without a matching field are ignored
func Decode[T any](t *table.Table) ([]T, error) {
	results, rowErrs, err := DecodeRows[T](t)
	if err != nil {
		return nil, err
	}
	if len(rowErrs) > 0 {
		return nil, rowErrs[0]
	}
	return results, nil
}

// RowError is a row that could not be decoded
type RowError struct {
	Row    int // 1-based
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// DecodeRows is Decode that skips rows it cannot decode and reports them
// instead of failing. The returned error is only set when T is not a struct.
func DecodeRows[T any](t *table.Table) ([]T, []*RowError, error) {
	var model T
	rt := reflect.TypeOf(model)
	if rt.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", rt.Kind())
	}

	fieldMap := make(map[string]int)
	for i := 0; i < rt.NumField(); i++ {
		columnName := rt.Field(i).Tag.Get("ssql_header")
		if columnName != "" {
			fieldMap[columnName] = i
		}
	}

	if t == nil {
		return []T{}, nil, nil
	}

	results := make([]T, 0, t.Len())
	var rowErrs []*RowError
	for rowIdx := 0; rowIdx < t.Len(); rowIdx++ {
		result := reflect.New(rt).Elem()
		if rowErr := decodeRow(t, rowIdx, fieldMap, result); rowErr != nil {
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		results = append(results, result.Interface().(T))
	}

	return results, rowErrs, nil
}

func decodeRow(t *table.Table, rowIdx int, fieldMap map[string]int, result reflect.Value) *RowError {
	for _, columnName := range t.Columns {
		fieldIdx, ok := fieldMap[columnName]
		if !ok {
			continue
		}
		if err := setFieldValue(result.Field(fieldIdx), t.Get(rowIdx, columnName)); err != nil {
			return &RowError{Row: rowIdx + 1, Column: columnName, Err: err}
		}
	}
	return nil
}

// setFieldValue converts a sheet cell value to the appropriate Go type and sets it on the field
func setFieldValue(field reflect.Value, cellStr string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(cellStr))
		}
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cellStr == "" {
			field.SetInt(0)
		} else {
			intVal, err := strconv.ParseInt(cellStr, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse int: %w", err)
			}
			field.SetInt(intVal)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if cellStr == "" {
			field.SetUint(0)
		} else {
			uintVal, err := strconv.ParseUint(cellStr, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse uint: %w", err)
			}
			field.SetUint(uintVal)
		}

	case reflect.Float32, reflect.Float64:
		if cellStr == "" {
			field.SetFloat(0)
		} else {
			floatVal, err := strconv.ParseFloat(decimalPoint(cellStr), 64)
			if err != nil {
				return fmt.Errorf("failed to parse float: %w", err)
			}
			field.SetFloat(floatVal)
		}

	case reflect.Bool:
		if cellStr == "" {
			field.SetBool(false)
		} else {
			boolVal, err := strconv.ParseBool(cellStr)
			if err != nil {
				return fmt.Errorf("failed to parse bool: %w", err)
			}
			field.SetBool(boolVal)
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Encode renders structs as text rows, returning the column names from their
// ssql_header tags alongside
func Encode[T any](models []T) ([]string, [][]string, error) {
	var model T
	rt := reflect.TypeOf(model)
	if rt.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", rt.Kind())
	}

	columns := make([]string, 0, rt.NumField())
	fields := make([]int, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		columnName := rt.Field(i).Tag.Get("ssql_header")
		if columnName == "" {
			continue
		}
		columns = append(columns, columnName)
		fields = append(fields, i)
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		v := reflect.ValueOf(m)
		row := make([]string, len(fields))
		for j, fieldIdx := range fields {
			s, err := formatFieldValue(v.Field(fieldIdx))
			if err != nil {
				return nil, nil, fmt.Errorf("column %s: %w", columns[j], err)
			}
			row[j] = s
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}

// formatFieldValue renders a field as the text stored in a cell
func formatFieldValue(field reflect.Value) (string, error) {
	switch field.Kind() {
	case reflect.String:
		return field.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(field.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(field.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(field.Bool()), nil
	default:
		return "", fmt.Errorf("unsupported field type: %s", field.Kind())
	}
}

// decimalPoint rewrites a decimal comma ("2,5") as a point. Values that
// already carry a point are left alone.
func decimalPoint(s string) string {
	if strings.Contains(s, ".") {
		return s
	}
	return strings.Replace(s, ",", ".", 1)
}
