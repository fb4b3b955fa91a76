package table

import (
	"strings"
)

// Table is an in-memory tabular dataset with named columns.
// Cells are kept as plain text, which is how every backend hands them over.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given columns
func New(name string, columns ...string) *Table {
	return &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    [][]string{},
	}
}

// Empty returns a table with no columns and no rows
func Empty(name string) *Table {
	return New(name)
}

// Len returns the number of data rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table has no data rows
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Index returns the position of the named column, or -1
func (t *Table) Index(column string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Get returns the cell of the named column in row i, or "" when the column
// or the cell is missing (short rows are common in sheet exports)
func (t *Table) Get(i int, column string) string {
	idx := t.Index(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	row := t.Rows[i]
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Append adds a row, padding or truncating it to the column count
func (t *Table) Append(row ...string) {
	r := make([]string, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// Set writes a cell, adding the column when it does not exist yet
func (t *Table) Set(i int, column, value string) {
	idx := t.Index(column)
	if idx < 0 {
		t.Columns = append(t.Columns, column)
		idx = len(t.Columns) - 1
	}
	for len(t.Rows[i]) <= idx {
		t.Rows[i] = append(t.Rows[i], "")
	}
	t.Rows[i][idx] = value
}

// Filter returns a new table holding only the rows for which keep returns true
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := New(t.Name, t.Columns...)
	for i, row := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

// RenameColumns returns a copy of the table with columns renamed by aliases
// (old name to new name). A column is left alone when its new name is
// already present.
func (t *Table) RenameColumns(aliases map[string]string) *Table {
	out := t.Clone()
	for i, c := range out.Columns {
		to, ok := aliases[c]
		if !ok || out.Has(to) {
			continue
		}
		out.Columns[i] = to
	}
	return out
}

// NormalizeColumn canonicalises a single column label: trimmed, lower-cased,
// with spaces and slashes replaced by underscores
func NormalizeColumn(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// NormalizeColumns returns a copy of the table with every column label
// normalized. Column order and rows are preserved, so positions in the
// normalized table line up with positions in the raw one.
func NormalizeColumns(t *Table) *Table {
	if t == nil {
		return Empty("")
	}
	out := t.Clone()
	for i, c := range out.Columns {
		out.Columns[i] = NormalizeColumn(c)
	}
	return out
}
