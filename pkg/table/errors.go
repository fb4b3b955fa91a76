package table

import (
	"fmt"
	"strings"
)

// MissingColumnError is returned when required columns are absent from a table
type MissingColumnError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: missing required columns: %s", e.Table, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Is enables errors.Is() comparison for MissingColumnError
func (e *MissingColumnError) Is(target error) bool {
	_, ok := target.(*MissingColumnError)
	return ok
}

// RequireColumns checks that every named column exists and reports all of the
// missing ones at once
func (t *Table) RequireColumns(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		name := ""
		if t != nil {
			name = t.Name
		}
		return &MissingColumnError{Table: name, Columns: missing}
	}
	return nil
}
