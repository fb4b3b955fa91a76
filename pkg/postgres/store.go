package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/table"
)

// rowIDColumn orders rows by insertion and is hidden from readers
const rowIDColumn = "row_id"

// Read implements db.TableStore
func (d *DB) Read(ctx context.Context, name string) (*table.Table, error) {
	columns, hasRowID, err := d.columns(ctx, name)
	if err != nil {
		return nil, db.Unavailable("read", name, err)
	}
	if len(columns) == 0 {
		return table.Empty(name), nil
	}

	rows, err := d.pool.Query(ctx, selectStatement(name, columns, hasRowID))
	if err != nil {
		return nil, db.Unavailable("read", name, fmt.Errorf("failed to query table: %w", err))
	}
	defer rows.Close()

	out := table.New(name, columns...)
	for rows.Next() {
		values := make([]*string, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, db.Unavailable("read", name, fmt.Errorf("failed to scan row: %w", err))
		}

		row := make([]string, len(columns))
		for i, v := range values {
			if v != nil {
				row[i] = *v
			}
		}
		out.Append(row...)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Unavailable("read", name, fmt.Errorf("error iterating rows: %w", err))
	}

	return out, nil
}

// columns returns the visible columns of a table in ordinal order; none when
// the table does not exist
func (d *DB) columns(ctx context.Context, name string) ([]string, bool, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	hasRowID := false
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, false, fmt.Errorf("failed to scan column: %w", err)
		}
		if column == rowIDColumn {
			hasRowID = true
			continue
		}
		columns = append(columns, column)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating columns: %w", err)
	}

	return columns, hasRowID, nil
}

// Append implements db.TableStore
func (d *DB) Append(ctx context.Context, name string, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return db.Unavailable("append", name, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	for _, stmt := range ensureStatements(name, columns) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return db.Unavailable("append", name, fmt.Errorf("failed to prepare table: %w", err))
		}
	}

	insert := insertStatement(name, columns)
	for _, row := range rows {
		args := make([]interface{}, len(columns))
		for i := range columns {
			if i < len(row) {
				args[i] = row[i]
			} else {
				args[i] = ""
			}
		}
		if _, err := tx.Exec(ctx, insert, args...); err != nil {
			return db.Unavailable("append", name, fmt.Errorf("failed to insert row: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return db.Unavailable("append", name, fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// ListTables implements db.TableLister
func (d *DB) ListTables(ctx context.Context) ([]string, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name <> 'schema_migrations'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, db.Unavailable("list", "postgres", fmt.Errorf("failed to query tables: %w", err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, db.Unavailable("list", "postgres", fmt.Errorf("failed to scan table name: %w", err))
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, db.Unavailable("list", "postgres", fmt.Errorf("error iterating tables: %w", err))
	}

	return names, nil
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func selectStatement(name string, columns []string, hasRowID bool) string {
	selects := make([]string, len(columns))
	for i, c := range columns {
		selects[i] = quote(c) + "::text"
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quote(name))
	if hasRowID {
		stmt += " ORDER BY " + quote(rowIDColumn)
	}
	return stmt
}

func ensureStatements(name string, columns []string) []string {
	defs := make([]string, 0, len(columns)+1)
	defs = append(defs, quote(rowIDColumn)+" BIGSERIAL PRIMARY KEY")
	for _, c := range columns {
		defs = append(defs, quote(c)+" TEXT")
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(name), strings.Join(defs, ", "))}
	for _, c := range columns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s TEXT", quote(name), quote(c)))
	}
	return stmts
}

func insertStatement(name string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quote(c)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(name), strings.Join(quoted, ", "), strings.Join(params, ", "))
}
