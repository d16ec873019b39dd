package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fwojciec/harvest"
)

// Compile-time interface verification.
var _ harvest.RecordWriter = (*TableWriter)(nil)

// TableWriter appends records as rows of a table named after the recipe,
// with one TEXT column per field in declaration order. Absent fields are
// stored as NULL. The table is created on first use and later writes only
// add rows; columns for fields added to a recipe are appended with
// ALTER TABLE.
type TableWriter struct {
	db *DB
}

// NewTableWriter creates a new TableWriter.
func NewTableWriter(db *DB) *TableWriter {
	return &TableWriter{db: db}
}

// WriteRecords inserts records in a single transaction.
func (w *TableWriter) WriteRecords(ctx context.Context, name string, fields []string, records []*harvest.Record) (err error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return harvest.Errorf(harvest.EWRITE, "begin transaction: %v", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := ensureTable(ctx, tx, name, fields); err != nil {
		return harvest.Errorf(harvest.EWRITE, "prepare table %q: %v", name, err)
	}

	columns := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = quoteIdent(f)
		placeholders[i] = "?"
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(columns, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return harvest.Errorf(harvest.EWRITE, "prepare insert into %q: %v", name, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		values := rec.Map()
		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = nullable(values[f])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return harvest.Errorf(harvest.EWRITE, "insert into %q: %v", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return harvest.Errorf(harvest.EWRITE, "commit %q: %v", name, err)
	}
	return nil
}

// ReadRows returns every row of the named table in insertion order.
// NULL columns are returned as nil.
func (w *TableWriter) ReadRows(ctx context.Context, name string) ([]map[string]*string, error) {
	rows, err := w.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", quoteIdent(name)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]*string
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := make(map[string]*string, len(columns))
		for i, col := range columns {
			if values[i].Valid {
				v := values[i].String
				row[col] = &v
			} else {
				row[col] = nil
			}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// ensureTable creates the table if needed and adds any missing columns.
func ensureTable(ctx context.Context, tx *sql.Tx, name string, fields []string) error {
	defs := make([]string, len(fields))
	for i, f := range fields {
		defs[i] = quoteIdent(f) + " TEXT"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(name), strings.Join(defs, ", "))); err != nil {
		return err
	}

	existing, err := tableColumns(ctx, tx, name)
	if err != nil {
		return err
	}

	for _, f := range fields {
		if existing[strings.ToLower(f)] {
			continue
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s TEXT",
			quoteIdent(name), quoteIdent(f))); err != nil {
			return err
		}
	}
	return nil
}

// tableColumns returns the lower-cased column names of a table.
// SQLite column names are case-insensitive.
func tableColumns(ctx context.Context, tx *sql.Tx, name string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		columns[strings.ToLower(col)] = true
	}
	return columns, rows.Err()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
