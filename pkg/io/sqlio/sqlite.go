// Package sqlio stores frames as tables in SQLite database files using the
// pure Go modernc driver.
package sqlio

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
)

const (
	DefaultTable     = "data"
	defaultBatchSize = 500
	// maxVariables is SQLite's default bound-parameter limit.
	maxVariables = 32766
)

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return db, nil
}

// Quote wraps an identifier in double quotes.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// DeclType maps a kind onto the declared column type used by CreateTable.
func DeclType(k d.Kind) string {
	switch k {
	case d.KindInt:
		return "INTEGER"
	case d.KindFloat:
		return "REAL"
	case d.KindBool:
		return "BOOLEAN"
	case d.KindTime:
		return "TIMESTAMP"
	}
	return "TEXT"
}

// KindFor maps a declared column type back onto a kind. Unknown or empty
// declarations report false.
func KindFor(decl string) (d.Kind, bool) {
	decl = strings.ToUpper(strings.TrimSpace(decl))
	switch {
	case decl == "":
		return d.KindInvalid, false
	case decl == "BOOLEAN" || decl == "BOOL":
		return d.KindBool, true
	case strings.Contains(decl, "INT"):
		return d.KindInt, true
	case strings.Contains(decl, "REAL"), strings.Contains(decl, "FLOA"),
		strings.Contains(decl, "DOUB"), strings.Contains(decl, "NUMERIC"), strings.Contains(decl, "DECIMAL"):
		return d.KindFloat, true
	case strings.Contains(decl, "TIME"), strings.Contains(decl, "DATE"):
		return d.KindTime, true
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "TEXT"), strings.Contains(decl, "CLOB"):
		return d.KindString, true
	}
	return d.KindInvalid, false
}

// CreateTable renders the DROP and CREATE statements for f's schema.
func CreateTable(table string, s d.Schema) []string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = Quote(c.Name) + " " + DeclType(c.Type)
	}
	return []string{
		"DROP TABLE IF EXISTS " + Quote(table),
		fmt.Sprintf("CREATE TABLE %s (%s)", Quote(table), strings.Join(defs, ", ")),
	}
}

// WriteAll replaces table in the database at path with the contents of f.
// Rows go in multi-row INSERTs of batchSize inside one transaction.
func WriteAll(ctx context.Context, path, table string, f *d.Frame, batchSize int) error {
	if f.Cols() == 0 {
		return fmt.Errorf("sqlite: frame has no columns")
	}
	if table == "" {
		table = DefaultTable
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if limit := maxVariables / f.Cols(); batchSize > limit {
		batchSize = limit
	}
	db, err := open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()
	for _, stmt := range CreateTable(table, f.Schema()) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: %s: %w", stmt, err)
		}
	}

	cols := make([]string, f.Cols())
	for i, n := range f.Names() {
		cols[i] = Quote(n)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", f.Cols()), ", ") + ")"
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", Quote(table), strings.Join(cols, ", "))

	args := make([]any, 0, batchSize*f.Cols())
	for start := 0; start < f.Rows(); start += batchSize {
		end := min(start+batchSize, f.Rows())
		args = args[:0]
		for r := start; r < end; r++ {
			for c := 0; c < f.Cols(); c++ {
				args = append(args, bindValue(f.Column(c).Value(r)))
			}
		}
		tuples := strings.TrimSuffix(strings.Repeat(tuple+", ", end-start), ", ")
		if _, err := tx.ExecContext(ctx, head+tuples, args...); err != nil {
			return fmt.Errorf("sqlite: insert rows %d-%d: %w", start, end-1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func bindValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

// ReadAll loads every row of table. Column kinds come from the declared
// types, falling back to the first non-null value.
func ReadAll(ctx context.Context, path, table string) (*d.Frame, error) {
	if table == "" {
		table = DefaultTable
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+Quote(table))
	if err != nil {
		return nil, fmt.Errorf("sqlite: select %s: %w", table, err)
	}
	defer rows.Close()
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var records [][]any
	for rows.Next() {
		rec := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range rec {
			ptrs[i] = &rec[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}

	schema := make([]d.ColumnSchema, len(types))
	for i, ct := range types {
		k, ok := KindFor(ct.DatabaseTypeName())
		if !ok {
			k = firstKind(records, i)
		}
		schema[i] = d.Col(ct.Name(), k)
	}
	f := d.NewFrame(d.NewSchema(schema...))
	for r, rec := range records {
		f.AppendNullRow()
		for c, v := range rec {
			x, err := d.Coerce(v, schema[c].Type)
			if err != nil {
				return nil, fmt.Errorf("sqlite: row %d column %s: %w", r, schema[c].Name, err)
			}
			if err := d.Assign(f.Column(c), r, x); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func firstKind(records [][]any, col int) d.Kind {
	for _, rec := range records {
		if k := d.KindOf(rec[col]); k != d.KindInvalid {
			return k
		}
	}
	return d.KindString
}

// Adapter stores frames in a SQLite file; Options.Table names the table.
type Adapter struct{}

func (Adapter) Name() string         { return "sqlite" }
func (Adapter) Extensions() []string { return []string{".db", ".sqlite", ".sqlite3"} }

func (Adapter) Read(ctx context.Context, path string, o formats.Options) (*d.Frame, error) {
	return ReadAll(ctx, path, o.Table)
}

func (Adapter) Write(ctx context.Context, f *d.Frame, path string, o formats.Options) error {
	return WriteAll(ctx, path, o.Table, f, o.BatchSize)
}
