// Package pgio reads and replaces PostgreSQL tables. Targets are connection
// URLs whose table query parameter names the table, for example
// postgres://etl@db/warehouse?table=staging.customers.
package pgio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
)

const DefaultTable = "data"

// Target is a parsed connection URL.
type Target struct {
	DSN   string
	Table pgx.Identifier
}

// ParseTarget strips the table parameter from a connection URL. override,
// when set, wins over the parameter.
func ParseTarget(raw, override string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Target{}, fmt.Errorf("not a postgres url: %s", u.Redacted())
	}
	q := u.Query()
	table := q.Get("table")
	q.Del("table")
	u.RawQuery = q.Encode()
	if override != "" {
		table = override
	}
	if table == "" {
		table = DefaultTable
	}
	return Target{DSN: u.String(), Table: SplitFQN(table)}, nil
}

// SplitFQN converts "schema.table" into a pgx.Identifier.
func SplitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// SQLType maps a kind onto the column type used when creating tables.
func SQLType(k d.Kind) string {
	switch k {
	case d.KindInt:
		return "BIGINT"
	case d.KindFloat:
		return "DOUBLE PRECISION"
	case d.KindBool:
		return "BOOLEAN"
	case d.KindTime:
		return "TIMESTAMPTZ"
	}
	return "TEXT"
}

// KindForOID maps a result column type onto a kind.
func KindForOID(oid uint32) d.Kind {
	switch oid {
	case pgtype.BoolOID:
		return d.KindBool
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return d.KindInt
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return d.KindFloat
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return d.KindTime
	}
	return d.KindString
}

// DDL renders the statements that replace table with f's schema.
func DDL(table pgx.Identifier, s d.Schema) []string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + SQLType(c.Type)
	}
	name := table.Sanitize()
	return []string{
		"DROP TABLE IF EXISTS " + name,
		fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", ")),
	}
}

// WriteAll replaces the target table and bulk loads f with COPY, all in one
// transaction.
func WriteAll(ctx context.Context, t Target, f *d.Frame) error {
	if f.Cols() == 0 {
		return fmt.Errorf("postgres: frame has no columns")
	}
	conn, err := pgx.Connect(ctx, t.DSN)
	if err != nil {
		return fmt.Errorf("postgres: connect: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx))
	for _, stmt := range DDL(t.Table, f.Schema()) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: %s: %w", stmt, err)
		}
	}
	n, err := tx.CopyFrom(ctx, t.Table, f.Names(), pgx.CopyFromSlice(f.Rows(), func(i int) ([]any, error) {
		row := make([]any, f.Cols())
		for c := range row {
			row[c] = f.Column(c).Value(i)
		}
		return row, nil
	}))
	if err != nil {
		return fmt.Errorf("postgres: copy into %s: %w", t.Table.Sanitize(), err)
	}
	if int(n) != f.Rows() {
		return fmt.Errorf("postgres: copied %d of %d rows", n, f.Rows())
	}
	return tx.Commit(ctx)
}

// ReadAll selects every row of the target table.
func ReadAll(ctx context.Context, t Target) (*d.Frame, error) {
	conn, err := pgx.Connect(ctx, t.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	rows, err := conn.Query(ctx, "SELECT * FROM "+t.Table.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("postgres: select: %w", err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	schema := make([]d.ColumnSchema, len(fds))
	for i, fd := range fds {
		schema[i] = d.Col(fd.Name, KindForOID(fd.DataTypeOID))
	}
	f := d.NewFrame(d.NewSchema(schema...))
	r := 0
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: row %d: %w", r, err)
		}
		f.AppendNullRow()
		for c, v := range vals {
			x, err := d.Coerce(plain(v), schema[c].Type)
			if err != nil {
				return nil, fmt.Errorf("postgres: row %d column %s: %w", r, schema[c].Name, err)
			}
			if err := d.Assign(f.Column(c), r, x); err != nil {
				return nil, err
			}
		}
		r++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return f, nil
}

// plain unwraps pgtype values that Coerce does not know about.
func plain(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", t[0:4], t[4:6], t[6:8], t[8:10], t[10:16])
	}
	return v
}

// Adapter routes postgres:// URLs through pgx. It has no file suffixes and
// is selected by scheme.
type Adapter struct{}

func (Adapter) Name() string         { return "postgres" }
func (Adapter) Extensions() []string { return nil }

func (Adapter) Read(ctx context.Context, path string, o formats.Options) (*d.Frame, error) {
	t, err := ParseTarget(path, o.Table)
	if err != nil {
		return nil, err
	}
	return ReadAll(ctx, t)
}

func (Adapter) Write(ctx context.Context, f *d.Frame, path string, o formats.Options) error {
	t, err := ParseTarget(path, o.Table)
	if err != nil {
		return err
	}
	return WriteAll(ctx, t, f)
}
