package parquetio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/segmentio/parquet-go"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

// ReadAll loads every row of the file at path. Column order and kinds come
// from the footer schema when present, else from the physical types.
func ReadAll(ctx context.Context, path string) (*d.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	st, err := fh.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(fh, st.Size())
	if err != nil {
		return nil, err
	}
	schema := pf.Schema()

	cols, err := columnsOf(pf)
	if err != nil {
		return nil, err
	}
	leafToCol := map[int]int{}
	for i, c := range cols {
		leaf, ok := schema.Lookup(c.Name)
		if !ok {
			return nil, fmt.Errorf("column %s missing from parquet schema", c.Name)
		}
		leafToCol[leaf.ColumnIndex] = i
	}
	fs := make([]d.ColumnSchema, len(cols))
	for i, c := range cols {
		fs[i] = d.Col(c.Name, c.Type)
	}
	f := d.NewFrame(d.NewSchema(fs...))

	rd := parquet.NewReader(fh)
	defer rd.Close()
	buf := make([]parquet.Row, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := rd.ReadRows(buf)
		for _, row := range buf[:n] {
			f.AppendNullRow()
			r := f.Rows() - 1
			for _, v := range row {
				ci, ok := leafToCol[v.Column()]
				if !ok || v.IsNull() {
					continue
				}
				cv, cerr := fromValue(v, cols[ci].Type)
				if cerr != nil {
					return nil, fmt.Errorf("row %d column %s: %w", r, cols[ci].Name, cerr)
				}
				if cerr := d.Assign(f.Column(ci), r, cv); cerr != nil {
					return nil, cerr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return f, nil
}

func columnsOf(pf *parquet.File) ([]metaColumn, error) {
	if raw, ok := pf.Lookup(schemaKey); ok {
		var cols []metaColumn
		if err := json.Unmarshal([]byte(raw), &cols); err != nil {
			return nil, fmt.Errorf("footer schema: %w", err)
		}
		return cols, nil
	}
	var cols []metaColumn
	for _, field := range pf.Schema().Fields() {
		if !field.Leaf() {
			continue
		}
		cols = append(cols, metaColumn{Name: field.Name(), Type: kindOf(field.Type().Kind())})
	}
	return cols, nil
}

func kindOf(k parquet.Kind) d.Kind {
	switch k {
	case parquet.Boolean:
		return d.KindBool
	case parquet.Int32, parquet.Int64:
		return d.KindInt
	case parquet.Float, parquet.Double:
		return d.KindFloat
	}
	return d.KindString
}

func fromValue(v parquet.Value, want d.Kind) (any, error) {
	var raw any
	switch v.Kind() {
	case parquet.Boolean:
		raw = v.Boolean()
	case parquet.Int32:
		raw = int64(v.Int32())
	case parquet.Int64:
		raw = v.Int64()
	case parquet.Float:
		raw = float64(v.Float())
	case parquet.Double:
		raw = v.Double()
	default:
		raw = string(v.ByteArray())
	}
	return d.Coerce(raw, want)
}
