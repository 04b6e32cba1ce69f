// Package xlsxio reads and writes spreadsheet workbooks through excelize.
package xlsxio

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/csvio"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
)

// DefaultSheet is used for writing when no sheet is named.
const DefaultSheet = "Sheet1"

// WriteAll writes f to one sheet with a header row using the stream writer.
// Times are written as RFC 3339 text.
func WriteAll(path string, f *d.Frame, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	xf := excelize.NewFile()
	defer xf.Close()
	if sheet != DefaultSheet {
		if err := xf.SetSheetName(DefaultSheet, sheet); err != nil {
			return err
		}
	}
	sw, err := xf.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	header := make([]interface{}, f.Cols())
	for i, n := range f.Names() {
		header[i] = n
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	row := make([]interface{}, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			v := f.Column(c).Value(r)
			if t, ok := v.(time.Time); ok {
				v = t.Format(time.RFC3339Nano)
			}
			row[c] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return xf.SaveAs(path)
}

// ReadAll loads sheet (the first sheet when empty). The first non-empty row
// is the header. Kinds come from schema when given, otherwise they are
// inferred like delimited text.
func ReadAll(ctx context.Context, path, sheet string, schema *d.Schema) (*d.Frame, error) {
	xf, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer xf.Close()
	if sheet == "" {
		sheets := xf.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	iter, err := xf.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	defer iter.Close()

	var names []string
	var records [][]string
	for iter.Next() {
		row, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if names == nil {
			if len(row) == 0 {
				continue
			}
			names = csvio.HeaderNames(row)
			continue
		}
		records = append(records, row)
		if len(records)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	if names == nil {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	sc, err := csvio.SchemaFor(names, records, schema)
	if err != nil {
		return nil, err
	}
	f := d.NewFrame(sc)
	for r, rec := range records {
		f.AppendNullRow()
		for c, cs := range sc.Columns {
			if c >= len(rec) {
				continue
			}
			if rec[c] == "" {
				if csvio.EmptyIsText(cs) {
					if err := d.Assign(f.Column(c), r, ""); err != nil {
						return nil, err
					}
				}
				continue
			}
			v, err := csvio.ParseCell(rec[c], cs.Type)
			if err != nil {
				return nil, &etlerr.ConversionError{Field: cs.Name, Row: r, Value: rec[c], Target: cs.Type.String(), Err: err}
			}
			if err := d.Assign(f.Column(c), r, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

type Adapter struct{}

func (Adapter) Name() string         { return "xlsx" }
func (Adapter) Extensions() []string { return []string{".xlsx", ".xlsm", ".excel"} }

func (Adapter) Read(ctx context.Context, path string, o formats.Options) (*d.Frame, error) {
	return ReadAll(ctx, path, o.Sheet, o.Schema)
}

func (Adapter) Write(ctx context.Context, f *d.Frame, path string, o formats.Options) error {
	return WriteAll(path, f, o.Sheet)
}
