// Package standardize rewrites text cells.
package standardize

import (
	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

// mapText returns f with fn applied to every non-null cell of the named text
// column. Columns that are missing or not text are returned unchanged.
func mapText(f *d.Frame, column string, fn func(string) string) (*d.Frame, error) {
	col, ok := f.ColumnByName(column)
	if !ok {
		return f, nil
	}
	src, ok := col.(*d.StringColumn)
	if !ok {
		return f, nil
	}
	out := d.CloneColumn(src, column).(*d.StringColumn)
	changed := false
	for i := 0; i < out.Len(); i++ {
		v, ok := out.Get(i)
		if !ok {
			continue
		}
		if nv := fn(v); nv != v {
			out.Set(i, nv)
			changed = true
		}
	}
	if !changed {
		return f, nil
	}
	return f.WithColumn(out)
}
