// Package columns renames and projects frame columns.
package columns

import (
	"context"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Rename maps old names to new ones. Sources missing from the frame are
// ignored; a mapping that would produce two columns of the same name fails.
type Rename struct {
	Mapping map[string]string
}

func (t *Rename) Name() string { return "rename_columns" }

func (t *Rename) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	out, err := f.Rename(t.Mapping)
	if err != nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
	}
	return out, nil
}

// Unknown lists mapping sources that f does not have, sorted.
func (t *Rename) Unknown(f *d.Frame) []string {
	return absent(f, keys(t.Mapping))
}

// Select keeps Columns in the given order. Names the frame lacks are skipped.
type Select struct {
	Columns []string
}

func (t *Select) Name() string { return "select_columns" }

func (t *Select) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	present := make([]string, 0, len(t.Columns))
	for _, n := range t.Columns {
		if _, ok := f.ColumnByName(n); ok {
			present = append(present, n)
		}
	}
	out, err := f.Select(present)
	if err != nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
	}
	return out, nil
}

// Skipped lists the requested columns that f does not have.
func (t *Select) Skipped(f *d.Frame) []string {
	return absent(f, t.Columns)
}

// Drop removes the named columns; unknown names are ignored.
type Drop struct {
	Columns []string
}

func (t *Drop) Name() string { return "drop_columns" }

func (t *Drop) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	gone := make(map[string]bool, len(t.Columns))
	for _, n := range t.Columns {
		gone[n] = true
	}
	var keep []string
	for _, n := range f.Names() {
		if !gone[n] {
			keep = append(keep, n)
		}
	}
	return (&Select{Columns: keep}).Apply(ctx, f)
}
