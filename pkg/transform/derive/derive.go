// Package derive adds computed columns.
package derive

import (
	"context"
	"fmt"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Func computes one cell of the new column from a read-only row view.
// Returning nil produces a null cell.
type Func func(r d.Row) (any, error)

// Add evaluates Fn for every row and adds (or replaces) Column. The column
// kind is Kind when set, otherwise the kind of the first non-nil result;
// results of another kind fail with a ConversionError.
type Add struct {
	Column string
	Kind   d.Kind
	Fn     Func
}

func (t *Add) Name() string { return "add_column" }

func (t *Add) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	if t.Column == "" || t.Fn == nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("column name and function are required")}
	}
	vals := make([]any, f.Rows())
	kind := t.Kind
	for r := 0; r < f.Rows(); r++ {
		v, err := t.Fn(f.Row(r))
		if err != nil {
			if etlerr.IsConversion(err) {
				return nil, err
			}
			return nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("row %d: %w", r, err)}
		}
		if v != nil && kind == d.KindInvalid {
			if kind = d.KindOf(v); kind == d.KindInvalid {
				return nil, &etlerr.ConversionError{Field: t.Column, Row: r, Value: fmt.Sprint(v), Err: fmt.Errorf("unsupported result type %T", v)}
			}
		}
		vals[r] = v
	}
	if kind == d.KindInvalid {
		kind = d.KindString
	}
	col, err := d.NewColumn(t.Column, kind, f.Rows())
	if err != nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
	}
	for r, v := range vals {
		if v != nil && t.Kind == d.KindInvalid && d.KindOf(v) != kind {
			return nil, &etlerr.ConversionError{Field: t.Column, Row: r, Value: d.FormatValue(v), Target: kind.String(), Err: fmt.Errorf("mixed result kinds")}
		}
		cv, err := d.Coerce(v, kind)
		if err != nil {
			return nil, &etlerr.ConversionError{Field: t.Column, Row: r, Value: d.FormatValue(v), Target: kind.String(), Err: err}
		}
		if err := d.Assign(col, r, cv); err != nil {
			return nil, &etlerr.ConversionError{Field: t.Column, Row: r, Value: d.FormatValue(v), Target: kind.String(), Err: err}
		}
	}
	out, err := f.WithColumn(col)
	if err != nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
	}
	return out, nil
}
