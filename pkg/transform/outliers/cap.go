// Package outliers clamps numeric values into a range.
package outliers

import (
	"context"
	"math"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

// Cap clamps a numeric column to [Min, Max]; a nil bound is open.
type Cap struct {
	Column string
	Min    *float64
	Max    *float64
}

func (t *Cap) Name() string { return "cap_range" }

func (t *Cap) clamp(v float64) float64 {
	if t.Min != nil {
		v = math.Max(v, *t.Min)
	}
	if t.Max != nil {
		v = math.Min(v, *t.Max)
	}
	return v
}

func (t *Cap) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	var out d.Column
	switch c := col.(type) {
	case *d.FloatColumn:
		cc := d.CloneColumn(c, t.Column).(*d.FloatColumn)
		for i := 0; i < cc.Len(); i++ {
			if v, ok := cc.Get(i); ok {
				cc.Set(i, t.clamp(v))
			}
		}
		out = cc
	case *d.IntColumn:
		cc := d.CloneColumn(c, t.Column).(*d.IntColumn)
		for i := 0; i < cc.Len(); i++ {
			if v, ok := cc.Get(i); ok {
				cc.Set(i, int64(t.clamp(float64(v))))
			}
		}
		out = cc
	default:
		return f, nil
	}
	return f.WithColumn(out)
}
