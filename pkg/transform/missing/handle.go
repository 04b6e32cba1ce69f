package missing

import (
	"context"
	"fmt"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Handle applies Strategy to Columns (every column when empty).
type Handle struct {
	Columns  []string
	Strategy Strategy
}

func (t *Handle) Name() string { return "handle_missing" }

func (t *Handle) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	if t.Strategy == nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("no strategy given")}
	}
	names := t.Columns
	if len(names) == 0 {
		names = f.Names()
	}
	for _, n := range names {
		if _, ok := f.ColumnByName(n); !ok {
			return nil, etlerr.Missing(t.Name(), n)
		}
	}
	if f.NullCount(names...) == 0 {
		return f, nil
	}

	if _, ok := t.Strategy.(dropStrategy); ok {
		return dropRows(f, names), nil
	}

	out := f.Clone()
	for _, n := range names {
		col, _ := out.ColumnByName(n)
		var err error
		switch s := t.Strategy.(type) {
		case fillWith:
			err = fillConstant(col, s.value)
		case fillStat:
			switch s.stat {
			case "mean":
				fillMean(col)
			case "median":
				fillMedian(col)
			case "mode":
				fillMode(col)
			}
		case forwardFill:
			fillForward(col)
		case backwardFill:
			fillBackward(col)
		case autoStrategy:
			if col.Kind().Numeric() {
				fillMedian(col)
			} else if col.Kind() == d.KindString {
				err = fillConstant(col, s.placeholder)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func dropRows(f *d.Frame, names []string) *d.Frame {
	cols := make([]d.Column, 0, len(names))
	for _, n := range names {
		c, _ := f.ColumnByName(n)
		cols = append(cols, c)
	}
	keep := make([]int, 0, f.Rows())
rows:
	for r := 0; r < f.Rows(); r++ {
		for _, c := range cols {
			if c.IsNull(r) {
				continue rows
			}
		}
		keep = append(keep, r)
	}
	return f.Take(keep)
}
