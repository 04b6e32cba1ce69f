// Package filter keeps the rows a predicate accepts.
package filter

import (
	"context"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Predicate decides whether a row survives. It must not retain the row.
type Predicate func(r d.Row) (bool, error)

type Rows struct {
	Predicate Predicate
}

func (t *Rows) Name() string { return "filter_rows" }

// Apply evaluates the predicate on every row; the first predicate error
// aborts the filter and nothing is dropped.
func (t *Rows) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	if t.Predicate == nil {
		return f, nil
	}
	keep := make([]int, 0, f.Rows())
	for r := 0; r < f.Rows(); r++ {
		ok, err := t.Predicate(f.Row(r))
		if err != nil {
			if etlerr.IsConversion(err) {
				return nil, err
			}
			return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
		}
		if ok {
			keep = append(keep, r)
		}
	}
	if len(keep) == f.Rows() {
		return f, nil
	}
	return f.Take(keep), nil
}

// Compare builds a predicate comparing a numeric field against a constant.
// op is one of > >= < <= == !=. Null cells never match.
func Compare(field, op string, value float64) Predicate {
	return func(r d.Row) (bool, error) {
		if r.Has(field) && r.IsNull(field) {
			return false, nil
		}
		v, err := r.Float(field)
		if err != nil {
			return false, err
		}
		switch op {
		case ">":
			return v > value, nil
		case ">=":
			return v >= value, nil
		case "<":
			return v < value, nil
		case "<=":
			return v <= value, nil
		case "==":
			return v == value, nil
		case "!=":
			return v != value, nil
		}
		return false, &etlerr.ConfigurationError{Key: "op", Value: op, Reason: "unknown comparison"}
	}
}

// Equals keeps rows whose field renders as one of values.
func Equals(field string, values ...string) Predicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(r d.Row) (bool, error) {
		if r.Has(field) && r.IsNull(field) {
			return false, nil
		}
		s, err := r.Text(field)
		if err != nil {
			return false, err
		}
		_, ok := set[s]
		return ok, nil
	}
}

// NotNull keeps rows where every named field holds a value.
func NotNull(fields ...string) Predicate {
	return func(r d.Row) (bool, error) {
		for _, f := range fields {
			if _, err := r.Get(f); err != nil {
				return false, err
			}
			if r.IsNull(f) {
				return false, nil
			}
		}
		return true, nil
	}
}
