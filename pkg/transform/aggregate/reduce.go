package aggregate

import (
	"fmt"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/missing"
)

func outputKind(src d.Kind, fn Func) (d.Kind, error) {
	switch fn {
	case Count:
		return d.KindInt, nil
	case Mean, Median:
		if !src.Numeric() {
			return d.KindInvalid, fmt.Errorf("%s needs a numeric column, got %s", fn, src)
		}
		return d.KindFloat, nil
	case Sum:
		if !src.Numeric() {
			return d.KindInvalid, fmt.Errorf("sum needs a numeric column, got %s", src)
		}
		return src, nil
	case Min, Max:
		if src == d.KindBool {
			return d.KindInvalid, fmt.Errorf("%s is undefined for bool columns", fn)
		}
		return src, nil
	case First, Last:
		return src, nil
	}
	return d.KindInvalid, fmt.Errorf("unknown aggregate function %q", fn)
}

func reduce(src d.Column, fn Func, name string, groups [][]int) (d.Column, error) {
	kind, err := outputKind(src.Kind(), fn)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", src.Name(), err)
	}
	out, err := d.NewColumn(name, kind, len(groups))
	if err != nil {
		return nil, err
	}
	for g, rows := range groups {
		vals := make([]any, 0, len(rows))
		for _, r := range rows {
			if v := src.Value(r); v != nil {
				vals = append(vals, v)
			}
		}
		v := reduceValues(vals, fn)
		if err := d.Assign(out, g, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// reduceValues folds the non-null values of one group. Empty groups give
// null except for count.
func reduceValues(vals []any, fn Func) any {
	if fn == Count {
		return int64(len(vals))
	}
	if len(vals) == 0 {
		return nil
	}
	switch fn {
	case First:
		return vals[0]
	case Last:
		return vals[len(vals)-1]
	case Sum:
		if _, ok := vals[0].(int64); ok {
			var s int64
			for _, v := range vals {
				s += v.(int64)
			}
			return s
		}
		var s float64
		for _, v := range vals {
			s += v.(float64)
		}
		return s
	case Mean:
		var s float64
		for _, v := range vals {
			s += toFloat(v)
		}
		return s / float64(len(vals))
	case Median:
		fs := make([]float64, len(vals))
		for i, v := range vals {
			fs[i] = toFloat(v)
		}
		return missing.Median(fs)
	case Min, Max:
		best := vals[0]
		for _, v := range vals[1:] {
			if less(v, best) == (fn == Min) && !equal(v, best) {
				best = v
			}
		}
		return best
	}
	return nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	}
	return 0
}

func less(a, b any) bool {
	switch x := a.(type) {
	case int64:
		return x < b.(int64)
	case float64:
		return x < b.(float64)
	case string:
		return x < b.(string)
	case time.Time:
		return x.Before(b.(time.Time))
	}
	return false
}

func equal(a, b any) bool { return d.ValuesEqual(a, b) }
