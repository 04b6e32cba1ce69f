// Package aggregate collapses rows into one row per group.
package aggregate

import (
	"context"
	"fmt"
	"strings"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

type Func string

const (
	Sum    Func = "sum"
	Mean   Func = "mean"
	Median Func = "median"
	Min    Func = "min"
	Max    Func = "max"
	Count  Func = "count"
	First  Func = "first"
	Last   Func = "last"
)

func ParseFunc(s string) (Func, error) {
	switch f := Func(strings.ToLower(strings.TrimSpace(s))); f {
	case Sum, Mean, Median, Min, Max, Count, First, Last:
		return f, nil
	case "avg", "average":
		return Mean, nil
	}
	return "", fmt.Errorf("unknown aggregate function %q", s)
}

// Spec aggregates Column with Func into the output column As. Without As the
// output keeps the source name, or source_func when the source is
// aggregated more than once.
type Spec struct {
	Column string
	Func   Func
	As     string
}

// Aggregate groups rows by GroupBy (the whole frame when empty). Groups come
// out in first-appearance order; rows with a null group key are dropped and
// nulls are skipped inside every aggregate.
type Aggregate struct {
	GroupBy []string
	Specs   []Spec
}

func (t *Aggregate) Name() string { return "aggregate" }

func (t *Aggregate) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	if len(t.Specs) == 0 {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("no aggregations given")}
	}
	keys := make([]d.Column, 0, len(t.GroupBy))
	for _, n := range t.GroupBy {
		c, ok := f.ColumnByName(n)
		if !ok {
			return nil, etlerr.Missing(t.Name(), n)
		}
		keys = append(keys, c)
	}
	sources := make([]d.Column, len(t.Specs))
	uses := map[string]int{}
	for i, s := range t.Specs {
		c, ok := f.ColumnByName(s.Column)
		if !ok {
			return nil, etlerr.Missing(t.Name(), s.Column)
		}
		sources[i] = c
		uses[s.Column]++
	}

	groups := group(f, keys)

	// group columns hold one representative row per group
	out := make([]d.Column, 0, len(keys)+len(t.Specs))
	reps := make([]int, len(groups))
	for i, g := range groups {
		if len(g) > 0 {
			reps[i] = g[0]
		}
	}
	for _, k := range keys {
		out = append(out, d.TakeColumn(k, reps))
	}
	for i, s := range t.Specs {
		name := s.As
		if name == "" {
			name = s.Column
			if uses[s.Column] > 1 {
				name = s.Column + "_" + string(s.Func)
			}
		}
		col, err := reduce(sources[i], s.Func, name, groups)
		if err != nil {
			return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
		}
		out = append(out, col)
	}
	res, err := d.FromColumns(out...)
	if err != nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
	}
	return res, nil
}

// group returns row positions per group in first-appearance order.
func group(f *d.Frame, keys []d.Column) [][]int {
	if len(keys) == 0 {
		all := make([]int, f.Rows())
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}
	index := map[string]int{}
	var groups [][]int
	var b strings.Builder
rows:
	for r := 0; r < f.Rows(); r++ {
		b.Reset()
		for i, k := range keys {
			v := k.Value(r)
			if v == nil {
				continue rows
			}
			if i > 0 {
				b.WriteByte(0x1f)
			}
			b.WriteString(d.FormatValue(v))
		}
		key := b.String()
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], r)
	}
	return groups
}
