// Package normalize rescales numeric columns.
package normalize

import (
	"context"
	"fmt"
	"math"
	"strings"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/missing"
)

type Method int

const (
	// MinMax maps values onto [0, 1].
	MinMax Method = iota
	// ZScore centres on the mean and divides by the sample standard deviation.
	ZScore
	// Robust centres on the median and divides by the interquartile range.
	Robust
)

func (m Method) String() string {
	switch m {
	case ZScore:
		return "zscore"
	case Robust:
		return "robust"
	default:
		return "minmax"
	}
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "minmax", "min_max":
		return MinMax, nil
	case "zscore", "z_score", "standard":
		return ZScore, nil
	case "robust":
		return Robust, nil
	}
	return MinMax, fmt.Errorf("unknown normalization method %q", s)
}

// Column rescales one numeric column into a float column. A column whose
// spread is zero becomes all zeros; nulls stay null. A missing column is
// left alone.
type Column struct {
	Column string
	Method Method
}

func (t *Column) Name() string { return "normalize" }

func (t *Column) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	src, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	if !src.Kind().Numeric() {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("column %s is %s, not numeric", t.Column, src.Kind())}
	}
	vals := make([]float64, 0, src.Len())
	for i := 0; i < src.Len(); i++ {
		switch v := src.Value(i).(type) {
		case int64:
			vals = append(vals, float64(v))
		case float64:
			vals = append(vals, v)
		}
	}
	center, scale := params(vals, t.Method)

	out := d.NewFloatColumn(t.Column, src.Len())
	for i := 0; i < src.Len(); i++ {
		var x float64
		switch v := src.Value(i).(type) {
		case nil:
			out.SetNull(i)
			continue
		case int64:
			x = float64(v)
		case float64:
			x = v
		}
		if scale == 0 || math.IsNaN(scale) {
			out.Set(i, 0)
			continue
		}
		out.Set(i, (x-center)/scale)
	}
	res, err := f.WithColumn(out)
	if err != nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
	}
	return res, nil
}

// params returns the centre and scale for method over vals.
func params(vals []float64, m Method) (center, scale float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	switch m {
	case ZScore:
		var sum float64
		for _, v := range vals {
			sum += v
		}
		mean := sum / float64(len(vals))
		if len(vals) < 2 {
			return mean, 0
		}
		var ss float64
		for _, v := range vals {
			ss += (v - mean) * (v - mean)
		}
		return mean, math.Sqrt(ss / float64(len(vals)-1))
	case Robust:
		q1, med, q3 := quartiles(vals)
		return med, q3 - q1
	default:
		lo, hi := vals[0], vals[0]
		for _, v := range vals[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		return lo, hi - lo
	}
}

// quartiles uses linear interpolation between closest ranks.
func quartiles(vals []float64) (q1, med, q3 float64) {
	med = missing.Median(vals)
	s := append([]float64(nil), vals...)
	sortFloats(s)
	return quantile(s, 0.25), med, quantile(s, 0.75)
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
