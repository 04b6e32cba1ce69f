package missing

import (
	"slices"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

func fillMedian(col d.Column) {
	switch c := col.(type) {
	case *d.FloatColumn:
		vals := make([]float64, 0, c.Len())
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				v, _ := c.Get(i)
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			return
		}
		med := Median(vals)
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				c.Set(i, med)
			}
		}
	case *d.IntColumn:
		vals := make([]int64, 0, c.Len())
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				v, _ := c.Get(i)
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			return
		}
		slices.Sort(vals)
		mid := len(vals) / 2
		med := vals[mid]
		if len(vals)%2 == 0 {
			med = midpoint(vals[mid-1], vals[mid])
		}
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				c.Set(i, med)
			}
		}
	}
}

// midpoint averages a and b without overflowing and rounds half away from
// zero, like the int mean.
func midpoint(a, b int64) int64 {
	q := a/2 + b/2
	switch a%2 + b%2 {
	case 2:
		return q + 1
	case -2:
		return q - 1
	case 1:
		if q >= 0 {
			return q + 1
		}
	case -1:
		if q <= 0 {
			return q - 1
		}
	}
	return q
}

// Median sorts a copy of vals and returns the middle value, averaging the
// two central values for even lengths. vals must not be empty.
func Median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}
