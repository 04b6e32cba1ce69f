package missing

import (
	"math"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

// fillMean imputes the column mean. Int columns get the mean rounded half
// away from zero. Columns with no values are left untouched.
func fillMean(col d.Column) {
	switch c := col.(type) {
	case *d.FloatColumn:
		var sum float64
		var n int
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				v, _ := c.Get(i)
				sum += v
				n++
			}
		}
		if n == 0 {
			return
		}
		mean := sum / float64(n)
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				c.Set(i, mean)
			}
		}
	case *d.IntColumn:
		var sum float64
		var n int
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				v, _ := c.Get(i)
				sum += float64(v)
				n++
			}
		}
		if n == 0 {
			return
		}
		mean := int64(math.Round(sum / float64(n)))
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				c.Set(i, mean)
			}
		}
	}
}
