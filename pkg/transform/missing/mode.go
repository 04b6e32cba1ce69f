package missing

import (
	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

// fillMode imputes the most frequent value; ties go to the value that
// reached the winning count first.
func fillMode(col d.Column) {
	counts := map[any]int{}
	var best any
	var bestc int
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := modeKey(col.Value(i))
		counts[v]++
		if counts[v] > bestc {
			bestc = counts[v]
			best = col.Value(i)
		}
	}
	if best == nil {
		return
	}
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			_ = d.Assign(col, i, best)
		}
	}
}

// modeKey makes time values comparable by instant.
func modeKey(v any) any {
	if t, ok := v.(interface{ UnixNano() int64 }); ok {
		return t.UnixNano()
	}
	return v
}
