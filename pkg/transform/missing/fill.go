package missing

import d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"

// fillForward copies the previous non-null value into each null. Leading
// nulls stay null.
func fillForward(col d.Column) {
	var last any
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			if last != nil {
				_ = d.Assign(col, i, last)
			}
			continue
		}
		last = col.Value(i)
	}
}

// fillBackward copies the next non-null value into each null. Trailing
// nulls stay null.
func fillBackward(col d.Column) {
	var next any
	for i := col.Len() - 1; i >= 0; i-- {
		if col.IsNull(i) {
			if next != nil {
				_ = d.Assign(col, i, next)
			}
			continue
		}
		next = col.Value(i)
	}
}
