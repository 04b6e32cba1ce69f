package dataset

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{schema: f.Schema(), cols: make([]Column, len(f.cols)), index: make(map[string]int, len(f.cols)), nrows: f.nrows}
	for i, c := range f.cols {
		out.cols[i] = c.clone(c.Name())
		out.index[c.Name()] = i
	}
	return out
}

// Take builds a new frame from the given row positions, in order.
func (f *Frame) Take(rows []int) *Frame {
	out := &Frame{schema: f.Schema(), cols: make([]Column, len(f.cols)), index: make(map[string]int, len(f.cols)), nrows: len(rows)}
	for i, c := range f.cols {
		out.cols[i] = c.take(rows)
		out.index[c.Name()] = i
	}
	return out
}

// Select keeps the named columns in the given order.
func (f *Frame) Select(names []string) (*Frame, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := f.ColumnByName(n)
		if !ok {
			return nil, fmt.Errorf("select %s: %w", n, etlerr.ErrColumnNotFound)
		}
		cols = append(cols, c.clone(n))
	}
	out, err := FromColumns(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.nrows = f.nrows
	}
	return out, nil
}

// Rename returns a copy with columns renamed per mapping. Names absent from
// the frame are ignored.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		name := c.Name()
		if to, ok := mapping[name]; ok && to != "" {
			name = to
		}
		cols[i] = c.clone(name)
	}
	out, err := FromColumns(cols...)
	if err != nil {
		return nil, err
	}
	out.nrows = f.nrows
	return out, nil
}

// WithColumn returns a copy with col added, or replacing the column of the
// same name in place.
func (f *Frame) WithColumn(col Column) (*Frame, error) {
	if len(f.cols) > 0 && col.Len() != f.nrows {
		return nil, fmt.Errorf("column %s has %d rows, frame has %d", col.Name(), col.Len(), f.nrows)
	}
	out := f.Clone()
	if i, ok := out.index[col.Name()]; ok {
		out.cols[i] = col
		out.schema.Columns[i] = ColumnSchema{Name: col.Name(), Type: col.Kind(), Nullable: true}
		return out, nil
	}
	out.cols = append(out.cols, col)
	out.schema.Columns = append(out.schema.Columns, ColumnSchema{Name: col.Name(), Type: col.Kind(), Nullable: true})
	out.index[col.Name()] = len(out.cols) - 1
	out.nrows = col.Len()
	return out, nil
}

// Concat appends other's rows below f's. Both frames must carry the same
// column names and kinds in the same order.
func (f *Frame) Concat(other *Frame) (*Frame, error) {
	if len(f.cols) != len(other.cols) {
		return nil, fmt.Errorf("concat: %d columns vs %d", len(f.cols), len(other.cols))
	}
	out := f.Clone()
	for i, c := range out.cols {
		oc := other.cols[i]
		if c.Name() != oc.Name() {
			return nil, fmt.Errorf("concat: column %d is %s vs %s", i, c.Name(), oc.Name())
		}
		if err := c.appendFrom(oc); err != nil {
			return nil, fmt.Errorf("concat: %w", err)
		}
	}
	out.nrows += other.nrows
	return out, nil
}

// Check verifies the frame invariants: unique column names, and every
// column holding exactly Rows() values.
func (f *Frame) Check() error {
	if len(f.cols) != len(f.schema.Columns) {
		return fmt.Errorf("schema lists %d columns, frame holds %d", len(f.schema.Columns), len(f.cols))
	}
	seen := make(map[string]struct{}, len(f.cols))
	for i, c := range f.cols {
		if _, dup := seen[c.Name()]; dup {
			return fmt.Errorf("duplicate column name %q", c.Name())
		}
		seen[c.Name()] = struct{}{}
		if c.Len() != f.nrows {
			return fmt.Errorf("column %s has %d rows, frame has %d", c.Name(), c.Len(), f.nrows)
		}
		if f.schema.Columns[i].Name != c.Name() || f.schema.Columns[i].Type != c.Kind() {
			return fmt.Errorf("schema entry %d out of sync with column %s", i, c.Name())
		}
	}
	return nil
}

// Equal compares shape, names, kinds and every cell. NaN equals NaN and
// times compare by instant.
func (f *Frame) Equal(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.nrows != other.nrows || len(f.cols) != len(other.cols) {
		return false
	}
	for i, c := range f.cols {
		oc := other.cols[i]
		if c.Name() != oc.Name() || c.Kind() != oc.Kind() {
			return false
		}
		for r := 0; r < f.nrows; r++ {
			if !ValuesEqual(c.Value(r), oc.Value(r)) {
				return false
			}
		}
	}
	return true
}

// ValuesEqual compares two cell values as produced by Column.Value.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return false
		}
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return a == b
}

// Diff describes the first difference between two frames, or "" if equal.
func Diff(a, b *Frame) string {
	if a.Equal(b) {
		return ""
	}
	if a.nrows != b.nrows {
		return fmt.Sprintf("rows %d vs %d", a.nrows, b.nrows)
	}
	if !slices.Equal(a.Names(), b.Names()) {
		return fmt.Sprintf("columns %v vs %v", a.Names(), b.Names())
	}
	for i, c := range a.cols {
		oc := b.cols[i]
		if c.Kind() != oc.Kind() {
			return fmt.Sprintf("column %s kind %s vs %s", c.Name(), c.Kind(), oc.Kind())
		}
		for r := 0; r < a.nrows; r++ {
			if !ValuesEqual(c.Value(r), oc.Value(r)) {
				return fmt.Sprintf("column %s row %d: %v vs %v", c.Name(), r, c.Value(r), oc.Value(r))
			}
		}
	}
	return "unknown difference"
}

// NullCount counts null cells in the named columns, or in every column when
// none are named. Unknown names are ignored.
func (f *Frame) NullCount(names ...string) int {
	cols := f.cols
	if len(names) > 0 {
		cols = cols[:0:0]
		for _, n := range names {
			if c, ok := f.ColumnByName(n); ok {
				cols = append(cols, c)
			}
		}
	}
	n := 0
	for _, c := range cols {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				n++
			}
		}
	}
	return n
}
