// Package dataset holds the in-memory table the pipeline operates on: an
// ordered set of named, typed, nullable columns of equal length.
package dataset

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	// Value returns the cell as a Go value, nil when null.
	Value(i int) any

	clone(name string) Column
	take(idx []int) Column
	appendFrom(src Column) error
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: make([]bool, n)}
}
func (c *BoolColumn) Name() string           { return c.name }
func (c *BoolColumn) Kind() Kind             { return KindBool }
func (c *BoolColumn) Len() int               { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool      { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)          { c.data[i] = false; c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)      { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()            { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Append(v bool)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *BoolColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *BoolColumn) clone(name string) Column {
	return &BoolColumn{name: name, data: slices.Clone(c.data), nulls: slices.Clone(c.nulls)}
}
func (c *BoolColumn) take(idx []int) Column {
	return &BoolColumn{name: c.name, data: takeSlice(c.data, idx), nulls: takeSlice(c.nulls, idx)}
}
func (c *BoolColumn) appendFrom(src Column) error {
	s, ok := src.(*BoolColumn)
	if !ok {
		return kindMismatch(c, src)
	}
	c.data = append(c.data, s.data...)
	c.nulls = append(c.nulls, s.nulls...)
	return nil
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: make([]bool, n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.data[i] = 0; c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *IntColumn) clone(name string) Column {
	return &IntColumn{name: name, data: slices.Clone(c.data), nulls: slices.Clone(c.nulls)}
}
func (c *IntColumn) take(idx []int) Column {
	return &IntColumn{name: c.name, data: takeSlice(c.data, idx), nulls: takeSlice(c.nulls, idx)}
}
func (c *IntColumn) appendFrom(src Column) error {
	s, ok := src.(*IntColumn)
	if !ok {
		return kindMismatch(c, src)
	}
	c.data = append(c.data, s.data...)
	c.nulls = append(c.nulls, s.nulls...)
	return nil
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: make([]bool, n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.data[i] = 0; c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *FloatColumn) clone(name string) Column {
	return &FloatColumn{name: name, data: slices.Clone(c.data), nulls: slices.Clone(c.nulls)}
}
func (c *FloatColumn) take(idx []int) Column {
	return &FloatColumn{name: c.name, data: takeSlice(c.data, idx), nulls: takeSlice(c.nulls, idx)}
}
func (c *FloatColumn) appendFrom(src Column) error {
	s, ok := src.(*FloatColumn)
	if !ok {
		return kindMismatch(c, src)
	}
	c.data = append(c.data, s.data...)
	c.nulls = append(c.nulls, s.nulls...)
	return nil
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.data[i] = ""; c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *StringColumn) clone(name string) Column {
	return &StringColumn{name: name, data: slices.Clone(c.data), nulls: slices.Clone(c.nulls)}
}
func (c *StringColumn) take(idx []int) Column {
	return &StringColumn{name: c.name, data: takeSlice(c.data, idx), nulls: takeSlice(c.nulls, idx)}
}
func (c *StringColumn) appendFrom(src Column) error {
	s, ok := src.(*StringColumn)
	if !ok {
		return kindMismatch(c, src)
	}
	c.data = append(c.data, s.data...)
	c.nulls = append(c.nulls, s.nulls...)
	return nil
}

type TimeColumn struct {
	name  string
	data  []time.Time
	nulls []bool
}

func NewTimeColumn(name string, n int) *TimeColumn {
	return &TimeColumn{name: name, data: make([]time.Time, n), nulls: make([]bool, n)}
}
func (c *TimeColumn) Name() string                { return c.name }
func (c *TimeColumn) Kind() Kind                  { return KindTime }
func (c *TimeColumn) Len() int                    { return len(c.data) }
func (c *TimeColumn) IsNull(i int) bool           { return c.nulls[i] }
func (c *TimeColumn) SetNull(i int)               { c.data[i] = time.Time{}; c.nulls[i] = true }
func (c *TimeColumn) Get(i int) (time.Time, bool) { return c.data[i], !c.nulls[i] }
func (c *TimeColumn) Set(i int, v time.Time)      { c.data[i] = v; c.nulls[i] = false }
func (c *TimeColumn) AppendNull() {
	c.data = append(c.data, time.Time{})
	c.nulls = append(c.nulls, true)
}
func (c *TimeColumn) Append(v time.Time) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *TimeColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *TimeColumn) clone(name string) Column {
	return &TimeColumn{name: name, data: slices.Clone(c.data), nulls: slices.Clone(c.nulls)}
}
func (c *TimeColumn) take(idx []int) Column {
	return &TimeColumn{name: c.name, data: takeSlice(c.data, idx), nulls: takeSlice(c.nulls, idx)}
}
func (c *TimeColumn) appendFrom(src Column) error {
	s, ok := src.(*TimeColumn)
	if !ok {
		return kindMismatch(c, src)
	}
	c.data = append(c.data, s.data...)
	c.nulls = append(c.nulls, s.nulls...)
	return nil
}

func takeSlice[T any](src []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, r := range idx {
		out[i] = src[r]
	}
	return out
}

func kindMismatch(dst, src Column) error {
	return fmt.Errorf("column %s: cannot append %s values to %s column", dst.Name(), src.Kind(), dst.Kind())
}

// NewColumn allocates an all-null column of the given kind and length.
func NewColumn(name string, k Kind, n int) (Column, error) {
	var c Column
	switch k {
	case KindBool:
		c = NewBoolColumn(name, n)
	case KindInt:
		c = NewIntColumn(name, n)
	case KindFloat:
		c = NewFloatColumn(name, n)
	case KindString:
		c = NewStringColumn(name, n)
	case KindTime:
		c = NewTimeColumn(name, n)
	default:
		return nil, fmt.Errorf("column %s: invalid kind %d", name, k)
	}
	for i := 0; i < n; i++ {
		c.SetNull(i)
	}
	return c, nil
}

// CloneColumn returns a deep copy of c, optionally under a new name.
func CloneColumn(c Column, name string) Column {
	if name == "" {
		name = c.Name()
	}
	return c.clone(name)
}

// TakeColumn returns a new column holding c's values at rows, in order.
func TakeColumn(c Column, rows []int) Column { return c.take(rows) }

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: Schema{Columns: slices.Clone(s.Columns)}, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		c, err := NewColumn(cs.Name, cs.Type, 0)
		if err != nil {
			panic("invalid column kind")
		}
		f.cols[i] = c
		f.index[cs.Name] = i
	}
	return f
}

// FromColumns assembles a frame around existing columns. The columns are
// owned by the frame afterwards.
func FromColumns(cols ...Column) (*Frame, error) {
	f := &Frame{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true})
		f.index[c.Name()] = i
	}
	if len(cols) > 0 {
		f.nrows = cols[0].Len()
	}
	if err := f.Check(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Frame) Schema() Schema { return Schema{Columns: slices.Clone(f.schema.Columns)} }
func (f *Frame) Rows() int      { return f.nrows }
func (f *Frame) Cols() int      { return len(f.cols) }
func (f *Frame) Names() []string {
	return f.schema.Names()
}

// Column returns the i-th column.
func (f *Frame) Column(i int) Column { return f.cols[i] }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Value returns the cell at row for the named column; ok is false when the
// column does not exist.
func (f *Frame) Value(row int, name string) (v any, ok bool) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, false
	}
	return c.Value(row), true
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		switch col := c.(type) {
		case *BoolColumn:
			col.AppendNull()
		case *IntColumn:
			col.AppendNull()
		case *FloatColumn:
			col.AppendNull()
		case *StringColumn:
			col.AppendNull()
		case *TimeColumn:
			col.AppendNull()
		default:
			panic("unknown column type")
		}
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	return Assign(f.cols[i], row, v)
}

// Assign stores v into c at row, accepting the Go types that map onto the
// column's kind without loss. nil clears the cell.
func Assign(c Column, row int, v any) error {
	if v == nil {
		c.SetNull(row)
		return nil
	}
	name := c.Name()
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool, got %T", name, v)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int32:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			if t != math.Trunc(t) || math.IsInf(t, 0) {
				return fmt.Errorf("column %s expects integral value, got %v", name, t)
			}
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64, got %T", name, v)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int32:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64, got %T", name, v)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string, got %T", name, v)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time, got %T", name, v)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}
