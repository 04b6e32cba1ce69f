package dataset

import "fmt"

// FromRecords builds a frame from row-major values. Each record must hold
// one value per schema column; nil marks a null cell.
func FromRecords(s Schema, records [][]any) (*Frame, error) {
	f := NewFrame(s)
	for r, rec := range records {
		if len(rec) != len(s.Columns) {
			return nil, fmt.Errorf("record %d has %d values, schema has %d columns", r, len(rec), len(s.Columns))
		}
		f.AppendNullRow()
		for c, cs := range s.Columns {
			if err := f.SetCell(r, cs.Name, rec[c]); err != nil {
				return nil, fmt.Errorf("record %d: %w", r, err)
			}
		}
	}
	return f, nil
}

// MustFromRecords is FromRecords for fixtures; it panics on error.
func MustFromRecords(s Schema, records [][]any) *Frame {
	f, err := FromRecords(s, records)
	if err != nil {
		panic(err)
	}
	return f
}

// NewSchema is shorthand for a nullable schema from name/kind pairs.
func NewSchema(cols ...ColumnSchema) Schema {
	for i := range cols {
		cols[i].Nullable = true
	}
	return Schema{Columns: cols}
}

// Col is shorthand for a ColumnSchema literal.
func Col(name string, k Kind) ColumnSchema { return ColumnSchema{Name: name, Type: k, Nullable: true} }
