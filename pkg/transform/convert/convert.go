// Package convert coerces columns to new kinds.
package convert

import (
	"context"
	"sort"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Types converts each named column to its target kind. Columns the frame
// lacks are skipped. The first cell that cannot be coerced fails the whole
// conversion with a ConversionError naming the field and row.
type Types struct {
	Targets map[string]d.Kind
}

func (t *Types) Name() string { return "convert_types" }

func (t *Types) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	names := make([]string, 0, len(t.Targets))
	for n := range t.Targets {
		names = append(names, n)
	}
	sort.Strings(names)

	out := f
	for _, n := range names {
		src, ok := out.ColumnByName(n)
		if !ok {
			continue
		}
		target := t.Targets[n]
		if src.Kind() == target {
			continue
		}
		col, err := Column(src, target)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
		}
	}
	return out, nil
}

// Column returns a new column holding src's values coerced to target.
func Column(src d.Column, target d.Kind) (d.Column, error) {
	dst, err := d.NewColumn(src.Name(), target, src.Len())
	if err != nil {
		return nil, &etlerr.ConversionError{Field: src.Name(), Row: -1, Target: target.String(), Err: err}
	}
	for i := 0; i < src.Len(); i++ {
		raw := src.Value(i)
		v, err := d.Coerce(raw, target)
		if err != nil {
			return nil, &etlerr.ConversionError{Field: src.Name(), Row: i, Value: d.FormatValue(raw), Target: target.String(), Err: err}
		}
		if err := d.Assign(dst, i, v); err != nil {
			return nil, &etlerr.ConversionError{Field: src.Name(), Row: i, Value: d.FormatValue(raw), Target: target.String(), Err: err}
		}
	}
	return dst, nil
}

// ParseTargets maps {"age": "int"} style configuration onto kinds.
func ParseTargets(m map[string]string) (map[string]d.Kind, error) {
	out := make(map[string]d.Kind, len(m))
	for col, name := range m {
		k, err := d.ParseKind(name)
		if err != nil {
			return nil, &etlerr.ConfigurationError{Key: "convert_types." + col, Value: name, Err: err}
		}
		out[col] = k
	}
	return out, nil
}
