// Package golearn converts between dataset frames and
// github.com/sjwhitworth/golearn/base DenseInstances, so cleaned data can
// feed golearn models directly.
package golearn

import (
	"fmt"
	"math"
	"slices"

	"github.com/sjwhitworth/golearn/base"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// ToDenseInstances converts f. Int and float columns become float
// attributes with nulls stored as NaN; every other kind becomes a
// categorical attribute over the text form, with nulls as the empty
// category. class, when set, names the class attribute.
func ToDenseInstances(f *d.Frame, class string) (*base.DenseInstances, error) {
	attrs := make([]base.Attribute, f.Cols())
	for i := range attrs {
		col := f.Column(i)
		if col.Kind().Numeric() {
			attrs[i] = base.NewFloatAttribute(col.Name())
			continue
		}
		ca := new(base.CategoricalAttribute)
		ca.SetName(col.Name())
		attrs[i] = ca
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for c := range attrs {
		col := f.Column(c)
		for r := 0; r < f.Rows(); r++ {
			v := col.Value(r)
			if !col.Kind().Numeric() {
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(d.FormatValue(v)))
				continue
			}
			x := math.NaN()
			switch t := v.(type) {
			case int64:
				x = float64(t)
			case float64:
				x = t
			}
			inst.Set(specs[c], r, base.PackFloatToBytes(x))
		}
	}

	if class != "" {
		i := slices.Index(f.Names(), class)
		if i < 0 {
			return nil, fmt.Errorf("class attribute %q: %w", class, etlerr.ErrColumnNotFound)
		}
		if err := inst.AddClassAttribute(attrs[i]); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// FromDenseInstances converts inst into a frame of float and string
// columns. NaN and the empty category read back as null.
func FromDenseInstances(inst *base.DenseInstances) (*d.Frame, error) {
	attrs := inst.AllAttributes()
	_, nrows := inst.Size()
	cols := make([]d.Column, len(attrs))
	for i, a := range attrs {
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		if a.GetType() == base.Float64Type {
			fc := d.NewFloatColumn(a.GetName(), 0)
			for r := 0; r < nrows; r++ {
				v := base.UnpackBytesToFloat(inst.Get(spec, r))
				if math.IsNaN(v) {
					fc.AppendNull()
				} else {
					fc.Append(v)
				}
			}
			cols[i] = fc
			continue
		}
		sc := d.NewStringColumn(a.GetName(), 0)
		for r := 0; r < nrows; r++ {
			if s := a.GetStringFromSysVal(inst.Get(spec, r)); s == "" {
				sc.AppendNull()
			} else {
				sc.Append(s)
			}
		}
		cols[i] = sc
	}
	return d.FromColumns(cols...)
}
