package missing

import (
	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// fillConstant writes value into every null cell of col. The value is
// coerced once; a value the column cannot hold is a ConversionError.
func fillConstant(col d.Column, value any) error {
	v, err := d.Coerce(value, col.Kind())
	if err != nil || v == nil {
		return &etlerr.ConversionError{Field: col.Name(), Row: -1, Value: d.FormatValue(value), Target: col.Kind().String(), Err: err}
	}
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			if err := d.Assign(col, i, v); err != nil {
				return err
			}
		}
	}
	return nil
}
