package derive

import (
	"context"
	"errors"
	"testing"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

func orders() *d.Frame {
	s := d.NewSchema(d.Col("qty", d.KindInt), d.Col("price", d.KindFloat))
	return d.MustFromRecords(s, [][]any{{int64(2), 10.0}, {int64(3), nil}, {int64(1), 2.5}})
}

func TestAddColumn(t *testing.T) {
	total := &Add{Column: "total", Fn: func(r d.Row) (any, error) {
		if r.IsNull("price") {
			return nil, nil
		}
		q, err := r.Float("qty")
		if err != nil {
			return nil, err
		}
		p, err := r.Float("price")
		if err != nil {
			return nil, err
		}
		return q * p, nil
	}}
	f := orders()
	out, err := total.Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	col, ok := out.ColumnByName("total")
	if !ok || col.Kind() != d.KindFloat {
		t.Fatal("total column missing or wrong kind")
	}
	if col.Value(0) != 20.0 || col.Value(1) != nil || col.Value(2) != 2.5 {
		t.Fatalf("unexpected totals %v %v %v", col.Value(0), col.Value(1), col.Value(2))
	}
	if f.Cols() != 2 {
		t.Fatal("input gained a column")
	}
}

func TestAddColumnMissingField(t *testing.T) {
	bad := &Add{Column: "x", Fn: func(r d.Row) (any, error) { return r.Int("discount") }}
	_, err := bad.Apply(context.Background(), orders())
	var ce *etlerr.ConversionError
	if !errors.As(err, &ce) || ce.Field != "discount" {
		t.Fatalf("expected conversion error for discount, got %v", err)
	}
}

func TestAddColumnMixedKinds(t *testing.T) {
	mixed := &Add{Column: "x", Fn: func(r d.Row) (any, error) {
		if r.Index() == 0 {
			return "a", nil
		}
		return 1, nil
	}}
	if _, err := mixed.Apply(context.Background(), orders()); !etlerr.IsConversion(err) {
		t.Fatalf("expected conversion error, got %v", err)
	}
}
