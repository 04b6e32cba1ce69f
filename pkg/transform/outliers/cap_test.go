package outliers

import (
	"context"
	"testing"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

func TestCap(t *testing.T) {
	lo, hi := 0.0, 100.0
	f := d.MustFromRecords(d.NewSchema(d.Col("n", d.KindInt)), [][]any{{int64(-5)}, {int64(50)}, {nil}, {int64(500)}})
	out, err := (&Cap{Column: "n", Min: &lo, Max: &hi}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	want := []any{int64(0), int64(50), nil, int64(100)}
	for i, w := range want {
		if v, _ := out.Value(i, "n"); v != w {
			t.Fatalf("row %d: got %v want %v", i, v, w)
		}
	}
	if v, _ := f.Value(0, "n"); v != int64(-5) {
		t.Fatal("input was mutated")
	}
}
