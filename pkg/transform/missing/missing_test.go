package missing

import (
	"context"
	"math"
	"testing"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

func makeFloatFrame() *d.Frame {
	s := d.Schema{Columns: []d.ColumnSchema{{Name: "x", Type: d.KindFloat, Nullable: true}}}
	f := d.NewFrame(s)
	for i := 0; i < 5; i++ {
		f.AppendNullRow()
	}
	col, _ := f.ColumnByName("x")
	c := col.(*d.FloatColumn)
	c.Set(0, 1.0)
	c.Set(2, 3.0)
	// rows 1,3,4 remain null
	return f
}

func floats(t *testing.T, f *d.Frame, name string) []any {
	t.Helper()
	col, ok := f.ColumnByName(name)
	if !ok {
		t.Fatalf("column %s missing", name)
	}
	out := make([]any, col.Len())
	for i := range out {
		out[i] = col.Value(i)
	}
	return out
}

func TestFillStrategies(t *testing.T) {
	cases := []struct {
		name string
		s    Strategy
		want []any
	}{
		{"constant", FillWith(2.5), []any{1.0, 2.5, 3.0, 2.5, 2.5}},
		{"mean", FillMean(), []any{1.0, 2.0, 3.0, 2.0, 2.0}},
		{"median", FillMedian(), []any{1.0, 2.0, 3.0, 2.0, 2.0}},
		{"mode", FillMode(), []any{1.0, 1.0, 3.0, 1.0, 1.0}},
		{"ffill", ForwardFill(), []any{1.0, 1.0, 3.0, 3.0, 3.0}},
		{"bfill", BackwardFill(), []any{1.0, 3.0, 3.0, nil, nil}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := makeFloatFrame()
			out, err := (&Handle{Columns: []string{"x"}, Strategy: tc.s}).Apply(context.Background(), f)
			if err != nil {
				t.Fatal(err)
			}
			got := floats(t, out, "x")
			for i := range tc.want {
				if !d.ValuesEqual(got[i], tc.want[i]) {
					t.Fatalf("row %d: got %v want %v", i, got[i], tc.want[i])
				}
			}
			if f.NullCount() != 3 {
				t.Fatal("input frame was mutated")
			}
		})
	}
}

func TestDropAndAuto(t *testing.T) {
	s := d.NewSchema(d.Col("id", d.KindInt), d.Col("email", d.KindString))
	f := d.MustFromRecords(s, [][]any{{int64(1), "a@x.com"}, {nil, "b@x.com"}, {int64(3), nil}, {int64(5), "c@x.com"}})

	out, err := (&Handle{Strategy: Drop()}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 2 {
		t.Fatalf("drop kept %d rows", out.Rows())
	}

	out, err = (&Handle{Strategy: Auto("N/A")}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Value(1, "id"); v != int64(3) {
		t.Fatalf("auto should fill ints with the median, got %v", v)
	}
	if v, _ := out.Value(2, "email"); v != "N/A" {
		t.Fatalf("auto should fill text with the placeholder, got %v", v)
	}
}

func TestFillWithIncompatibleValue(t *testing.T) {
	f := makeFloatFrame()
	_, err := (&Handle{Columns: []string{"x"}, Strategy: FillWith("abc")}).Apply(context.Background(), f)
	if !etlerr.IsConversion(err) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	_, err = (&Handle{Columns: []string{"nope"}, Strategy: Drop()}).Apply(context.Background(), f)
	if err == nil {
		t.Fatal("unknown column must fail")
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]string{"drop": "drop", "fill:0": "fill:0", "forward_fill": "ffill", "bfill": "bfill", "auto": "auto:N/A", "median": "median"} {
		s, err := ParseStrategy(in)
		if err != nil {
			t.Fatal(err)
		}
		if s.String() != want {
			t.Fatalf("ParseStrategy(%q) = %s", in, s)
		}
	}
	if s, err := ParseStrategy("none"); s != nil || err != nil {
		t.Fatal("none must map to a nil strategy")
	}
	if _, err := ParseStrategy("interpolate"); err == nil {
		t.Fatal("unknown strategy must fail")
	}
}

func TestIntMedianRounding(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{1, 2, 2},
		{-3, -2, -3},
		{-1, 2, 1},
		{-2, 1, -1},
		{3, 5, 4},
		{-5, -3, -4},
		{math.MaxInt64 - 1, math.MaxInt64, math.MaxInt64},
		{math.MinInt64, math.MinInt64 + 1, math.MinInt64},
		{math.MinInt64, math.MaxInt64, -1},
	}
	for _, c := range cases {
		if got := midpoint(c.a, c.b); got != c.want {
			t.Errorf("midpoint(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}

	f := d.MustFromRecords(d.NewSchema(d.Col("n", d.KindInt)), [][]any{{int64(-3)}, {nil}, {int64(-2)}})
	out, err := (&Handle{Strategy: FillMedian()}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Value(1, "n"); v != int64(-3) {
		t.Fatalf("median fill = %v, want -3", v)
	}
}
