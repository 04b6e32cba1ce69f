package standardize

import (
	"context"
	"testing"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

func cells(f *d.Frame) []any {
	c, _ := f.ColumnByName("s")
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

func TestTextSteps(t *testing.T) {
	ctx := context.Background()
	f := d.MustFromRecords(d.NewSchema(d.Col("s", d.KindString)), [][]any{{"  Foo  "}, {"BAR"}, {nil}})
	chain := d.NewChain().
		Add(&Trim{Column: "s"}).
		Add(&Lower{Column: "s"}).
		Add(&RegexReplace{Column: "s", Pattern: "o+", Replace: "O"}).
		Add(&MapValues{Column: "s", Map: map[string]string{"bar": "baz"}})
	out, err := chain.Run(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	got := cells(out)
	if got[0] != "fO" || got[1] != "baz" || got[2] != nil {
		t.Fatalf("unexpected result %v", got)
	}
	if v, _ := f.Value(0, "s"); v != "  Foo  " {
		t.Fatalf("input was mutated: %q", v)
	}
}

func TestUnchangedFrameIsReturned(t *testing.T) {
	f := d.MustFromRecords(d.NewSchema(d.Col("s", d.KindString)), [][]any{{"x"}})
	out, err := (&Upper{Column: "missing"}).Apply(context.Background(), f)
	if err != nil || out != f {
		t.Fatal("missing column should be a no-op")
	}
	out, _ = (&Lower{Column: "s"}).Apply(context.Background(), f)
	if out != f {
		t.Fatal("no-change should return the same frame")
	}
}

func TestBadPattern(t *testing.T) {
	f := d.MustFromRecords(d.NewSchema(d.Col("s", d.KindString)), [][]any{{"x"}})
	_, err := (&RegexReplace{Column: "s", Pattern: "("}).Apply(context.Background(), f)
	if !etlerr.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
