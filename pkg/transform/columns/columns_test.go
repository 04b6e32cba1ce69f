package columns

import (
	"context"
	"testing"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

func frame() *d.Frame {
	s := d.NewSchema(d.Col("id", d.KindInt), d.Col("nome", d.KindString), d.Col("idade", d.KindInt))
	return d.MustFromRecords(s, [][]any{{int64(1), "ana", int64(30)}, {int64(2), "bia", int64(41)}})
}

func TestRename(t *testing.T) {
	f := frame()
	tr := &Rename{Mapping: map[string]string{"nome": "name", "idade": "age", "ghost": "x"}}
	out, err := tr.Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Names()
	if got[0] != "id" || got[1] != "name" || got[2] != "age" {
		t.Fatalf("unexpected names %v", got)
	}
	if u := tr.Unknown(f); len(u) != 1 || u[0] != "ghost" {
		t.Fatalf("unknown sources: %v", u)
	}
	if _, err := (&Rename{Mapping: map[string]string{"nome": "id"}}).Apply(context.Background(), f); err == nil {
		t.Fatal("collision must fail")
	}
}

func TestSelectAndDrop(t *testing.T) {
	f := frame()
	sel := &Select{Columns: []string{"idade", "missing", "id"}}
	out, err := sel.Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if n := out.Names(); len(n) != 2 || n[0] != "idade" || n[1] != "id" {
		t.Fatalf("select gave %v", n)
	}
	if s := sel.Skipped(f); len(s) != 1 || s[0] != "missing" {
		t.Fatalf("skipped: %v", s)
	}
	out, err = (&Drop{Columns: []string{"nome"}}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if out.Cols() != 2 || out.Rows() != 2 {
		t.Fatalf("drop gave %dx%d", out.Rows(), out.Cols())
	}
}
