package jsonio

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
)

func TestReadKeepsKeyOrder(t *testing.T) {
	src := `[{"zeta": 1, "alpha": "a", "mid": 2.5},
	         {"alpha": "b", "zeta": 2, "extra": true, "mid": 3}]`
	f, err := Read(context.Background(), strings.NewReader(src), ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(f.Names(), ",")
	if got != "zeta,alpha,mid,extra" {
		t.Fatalf("column order %s", got)
	}
	kinds := []d.Kind{d.KindInt, d.KindString, d.KindFloat, d.KindBool}
	for i, cs := range f.Schema().Columns {
		if cs.Type != kinds[i] {
			t.Fatalf("%s is %s, want %s", cs.Name, cs.Type, kinds[i])
		}
	}
	if v, _ := f.Value(0, "extra"); v != nil {
		t.Fatalf("absent key should read as null, got %v", v)
	}
}

func TestReadLines(t *testing.T) {
	src := "{\"id\": 1, \"tags\": [\"a\"]}\n{\"id\": 2, \"tags\": null}\n\n{\"id\": 3}\n"
	f, err := Read(context.Background(), strings.NewReader(src), ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 3 {
		t.Fatalf("rows %d", f.Rows())
	}
	if v, _ := f.Value(0, "tags"); v != `["a"]` {
		t.Fatalf("nested values become JSON text, got %v", v)
	}
}

func TestWriteFormatsFloatsAndNulls(t *testing.T) {
	s := d.NewSchema(d.Col("b", d.KindFloat), d.Col("a", d.KindString))
	f := d.MustFromRecords(s, [][]any{{2.0, "x"}, {nil, nil}})
	var buf bytes.Buffer
	if err := Write(&buf, f, WriterOptions{}); err != nil {
		t.Fatal(err)
	}
	want := `[{"b":2.0,"a":"x"},{"b":null,"a":null}]` + "\n"
	if buf.String() != want {
		t.Fatalf("got %s", buf.String())
	}
}

func TestAdapterRoundTrip(t *testing.T) {
	s := d.NewSchema(d.Col("id", d.KindInt), d.Col("score", d.KindFloat), d.Col("name", d.KindString),
		d.Col("ok", d.KindBool), d.Col("at", d.KindTime))
	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := d.MustFromRecords(s, [][]any{
		{int64(1), 1.0, "Ana", true, when},
		{int64(2), nil, "Bob", false, nil},
	})
	dir := t.TempDir()
	for _, a := range []Adapter{{}, {Lines: true}} {
		p := filepath.Join(dir, "out"+a.Extensions()[0])
		if err := a.Write(context.Background(), f, p, formats.Options{}); err != nil {
			t.Fatal(err)
		}
		back, err := a.Read(context.Background(), p, formats.Options{})
		if err != nil {
			t.Fatal(err)
		}
		if !f.Equal(back) {
			t.Fatalf("%s round trip: %s", a.Name(), d.Diff(f, back))
		}
	}
}

func TestEmptyLinesAreZeroRows(t *testing.T) {
	f, err := Read(context.Background(), strings.NewReader("\n  \n"), ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 0 || f.Cols() != 0 {
		t.Fatalf("got %d rows, %d cols", f.Rows(), f.Cols())
	}

	s := d.NewSchema(d.Col("id", d.KindInt), d.Col("email", d.KindString))
	empty := d.NewFrame(s)
	p := filepath.Join(t.TempDir(), "none.jsonl")
	a := Adapter{Lines: true}
	if err := a.Write(context.Background(), empty, p, formats.Options{}); err != nil {
		t.Fatal(err)
	}
	back, err := a.Read(context.Background(), p, formats.Options{Schema: &s})
	if err != nil {
		t.Fatal(err)
	}
	if !empty.Equal(back) {
		t.Fatalf("zero-row round trip: %s", d.Diff(empty, back))
	}
}
