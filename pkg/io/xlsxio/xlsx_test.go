package xlsxio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

func TestRoundTrip(t *testing.T) {
	s := d.NewSchema(d.Col("name", d.KindString), d.Col("age", d.KindInt), d.Col("score", d.KindFloat), d.Col("vip", d.KindBool))
	f := d.MustFromRecords(s, [][]any{
		{"Ana", int64(30), 7.25, true},
		{"Bob", nil, 8.5, false},
	})
	p := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteAll(p, f, ""); err != nil {
		t.Fatal(err)
	}

	xf, err := excelize.OpenFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if sheets := xf.GetSheetList(); len(sheets) != 1 || sheets[0] != DefaultSheet {
		t.Fatalf("sheets %v", sheets)
	}
	_ = xf.Close()

	back, err := ReadAll(context.Background(), p, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Equal(back) {
		t.Fatalf("round trip differs: %s", d.Diff(f, back))
	}
}

func TestNamedSheet(t *testing.T) {
	f := d.MustFromRecords(d.NewSchema(d.Col("x", d.KindString)), [][]any{{"a"}})
	p := filepath.Join(t.TempDir(), "named.xlsx")
	if err := WriteAll(p, f, "Clientes"); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadAll(context.Background(), p, "Clientes", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadAll(context.Background(), p, "Missing", nil); err == nil {
		t.Fatal("expected an error for an unknown sheet")
	}
}

func TestExplicitSchema(t *testing.T) {
	s := d.NewSchema(d.Col("zip", d.KindString), d.Col("n", d.KindInt))
	ctx := context.Background()
	for name, rows := range map[string][][]any{
		"leading zeros": {{"007", int64(1)}, {"0100", nil}},
		"zero rows":     nil,
	} {
		f := d.MustFromRecords(s, rows)
		p := filepath.Join(t.TempDir(), "schema.xlsx")
		if err := WriteAll(p, f, ""); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		back, err := ReadAll(ctx, p, "", &s)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !f.Equal(back) {
			t.Errorf("%s: round trip differs: %s", name, d.Diff(f, back))
		}
	}

	if _, err := ReadAll(ctx, writeOne(t), "", &s); !etlerr.IsConfiguration(err) {
		t.Fatalf("column count mismatch: got %v", err)
	}
}

func TestEmptyTextUnderNonNullableSchema(t *testing.T) {
	s := d.Schema{Columns: []d.ColumnSchema{{Name: "code", Type: d.KindString}}}
	f := d.MustFromRecords(d.NewSchema(d.Col("code", d.KindString)), [][]any{{"a"}, {""}})
	p := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := WriteAll(p, f, ""); err != nil {
		t.Fatal(err)
	}
	back, err := ReadAll(context.Background(), p, "", &s)
	if err != nil {
		t.Fatal(err)
	}
	if v := back.Column(0).Value(1); v != "" {
		t.Fatalf("row 1 = %#v, want empty string", v)
	}
}

func writeOne(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "one.xlsx")
	f := d.MustFromRecords(d.NewSchema(d.Col("x", d.KindString)), [][]any{{"a"}})
	if err := WriteAll(p, f, ""); err != nil {
		t.Fatal(err)
	}
	return p
}
