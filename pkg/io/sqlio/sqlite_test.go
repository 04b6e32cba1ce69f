package sqlio

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

func TestRoundTrip(t *testing.T) {
	s := d.NewSchema(
		d.Col("id", d.KindInt),
		d.Col("name", d.KindString),
		d.Col("score", d.KindFloat),
		d.Col("active", d.KindBool),
		d.Col("joined", d.KindTime),
	)
	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := d.MustFromRecords(s, [][]any{
		{int64(1), "Ana", 9.5, true, when},
		{int64(2), nil, nil, false, nil},
		{int64(3), `O"Brien`, 7.25, nil, when.Add(48 * time.Hour)},
	})
	p := filepath.Join(t.TempDir(), "out.db")
	ctx := context.Background()
	// batch size 2 forces a second INSERT
	if err := WriteAll(ctx, p, "people", f, 2); err != nil {
		t.Fatal(err)
	}
	back, err := ReadAll(ctx, p, "people")
	if err != nil {
		t.Fatal(err)
	}
	if !f.Equal(back) {
		t.Fatalf("round trip differs: %s", d.Diff(f, back))
	}

	// writing again replaces the table
	if err := WriteAll(ctx, p, "people", f.Take([]int{0}), 0); err != nil {
		t.Fatal(err)
	}
	back, err = ReadAll(ctx, p, "people")
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 1 {
		t.Fatalf("want 1 row after rewrite, got %d", back.Rows())
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := ReadAll(context.Background(), filepath.Join(t.TempDir(), "none.db"), ""); err == nil {
		t.Fatal("expected an error for a missing database")
	}
}

func TestCreateTableQuotes(t *testing.T) {
	stmts := CreateTable("my table", d.NewSchema(d.Col(`a"b`, d.KindInt), d.Col("t", d.KindTime)))
	if stmts[0] != `DROP TABLE IF EXISTS "my table"` {
		t.Fatalf("drop: %s", stmts[0])
	}
	if !strings.Contains(stmts[1], `"a""b" INTEGER, "t" TIMESTAMP`) {
		t.Fatalf("create: %s", stmts[1])
	}
}

func TestKindFor(t *testing.T) {
	cases := map[string]d.Kind{
		"INTEGER": d.KindInt, "bigint": d.KindInt, "REAL": d.KindFloat,
		"DOUBLE PRECISION": d.KindFloat, "BOOLEAN": d.KindBool,
		"TIMESTAMP": d.KindTime, "DATE": d.KindTime, "VARCHAR(20)": d.KindString,
	}
	for decl, want := range cases {
		if k, ok := KindFor(decl); !ok || k != want {
			t.Fatalf("%s: got %s %v", decl, k, ok)
		}
	}
	if _, ok := KindFor(""); ok {
		t.Fatal("empty declaration should not map")
	}
}
