package pgio

import (
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

func TestParseTarget(t *testing.T) {
	tg, err := ParseTarget("postgres://etl:pw@db:5432/wh?sslmode=disable&table=staging.customers", "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(tg.DSN, "table=") || !strings.Contains(tg.DSN, "sslmode=disable") {
		t.Fatalf("dsn: %s", tg.DSN)
	}
	if len(tg.Table) != 2 || tg.Table[0] != "staging" || tg.Table[1] != "customers" {
		t.Fatalf("table: %v", tg.Table)
	}

	tg, err = ParseTarget("postgresql://db/wh", "")
	if err != nil || tg.Table.Sanitize() != `"data"` {
		t.Fatalf("default table: %v %v", tg.Table, err)
	}
	tg, _ = ParseTarget("postgres://db/wh?table=a", "b")
	if tg.Table.Sanitize() != `"b"` {
		t.Fatalf("override: %v", tg.Table)
	}
	if _, err := ParseTarget("mysql://db/wh", ""); err == nil {
		t.Fatal("expected a scheme error")
	}
}

func TestDDL(t *testing.T) {
	s := d.NewSchema(d.Col("id", d.KindInt), d.Col("price", d.KindFloat), d.Col("at", d.KindTime), d.Col("note", d.KindString))
	stmts := DDL(pgx.Identifier{"public", "sales"}, s)
	if stmts[0] != `DROP TABLE IF EXISTS "public"."sales"` {
		t.Fatalf("drop: %s", stmts[0])
	}
	want := `CREATE TABLE "public"."sales" ("id" BIGINT, "price" DOUBLE PRECISION, "at" TIMESTAMPTZ, "note" TEXT)`
	if stmts[1] != want {
		t.Fatalf("create:\n got %s\nwant %s", stmts[1], want)
	}
}

func TestKindForOID(t *testing.T) {
	if KindForOID(pgtype.Int4OID) != d.KindInt || KindForOID(pgtype.NumericOID) != d.KindFloat ||
		KindForOID(pgtype.TimestamptzOID) != d.KindTime || KindForOID(pgtype.JSONBOID) != d.KindString {
		t.Fatal("unexpected OID mapping")
	}
}

func TestPlainNumeric(t *testing.T) {
	var n pgtype.Numeric
	if err := n.Scan("12.5"); err != nil {
		t.Fatal(err)
	}
	if v := plain(n); v != 12.5 {
		t.Fatalf("got %v", v)
	}
	if plain(pgtype.Numeric{}) != nil {
		t.Fatal("invalid numeric should be null")
	}
}
