package convert

import (
	"context"
	"errors"
	"testing"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

func raw() *d.Frame {
	s := d.NewSchema(d.Col("age", d.KindString), d.Col("joined", d.KindString), d.Col("score", d.KindInt))
	return d.MustFromRecords(s, [][]any{
		{"30", "2024-01-15", int64(7)},
		{" 41 ", "2023-12-01", nil},
		{"", "2022-06-30", int64(9)},
	})
}

func TestConvertTypes(t *testing.T) {
	f := raw()
	out, err := (&Types{Targets: map[string]d.Kind{"age": d.KindInt, "joined": d.KindTime, "score": d.KindFloat, "ghost": d.KindInt}}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Value(1, "age"); v != int64(41) {
		t.Fatalf("age row 1: %v", v)
	}
	if v, _ := out.Value(2, "age"); v != nil {
		t.Fatalf("blank age should become null, got %v", v)
	}
	if v, _ := out.Value(0, "joined"); !v.(time.Time).Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("joined row 0: %v", v)
	}
	if v, _ := out.Value(0, "score"); v != 7.0 {
		t.Fatalf("score row 0: %v", v)
	}
	if c, _ := f.ColumnByName("age"); c.Kind() != d.KindString {
		t.Fatal("input frame changed kind")
	}
}

func TestConvertFailureNamesRow(t *testing.T) {
	s := d.NewSchema(d.Col("age", d.KindString))
	f := d.MustFromRecords(s, [][]any{{"30"}, {"trinta"}})
	_, err := (&Types{Targets: map[string]d.Kind{"age": d.KindInt}}).Apply(context.Background(), f)
	var ce *etlerr.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	if ce.Field != "age" || ce.Row != 1 || ce.Value != "trinta" {
		t.Fatalf("unexpected error detail %+v", ce)
	}
}

func TestParseTargets(t *testing.T) {
	m, err := ParseTargets(map[string]string{"age": "int", "price": "float"})
	if err != nil || m["age"] != d.KindInt || m["price"] != d.KindFloat {
		t.Fatalf("ParseTargets: %v %v", m, err)
	}
	if _, err := ParseTargets(map[string]string{"age": "decimal128"}); !etlerr.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
