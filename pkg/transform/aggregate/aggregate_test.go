package aggregate

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

func staff() *d.Frame {
	s := d.NewSchema(d.Col("name", d.KindString), d.Col("department", d.KindString), d.Col("salary", d.KindInt))
	return d.MustFromRecords(s, [][]any{
		{"João", "TI", int64(5000)},
		{"Maria", "RH", int64(6000)},
		{"Pedro", "TI", int64(7000)},
		{"Ana", "Vendas", int64(4000)},
		{"Carlos", "RH", nil},
	})
}

func column(f *d.Frame, name string) []any {
	c, _ := f.ColumnByName(name)
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	Convey("Given staff grouped by department", t, func() {
		agg := &Aggregate{GroupBy: []string{"department"}, Specs: []Spec{
			{Column: "salary", Func: Sum},
			{Column: "salary", Func: Mean},
			{Column: "name", Func: Count, As: "headcount"},
		}}
		out, err := agg.Apply(ctx, staff())
		So(err, ShouldBeNil)

		Convey("There is one row per department in first-seen order", func() {
			So(out.Rows(), ShouldEqual, 3)
			So(column(out, "department"), ShouldResemble, []any{"TI", "RH", "Vendas"})
		})

		Convey("Repeated sources get suffixed names and nulls are skipped", func() {
			So(out.Names(), ShouldResemble, []string{"department", "salary_sum", "salary_mean", "headcount"})
			So(column(out, "salary_sum"), ShouldResemble, []any{int64(12000), int64(6000), int64(4000)})
			So(column(out, "salary_mean"), ShouldResemble, []any{6000.0, 6000.0, 4000.0})
			So(column(out, "headcount"), ShouldResemble, []any{int64(2), int64(2), int64(1)})
		})
	})

	Convey("Without group columns the whole frame collapses to one row", t, func() {
		out, err := (&Aggregate{Specs: []Spec{{Column: "salary", Func: Max}, {Column: "name", Func: Min}}}).Apply(ctx, staff())
		So(err, ShouldBeNil)
		So(out.Rows(), ShouldEqual, 1)
		So(column(out, "salary"), ShouldResemble, []any{int64(7000)})
		So(column(out, "name"), ShouldResemble, []any{"Ana"})
	})

	Convey("Numeric functions reject text columns", t, func() {
		_, err := (&Aggregate{Specs: []Spec{{Column: "name", Func: Sum}}}).Apply(ctx, staff())
		So(err, ShouldNotBeNil)
	})
}
