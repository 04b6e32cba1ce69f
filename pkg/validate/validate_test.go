package validate

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

func ptr(v float64) *float64 { return &v }

func customers() *d.Frame {
	s := d.NewSchema(
		d.Col("email", d.KindString),
		d.Col("phone", d.KindString),
		d.Col("age", d.KindInt),
		d.Col("signup", d.KindString),
		d.Col("status", d.KindString),
	)
	return d.MustFromRecords(s, [][]any{
		{"user@example.com", "(11) 98765-4321", int64(25), "2025-12-12", "active"},
		{"invalid.email", "123", int64(150), "2025-13-01", "unknown"},
		{"test.user@domain.co.uk", "+55 11 98765-4321", nil, "2025-01-01", "pending"},
	})
}

func TestPredicates(t *testing.T) {
	Convey("Email", t, func() {
		r := Email{}
		So(r.test("user@example.com"), ShouldBeTrue)
		So(r.test("test.user@domain.co.uk"), ShouldBeTrue)
		So(r.test("invalid.email"), ShouldBeFalse)
		So(r.test("@example.com"), ShouldBeFalse)
		So(r.test("user@"), ShouldBeFalse)
		So(r.test(int64(123)), ShouldBeFalse)
	})
	Convey("Phone", t, func() {
		r := Phone{}
		So(r.test("(11) 98765-4321"), ShouldBeTrue)
		So(r.test("+55 11 98765-4321"), ShouldBeTrue)
		So(r.test("11 98765 4321"), ShouldBeTrue)
		So(r.test("123"), ShouldBeFalse)
		So(r.test("abc"), ShouldBeFalse)
	})
	Convey("Range", t, func() {
		r := Range{Min: ptr(0), Max: ptr(100)}
		So(r.test(int64(50)), ShouldBeTrue)
		So(r.test("20"), ShouldBeTrue)
		So(r.test(int64(150)), ShouldBeFalse)
		So(r.test(-10.0), ShouldBeFalse)
		So(r.test("abc"), ShouldBeFalse)
	})
	Convey("Date with a strftime layout", t, func() {
		r := &Date{Column: "x", Layout: "%d/%m/%Y"}
		So(r.prepare(), ShouldBeNil)
		So(r.test("12/12/2025"), ShouldBeTrue)
		So(r.test("2025-12-12"), ShouldBeFalse)
	})
	Convey("Length and InSet", t, func() {
		So(Length{Min: 1, Max: 10}.test("hello"), ShouldBeTrue)
		So(Length{Min: 3}.test("hi"), ShouldBeFalse)
		So(Length{Max: 3}.test("hello"), ShouldBeFalse)
		in := &InSet{Column: "x", Values: []string{"1", "2", "3"}}
		So(in.prepare(), ShouldBeNil)
		So(in.test(int64(1)), ShouldBeTrue)
		So(in.test(2.0), ShouldBeTrue)
		So(in.test(int64(4)), ShouldBeFalse)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a customer frame with one bad row", t, func() {
		f := customers()
		rep, err := Run(f,
			Required{Column: "email"},
			Email{Column: "email"},
			Phone{Column: "phone"},
			Range{Column: "age", Min: ptr(0), Max: ptr(120)},
			&Date{Column: "signup"},
			&InSet{Column: "status", Values: []string{"active", "inactive", "pending"}},
		)
		So(err, ShouldBeNil)

		Convey("Only row 1 is invalid", func() {
			So(rep.InvalidRows(), ShouldResemble, []int{1})
			So(rep.ValidRows(), ShouldEqual, 2)
			So(rep.Violations(), ShouldEqual, 5)
			So(rep.Fields["email"][0], ShouldResemble, Violation{Row: 1, Rule: "email", Value: "invalid.email"})
		})

		Convey("The report converts into a ValidationError", func() {
			So(etlerr.IsValidation(rep.Err()), ShouldBeTrue)
		})

		Convey("DropInvalid keeps the valid rows without touching the input", func() {
			out, err := (&DropInvalid{Rules: []Rule{Email{Column: "email"}}}).Apply(context.Background(), f)
			So(err, ShouldBeNil)
			So(out.Rows(), ShouldEqual, 2)
			So(f.Rows(), ShouldEqual, 3)
		})
	})

	Convey("A missing field is a violation on every row, not an error", t, func() {
		rep, err := Run(customers(), Required{Column: "zip"})
		So(err, ShouldBeNil)
		So(rep.MissingFields, ShouldResemble, []string{"zip"})
		So(rep.InvalidRowCount(), ShouldEqual, 3)
	})

	Convey("Malformed rules are configuration errors", t, func() {
		for _, r := range []Rule{
			Range{Column: "age", Min: ptr(5), Max: ptr(1)},
			&Pattern{Column: "email", Expr: "("},
			Length{Column: "email", Min: 4, Max: 2},
			Email{},
			&InSet{Column: "status"},
		} {
			_, err := Run(customers(), r)
			So(etlerr.IsConfiguration(err), ShouldBeTrue)
		}
	})
}
