package builtin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/objectstore"
)

func sample() *d.Frame {
	s := d.NewSchema(
		d.Col("id", d.KindInt),
		d.Col("name", d.KindString),
		d.Col("score", d.KindFloat),
		d.Col("vip", d.KindBool),
	)
	return d.MustFromRecords(s, [][]any{
		{int64(1), "Ana", 9.5, true},
		{int64(2), nil, 7.0, false},
		{int64(3), "Caio", nil, nil},
	})
}

func TestRegistryRoundTrips(t *testing.T) {
	Convey("Given the builtin registry", t, func() {
		reg := Default()
		ctx := context.Background()
		dir := t.TempDir()
		f := sample()

		Convey("It knows every adapter", func() {
			So(reg.Names(), ShouldResemble, []string{"csv", "json", "jsonl", "parquet", "postgres", "sqlite", "xlsx"})
		})

		for _, name := range []string{"a.csv", "a.csv.gz", "a.tsv", "a.json", "a.jsonl", "a.parquet", "a.db", "nested/deeper/a.xlsx"} {
			name := name
			Convey("A frame survives "+name, func() {
				p := filepath.Join(dir, name)
				So(reg.Write(ctx, f, p), ShouldBeNil)
				back, err := reg.Read(ctx, p)
				So(err, ShouldBeNil)
				So(d.Diff(f, back), ShouldEqual, "")
			})
		}

		Convey("An explicit encoding beats the suffix", func() {
			p := filepath.Join(dir, "records.out")
			So(reg.Write(ctx, f, p, formats.WithEncoding("jsonl")), ShouldBeNil)
			back, err := reg.Read(ctx, p, formats.WithEncoding("jsonl"))
			So(err, ShouldBeNil)
			So(back.Rows(), ShouldEqual, 3)
		})

		Convey("Unknown suffixes are unsupported formats", func() {
			err := reg.Write(ctx, f, filepath.Join(dir, "x.avro"))
			var fe *etlerr.FormatError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(errors.Is(err, etlerr.ErrUnsupportedFormat), ShouldBeTrue)
			_, statErr := os.Stat(filepath.Join(dir, "x.avro"))
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})

		Convey("A missing source is a format error", func() {
			_, err := reg.Read(ctx, filepath.Join(dir, "absent.csv"))
			So(etlerr.IsFormat(err), ShouldBeTrue)
		})

		Convey("postgres URLs resolve by scheme", func() {
			a, err := reg.Resolve("postgres://db/wh?table=t", formats.Options{})
			So(err, ShouldBeNil)
			So(a.Name(), ShouldEqual, "postgres")
		})
	})
}

func TestObjectStoreWiring(t *testing.T) {
	Convey("A configured endpoint registers the s3 stager", t, func() {
		_, err := New(false, objectstore.Config{Endpoint: "minio:9000", AccessKey: "k", SecretKey: "s"})
		So(err, ShouldBeNil)
		_, err = New(false, objectstore.Config{Endpoint: "http://minio:9000"})
		So(err, ShouldNotBeNil)
	})
}
