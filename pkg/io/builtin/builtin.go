// Package builtin assembles the registry of every adapter shipped with the
// module.
package builtin

import (
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/csvio"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/jsonio"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/objectstore"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/parquetio"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/pgio"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/sqlio"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/xlsxio"
)

// New registers the file and database adapters. strict makes delimited
// text reject unparsable cells. s3:// staging is wired only when store has
// an endpoint.
func New(strict bool, store objectstore.Config) (*formats.Registry, error) {
	r := formats.NewRegistry().
		Register(csvio.Adapter{Strict: strict}).
		Register(jsonio.Adapter{}).
		Register(jsonio.Adapter{Lines: true}).
		Register(xlsxio.Adapter{}).
		Register(parquetio.Adapter{}).
		Register(sqlio.Adapter{}).
		Register(pgio.Adapter{}).
		RegisterScheme("postgres", "postgres").
		RegisterScheme("postgresql", "postgres")
	if store.Enabled() {
		c, err := objectstore.New(store)
		if err != nil {
			return nil, err
		}
		r.RegisterStager("s3", c)
	}
	return r, nil
}

// Default is New(true) without object storage.
func Default() *formats.Registry {
	r, _ := New(true, objectstore.Config{})
	return r
}
