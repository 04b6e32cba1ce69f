package parquetio

import (
	"context"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
)

type Adapter struct{}

func (Adapter) Name() string         { return "parquet" }
func (Adapter) Extensions() []string { return []string{".parquet", ".pq"} }

func (Adapter) Read(ctx context.Context, path string, o formats.Options) (*d.Frame, error) {
	return ReadAll(ctx, path)
}

func (Adapter) Write(ctx context.Context, f *d.Frame, path string, o formats.Options) error {
	return WriteAll(path, f, WriterOptions{Workers: o.Workers})
}
