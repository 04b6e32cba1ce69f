package jsonio

import (
	"context"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
)

// Adapter serves both JSON flavours; Lines selects JSON Lines output.
type Adapter struct {
	Lines bool
}

func (a Adapter) Name() string {
	if a.Lines {
		return "jsonl"
	}
	return "json"
}

func (a Adapter) Extensions() []string {
	if a.Lines {
		return []string{".jsonl", ".ndjson"}
	}
	return []string{".json"}
}

// Read accepts either flavour regardless of the adapter.
func (a Adapter) Read(ctx context.Context, path string, o formats.Options) (*d.Frame, error) {
	return ReadFile(ctx, path, ReaderOptions{Schema: o.Schema})
}

func (a Adapter) Write(ctx context.Context, f *d.Frame, path string, o formats.Options) error {
	return WriteAll(path, f, WriterOptions{Lines: a.Lines})
}
