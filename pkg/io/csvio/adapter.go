package csvio

import (
	"context"
	"path/filepath"
	"strings"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
	iox "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/ioutils"
)

// Adapter plugs delimited text into a formats.Registry.
type Adapter struct {
	// Strict is the reader strictness used when no per-call override exists.
	Strict bool
}

func (Adapter) Name() string         { return "csv" }
func (Adapter) Extensions() []string { return []string{".csv", ".tsv", ".txt"} }

func (a Adapter) Read(ctx context.Context, path string, o formats.Options) (*d.Frame, error) {
	fallbacks := o.FallbackCharsets
	if fallbacks == nil {
		fallbacks = iox.DefaultFallbacks
	}
	r := NewReader(ReaderOptions{
		HasHeader:  !o.NoHeader,
		Delimiter:  delimiterFor(path, o.Delimiter),
		SampleRows: o.SampleRows,
		Strict:     a.Strict,
		Charset:    o.Charset,
		Fallbacks:  fallbacks,
		Schema:     o.Schema,
	})
	return r.ReadFile(ctx, path)
}

func (a Adapter) Write(ctx context.Context, f *d.Frame, path string, o formats.Options) error {
	return WriteAll(path, f, WriterOptions{
		Delimiter: delimiterFor(path, o.Delimiter),
		NoHeader:  o.NoHeader,
		Charset:   o.Charset,
	})
}

// delimiterFor defaults .tsv files to tabs.
func delimiterFor(path string, given rune) rune {
	if given != 0 {
		return given
	}
	if strings.EqualFold(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")), ".tsv") {
		return '\t'
	}
	return 0
}
