// Package formats defines the adapter contract shared by every encoding and
// the registry that picks an adapter for a source or destination.
package formats

import (
	"context"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

// Adapter reads and writes one encoding.
type Adapter interface {
	Name() string
	// Extensions lists the lower-case file suffixes (with dot) handled by
	// the adapter.
	Extensions() []string
	Read(ctx context.Context, path string, o Options) (*d.Frame, error)
	Write(ctx context.Context, f *d.Frame, path string, o Options) error
}

// Options carries the per-call knobs. Adapters ignore fields that do not
// apply to them.
type Options struct {
	Encoding         string
	Delimiter        rune
	NoHeader         bool
	Charset          string
	FallbackCharsets []string
	Sheet            string
	Table            string
	Schema           *d.Schema
	Append           bool
	BatchSize        int
	Workers          int
	SampleRows       int
}

type Option func(*Options)

// Apply folds opts over a copy of o.
func (o Options) Apply(opts ...Option) Options {
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithEncoding forces an adapter by name instead of the path suffix.
func WithEncoding(name string) Option { return func(o *Options) { o.Encoding = name } }

func WithDelimiter(r rune) Option { return func(o *Options) { o.Delimiter = r } }

// NoHeader treats the first delimited line as data; columns become col_0..n.
func NoHeader() Option { return func(o *Options) { o.NoHeader = true } }

func WithCharset(name string) Option { return func(o *Options) { o.Charset = name } }

func WithFallbackCharsets(names ...string) Option {
	return func(o *Options) { o.FallbackCharsets = names }
}

func WithSheet(name string) Option { return func(o *Options) { o.Sheet = name } }

func WithTable(name string) Option { return func(o *Options) { o.Table = name } }

// WithSchema skips kind inference and reads columns with the given kinds.
func WithSchema(s d.Schema) Option { return func(o *Options) { o.Schema = &s } }

// WithAppend makes an extract concatenate onto the current dataset.
func WithAppend() Option { return func(o *Options) { o.Append = true } }

func WithBatchSize(n int) Option { return func(o *Options) { o.BatchSize = n } }

func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

func WithSampleRows(n int) Option { return func(o *Options) { o.SampleRows = n } }
