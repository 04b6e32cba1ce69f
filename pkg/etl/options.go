package etl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/metrics"
)

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.log = l } }

// WithLogOutput keeps the configured level and format but writes to w
// instead of stderr. WithLogger takes precedence.
func WithLogOutput(w io.Writer) Option { return func(p *Pipeline) { p.logOut = w } }

// WithRegistry replaces the builtin adapter registry.
func WithRegistry(r *formats.Registry) Option { return func(p *Pipeline) { p.reg = r } }

func WithMetrics(m *metrics.Collector) Option { return func(p *Pipeline) { p.metrics = m } }

// WithClock sets the time source for stage timings and report timestamps.
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

// WithContext sets the context passed to adapters and transforms. Once it
// is done every further stage fails.
func WithContext(ctx context.Context) Option { return func(p *Pipeline) { p.ctx = ctx } }

// WithStrict overrides the configured strict mode. Non-strict pipelines
// record conversion and transform failures and carry on.
func WithStrict(strict bool) Option { return func(p *Pipeline) { p.strict = strict } }
