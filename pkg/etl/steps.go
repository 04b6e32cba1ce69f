package etl

import (
	"fmt"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/stats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/aggregate"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/columns"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/convert"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/dedup"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/derive"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/filter"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/missing"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/normalize"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/validate"
)

// Extract reads src into the pipeline. A second extract needs
// formats.WithAppend, which concatenates the new rows onto the current frame
// (columns must match by name and kind).
func (p *Pipeline) Extract(src string, opts ...formats.Option) *Pipeline {
	o := formats.Options{}.Apply(opts...)
	allowed := func(s State) bool { return s == Idle || (o.Append && s.hasData()) }
	if p.blocked("extract", allowed, "dataset already extracted; pass formats.WithAppend to add rows") {
		return p
	}
	p.rec.Start()
	defaults := []formats.Option{formats.WithBatchSize(p.cfg.BatchSize), formats.WithWorkers(p.cfg.MaxWorkers)}
	start := p.now()
	rec := stats.Record{Name: "extract", Kind: stats.KindExtract, Target: src, Started: start}
	if p.frame != nil {
		rec.RowsIn = p.frame.Rows()
	}
	rec.RowsOut = rec.RowsIn

	f, err := p.reg.Read(p.ctx, src, append(defaults, opts...)...)
	if err == nil && p.frame != nil && o.Append {
		f, err = p.frame.Concat(f)
		if err != nil {
			err = &etlerr.FormatError{Op: "extract", Path: src, Err: fmt.Errorf("appended source does not match: %w", err)}
		}
	}
	rec.Duration = p.now().Sub(start)
	if err != nil {
		p.record(rec, err)
		p.fail("extract", err, false)
		return p
	}
	rec.RowsOut = f.Rows()
	p.frame = f
	if p.state == Idle {
		p.state = Extracted
	}
	p.record(rec, nil)
	return p
}

// Load writes the current frame to dst. The frame is not consumed, so loads
// fan out to as many destinations as needed.
func (p *Pipeline) Load(dst string, opts ...formats.Option) *Pipeline {
	if p.blocked("load", State.hasData, "nothing extracted yet") {
		return p
	}
	defaults := []formats.Option{formats.WithBatchSize(p.cfg.BatchSize), formats.WithWorkers(p.cfg.MaxWorkers)}
	start := p.now()
	err := p.reg.Write(p.ctx, p.frame, dst, append(defaults, opts...)...)
	p.record(stats.Record{
		Name:     "load",
		Kind:     stats.KindLoad,
		Target:   dst,
		RowsIn:   p.frame.Rows(),
		RowsOut:  p.frame.Rows(),
		Started:  start,
		Duration: p.now().Sub(start),
	}, err)
	if err != nil {
		p.fail("load", err, false)
	}
	return p
}

// Validate checks rules against the current frame without changing it. The
// report is kept for ValidationReport and the stats. Violations only stop
// the pipeline when fail_on_violation is set.
func (p *Pipeline) Validate(rules ...validate.Rule) *Pipeline {
	if p.blocked("validate", State.hasData, "nothing extracted yet") {
		return p
	}
	start := p.now()
	rep, err := validate.Run(p.frame, rules...)
	rec := stats.Record{
		Name:    "validate",
		Kind:    stats.KindValidate,
		RowsIn:  p.frame.Rows(),
		RowsOut: p.frame.Rows(),
		Started: start,
	}
	if err != nil {
		rec.Duration = p.now().Sub(start)
		p.record(rec, err)
		p.fail("validate", err, true)
		return p
	}
	p.validation = rep
	fields := make(map[string]int, len(rep.Fields))
	for _, name := range rep.FieldNames() {
		fields[name] = len(rep.Fields[name])
	}
	p.rec.SetValidation(stats.ValidationSummary{
		Rows:        rep.Rows,
		ValidRows:   rep.ValidRows(),
		InvalidRows: rep.InvalidRowCount(),
		Violations:  rep.Violations(),
		Fields:      fields,
	})
	var verr error
	if p.cfg.FailOnViolation {
		verr = rep.Err()
	}
	rec.Duration = p.now().Sub(start)
	p.record(rec, verr)
	if !rep.OK() {
		p.log.Warn("validation violations", "invalid_rows", rep.InvalidRowCount(), "violations", rep.Violations(), "fields", rep.FieldNames())
	}
	if verr != nil {
		p.fail("validate", verr, true)
	}
	return p
}

// DropInvalid removes rows that break any rule.
func (p *Pipeline) DropInvalid(rules ...validate.Rule) *Pipeline {
	return p.transform(&validate.DropInvalid{Rules: rules}, false, nil)
}

// Deduplicate keeps the first of each group of identical rows, comparing
// only subset when given.
func (p *Pipeline) Deduplicate(subset ...string) *Pipeline {
	return p.DeduplicateKeep(dedup.KeepFirst, subset...)
}

func (p *Pipeline) DeduplicateKeep(keep dedup.Keep, subset ...string) *Pipeline {
	return p.transform(&dedup.Dedup{Subset: subset, Keep: keep}, false, func(before, after *d.Frame) {
		p.rec.Count(func(c *stats.Counters) { c.DuplicatesRemoved += before.Rows() - after.Rows() })
	})
}

// HandleMissing applies strategy to columns, or to every column when none
// are named.
func (p *Pipeline) HandleMissing(strategy missing.Strategy, columns ...string) *Pipeline {
	if strategy == nil {
		if !p.blocked("handle_missing", State.hasData, "nothing extracted yet") {
			p.fail("handle_missing", &etlerr.ConfigurationError{Key: "strategy", Reason: "no missing-value strategy given"}, true)
		}
		return p
	}
	return p.transform(&missing.Handle{Columns: columns, Strategy: strategy}, false, func(before, after *d.Frame) {
		handled := before.NullCount(columns...) - after.NullCount(columns...)
		p.rec.Count(func(c *stats.Counters) { c.MissingValuesHandled += handled })
	})
}

// Clean applies the configured defaults: deduplication when
// remove_duplicates_default is set, then handle_missing_default.
func (p *Pipeline) Clean() *Pipeline {
	if p.cfg.RemoveDuplicatesDefault {
		p.Deduplicate()
	}
	strategy, err := missing.ParseStrategy(p.cfg.HandleMissingDefault)
	if err != nil {
		if !p.blocked("clean", State.hasData, "nothing extracted yet") {
			p.fail("clean", &etlerr.ConfigurationError{Key: "handle_missing_default", Value: p.cfg.HandleMissingDefault, Err: err}, true)
		}
		return p
	}
	if strategy != nil {
		p.HandleMissing(strategy)
	}
	return p
}

func (p *Pipeline) RenameColumns(mapping map[string]string) *Pipeline {
	t := &columns.Rename{Mapping: mapping}
	if p.frame != nil {
		if unknown := t.Unknown(p.frame); len(unknown) > 0 {
			p.log.Warn("rename ignores unknown columns", "columns", unknown)
		}
	}
	return p.transform(t, false, nil)
}

func (p *Pipeline) SelectColumns(names ...string) *Pipeline {
	t := &columns.Select{Columns: names}
	if p.frame != nil {
		if skipped := t.Skipped(p.frame); len(skipped) > 0 {
			p.log.Warn("select skips unknown columns", "columns", skipped)
		}
	}
	return p.transform(t, false, nil)
}

// FilterRows keeps rows for which keep returns true.
func (p *Pipeline) FilterRows(keep filter.Predicate) *Pipeline {
	return p.transform(&filter.Rows{Predicate: keep}, false, nil)
}

func (p *Pipeline) ConvertTypes(targets map[string]d.Kind) *Pipeline {
	return p.transform(&convert.Types{Targets: targets}, false, nil)
}

// AddColumn computes column from each row; the kind is inferred from the
// results.
func (p *Pipeline) AddColumn(column string, fn derive.Func) *Pipeline {
	return p.transform(&derive.Add{Column: column, Fn: fn}, false, nil)
}

// Aggregate replaces the frame with one row per group.
func (p *Pipeline) Aggregate(groupBy []string, specs ...aggregate.Spec) *Pipeline {
	return p.transform(&aggregate.Aggregate{GroupBy: groupBy, Specs: specs}, false, nil)
}

func (p *Pipeline) Normalize(column string, method normalize.Method) *Pipeline {
	return p.transform(&normalize.Column{Column: column, Method: method}, false, nil)
}

// Apply runs a caller-supplied transform. It receives a private copy of the
// frame, so mutating its input cannot corrupt the pipeline.
func (p *Pipeline) Apply(t d.Transform) *Pipeline {
	return p.transform(t, true, nil)
}
