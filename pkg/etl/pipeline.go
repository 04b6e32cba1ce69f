// Package etl is the pipeline orchestrator. A Pipeline holds the current
// frame and the stats recorder, runs extract, transform, validate and load
// stages against them, and decides which failures stop the run.
//
// Every data-plane method returns the receiver so calls chain:
//
//	p, _ := etl.New(config.Default())
//	rep := p.Extract("in.csv").Clean().Load("out.parquet").Finish()
//	if err := p.Err(); err != nil { ... }
//
// After the first stopping error (see Err) data-plane calls are skipped.
package etl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/config"
	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/builtin"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/metrics"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/profile"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/stats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/validate"
)

// profileTopK is the number of frequent values kept per text column.
const profileTopK = 5

// Pipeline is not safe for concurrent use; give each goroutine its own.
type Pipeline struct {
	cfg     config.Config
	strict  bool
	ctx     context.Context
	log     *slog.Logger
	logOut  io.Writer
	reg     *formats.Registry
	metrics *metrics.Collector
	now     func() time.Time
	rec     *stats.Recorder

	state      State
	frame      *d.Frame
	err        error
	errs       []error
	validation *validate.Report
}

// New validates cfg and builds an idle pipeline. Without WithRegistry the
// builtin adapters are used; without WithLogger stages are logged to stderr
// at the configured level and format.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, strict: cfg.StrictMode, ctx: context.Background(), now: time.Now, logOut: os.Stderr}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = cfg.Logger(p.logOut)
	}
	if p.reg == nil {
		reg, err := builtin.New(p.strict, cfg.ObjectStore)
		if err != nil {
			return nil, &etlerr.ConfigurationError{Key: "object_store", Reason: "cannot build registry", Err: err}
		}
		p.reg = reg
	}
	p.rec = stats.NewRecorder(p.now)
	return p, nil
}

// Run marks the start of the run. Calling it again before Finish does
// nothing.
func (p *Pipeline) Run() *Pipeline {
	if p.state == Finished {
		p.fail("run", &etlerr.StateError{Op: "run", State: p.state.String(), Reason: "run already finished"}, true)
		return p
	}
	if p.rec.Report().Status == stats.StatusPending {
		p.log.Info("pipeline started", "run_id", p.rec.RunID())
	}
	p.rec.Start()
	return p
}

// Finish seals the stats; the duration is the sum of stage durations.
// Finishing twice returns the first report.
func (p *Pipeline) Finish() stats.Report { return p.finish(nil) }

// FinishWithTime seals the stats with an externally measured duration.
func (p *Pipeline) FinishWithTime(elapsed time.Duration) stats.Report { return p.finish(&elapsed) }

func (p *Pipeline) finish(elapsed *time.Duration) stats.Report {
	if p.state == Finished {
		return p.rec.Report()
	}
	p.state = Finished
	if p.err != nil {
		p.rec.MarkFailed()
	}
	rep := p.rec.Seal(elapsed)
	p.log.Info("pipeline finished",
		"run_id", rep.RunID,
		"status", rep.Status,
		"stages", rep.Aggregates.Stages,
		"failed_stages", rep.Aggregates.FailedStages,
		"rows_in", rep.Aggregates.RowsAtStart,
		"rows_out", rep.Aggregates.RowsAtEnd,
		"duration", stats.FormatDuration(rep.Duration()),
	)
	return rep
}

// SaveStats exports the current report. It works before Finish, in which
// case the report is marked partial.
func (p *Pipeline) SaveStats(path string) error {
	rep := p.rec.Report()
	if err := rep.Export(path); err != nil {
		return &etlerr.FormatError{Op: "save_stats", Path: path, Err: err}
	}
	p.log.Info("stats saved", "path", path, "partial", rep.Partial)
	return nil
}

// Stats returns the sealed report, or a partial one while the run is open.
func (p *Pipeline) Stats() stats.Report { return p.rec.Report() }

// Data returns a copy of the current frame, nil before the first extract.
func (p *Pipeline) Data() *d.Frame {
	if p.frame == nil {
		return nil
	}
	return p.frame.Clone()
}

// Err returns the error that stopped the pipeline, if any.
func (p *Pipeline) Err() error { return p.err }

// Errors lists every stage failure in order, including the stopping one.
func (p *Pipeline) Errors() []error {
	out := make([]error, len(p.errs))
	copy(out, p.errs)
	return out
}

func (p *Pipeline) State() State { return p.state }

// ValidationReport is the report of the last Validate call.
func (p *Pipeline) ValidationReport() *validate.Report { return p.validation }

// Profile summarises the current frame.
func (p *Pipeline) Profile() profile.Report {
	if p.frame == nil {
		return profile.Report{}
	}
	return profile.Of(p.frame, profileTopK)
}

// fail records err. It stops the pipeline when stop is set, when err is a
// state, format or configuration error, or in strict mode.
func (p *Pipeline) fail(stage string, err error, stop bool) {
	p.errs = append(p.errs, err)
	if stop || p.strict || etlerr.IsFatal(err) {
		if p.err == nil {
			p.err = err
		}
		p.rec.MarkFailed()
		p.log.Error("stage failed", "stage", stage, "err", err)
		return
	}
	p.log.Warn("stage failed, continuing", "stage", stage, "err", err)
}

// blocked reports whether op must be skipped, failing the pipeline when op
// is not allowed in the current state.
func (p *Pipeline) blocked(op string, allowed func(State) bool, reason string) bool {
	if p.err != nil {
		return true
	}
	if !allowed(p.state) {
		p.fail(op, &etlerr.StateError{Op: op, State: p.state.String(), Reason: reason}, true)
		return true
	}
	if err := p.ctx.Err(); err != nil {
		p.fail(op, err, true)
		return true
	}
	return false
}
