package etl

import (
	"fmt"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/stats"
)

// record appends a stage to the stats ledger and the metrics.
func (p *Pipeline) record(rec stats.Record, err error) {
	rec.Success = err == nil
	if err != nil {
		rec.Error = err.Error()
	}
	if appendErr := p.rec.Append(rec); appendErr != nil {
		p.log.Warn("stage not recorded", "stage", rec.Name, "err", appendErr)
	}
	p.metrics.ObserveStage(rec.Name, rec.Success, rec.Duration, rec.RowsIn, rec.RowsOut)
	if err == nil {
		p.log.Info("stage finished",
			"stage", rec.Name,
			"rows_in", rec.RowsIn,
			"rows_out", rec.RowsOut,
			"duration", rec.Duration.Round(time.Microsecond),
		)
	}
}

// transform runs t against the current frame. The result replaces the
// frame only when t succeeds and the result passes Frame.Check. isolate
// hands t a private copy, for code the pipeline does not own.
func (p *Pipeline) transform(t d.Transform, isolate bool, after func(before, result *d.Frame)) *Pipeline {
	name := t.Name()
	if p.blocked(name, State.hasData, "no dataset extracted") {
		return p
	}
	in := p.frame
	start := p.now()
	out, err := p.apply(t, in, isolate)
	rec := stats.Record{
		Name:     name,
		Kind:     stats.KindTransform,
		RowsIn:   in.Rows(),
		RowsOut:  in.Rows(),
		Started:  start,
		Duration: p.now().Sub(start),
	}
	if err != nil {
		p.record(rec, err)
		p.fail(name, err, false)
		return p
	}
	rec.RowsOut = out.Rows()
	p.frame = out
	p.state = Transforming
	if after != nil {
		after(in, out)
	}
	p.record(rec, nil)
	return p
}

func (p *Pipeline) apply(t d.Transform, in *d.Frame, isolate bool) (out *d.Frame, err error) {
	arg := in
	if isolate {
		arg = in.Clone()
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("panic: %v", r)}
			}
		}()
	}
	out, err = t.Apply(p.ctx, arg)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("returned no frame")}
	}
	if err := out.Check(); err != nil {
		return nil, &etlerr.TransformError{Op: t.Name(), Err: err}
	}
	return out, nil
}
