// Package stats keeps the append-only ledger of pipeline stages and derives
// the run report from it.
package stats

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Stage kinds.
const (
	KindExtract   = "extract"
	KindTransform = "transform"
	KindValidate  = "validate"
	KindLoad      = "load"
)

// Record describes one executed stage.
type Record struct {
	Name     string
	Kind     string
	Target   string
	RowsIn   int
	RowsOut  int
	Started  time.Time
	Duration time.Duration
	Success  bool
	Error    string
}

// Counters are run-level tallies that individual stages contribute to.
type Counters struct {
	DuplicatesRemoved    int
	MissingValuesHandled int
}

// ValidationSummary is the compact form of the last validation pass.
type ValidationSummary struct {
	Rows        int            `json:"rows" yaml:"rows"`
	ValidRows   int            `json:"valid_rows" yaml:"valid_rows"`
	InvalidRows int            `json:"invalid_rows" yaml:"invalid_rows"`
	Violations  int            `json:"violations" yaml:"violations"`
	Fields      map[string]int `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Recorder is safe for concurrent use, although a pipeline drives it from a
// single goroutine.
type Recorder struct {
	mu         sync.Mutex
	now        func() time.Time
	runID      string
	created    time.Time
	started    time.Time
	finished   time.Time
	records    []Record
	counters   Counters
	validation *ValidationSummary
	override   *time.Duration
	failed     bool
	sealed     *Report
}

// NewRecorder starts an empty run. now defaults to time.Now.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now, runID: uuid.NewString(), created: now()}
}

func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) Now() time.Time { return r.now() }

// Start marks the run as running. Later calls keep the first timestamp.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed == nil && r.started.IsZero() {
		r.started = r.now()
	}
}

// Append adds a stage record. It fails with ErrSealed after Seal.
func (r *Recorder) Append(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed != nil {
		return etlerr.ErrSealed
	}
	if r.started.IsZero() {
		r.started = rec.Started
	}
	r.records = append(r.records, rec)
	return nil
}

// Count folds fn over the run counters.
func (r *Recorder) Count(fn func(*Counters)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed == nil {
		fn(&r.counters)
	}
}

// SetValidation replaces the validation summary.
func (r *Recorder) SetValidation(v ValidationSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed == nil {
		v.Fields = maps.Clone(v.Fields)
		r.validation = &v
	}
}

// MarkFailed flags the run so the report status becomes failed.
func (r *Recorder) MarkFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed == nil {
		r.failed = true
	}
}

func (r *Recorder) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed != nil
}

// Seal closes the run. override, when non-nil, replaces the duration summed
// from the stages. Sealing twice returns the first report unchanged.
func (r *Recorder) Seal(override *time.Duration) Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed != nil {
		return r.sealed.Clone()
	}
	r.finished = r.now()
	if override != nil {
		o := *override
		r.override = &o
	}
	rep := r.report()
	r.sealed = &rep
	return rep.Clone()
}

// Report returns the sealed report, or a partial snapshot of a run in
// progress.
func (r *Recorder) Report() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed != nil {
		return r.sealed.Clone()
	}
	return r.report()
}

func (r *Recorder) report() Report {
	rep := Report{
		RunID:      r.runID,
		Status:     r.status(),
		Partial:    r.sealed == nil && r.finished.IsZero(),
		StartTime:  r.started,
		Stages:     make([]Stage, len(r.records)),
		Aggregates: aggregate(r.records, r.counters, r.validation),
	}
	if rep.StartTime.IsZero() {
		rep.StartTime = r.created
	}
	if !r.finished.IsZero() {
		end := r.finished
		rep.EndTime = &end
	}
	for i, rec := range r.records {
		rep.Stages[i] = stageOf(rec)
	}
	if r.override != nil {
		rep.DurationSeconds = r.override.Seconds()
	} else {
		rep.DurationSeconds = rep.Aggregates.StageSeconds
	}
	if r.validation != nil {
		v := *r.validation
		v.Fields = maps.Clone(v.Fields)
		rep.Validation = &v
	}
	return rep
}

func (r *Recorder) status() string {
	switch {
	case r.failed:
		return StatusFailed
	case !r.finished.IsZero():
		return StatusCompleted
	case !r.started.IsZero() || len(r.records) > 0:
		return StatusRunning
	}
	return StatusPending
}
