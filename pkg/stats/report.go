package stats

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Report is the exported form of a run. Field order is fixed so reports can
// be diffed between runs.
type Report struct {
	RunID           string             `json:"run_id" yaml:"run_id"`
	Status          string             `json:"status" yaml:"status"`
	Partial         bool               `json:"partial" yaml:"partial"`
	StartTime       time.Time          `json:"start_time" yaml:"start_time"`
	EndTime         *time.Time         `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	DurationSeconds float64            `json:"duration_seconds" yaml:"duration_seconds"`
	Stages          []Stage            `json:"stages" yaml:"stages"`
	Aggregates      Aggregates         `json:"aggregates" yaml:"aggregates"`
	Validation      *ValidationSummary `json:"validation,omitempty" yaml:"validation,omitempty"`
}

type Stage struct {
	Name            string    `json:"name" yaml:"name"`
	Kind            string    `json:"kind" yaml:"kind"`
	Target          string    `json:"target,omitempty" yaml:"target,omitempty"`
	RowsIn          int       `json:"rows_in" yaml:"rows_in"`
	RowsOut         int       `json:"rows_out" yaml:"rows_out"`
	Started         time.Time `json:"started" yaml:"started"`
	DurationSeconds float64   `json:"duration_seconds" yaml:"duration_seconds"`
	Success         bool      `json:"success" yaml:"success"`
	Error           string    `json:"error,omitempty" yaml:"error,omitempty"`
}

type Aggregates struct {
	Stages                 int     `json:"stages" yaml:"stages"`
	FailedStages           int     `json:"failed_stages" yaml:"failed_stages"`
	TransformationsApplied int     `json:"transformations_applied" yaml:"transformations_applied"`
	TotalRecords           int     `json:"total_records" yaml:"total_records"`
	RowsAtStart            int     `json:"rows_at_start" yaml:"rows_at_start"`
	RowsAtEnd              int     `json:"rows_at_end" yaml:"rows_at_end"`
	RowsDropped            int     `json:"rows_dropped" yaml:"rows_dropped"`
	DuplicatesRemoved      int     `json:"duplicates_removed" yaml:"duplicates_removed"`
	MissingValuesHandled   int     `json:"missing_values_handled" yaml:"missing_values_handled"`
	ValidRecords           int     `json:"valid_records" yaml:"valid_records"`
	InvalidRecords         int     `json:"invalid_records" yaml:"invalid_records"`
	StageSeconds           float64 `json:"stage_seconds" yaml:"stage_seconds"`
	ReductionRatio         float64 `json:"reduction_ratio" yaml:"reduction_ratio"`
}

func stageOf(r Record) Stage {
	return Stage{
		Name:            r.Name,
		Kind:            r.Kind,
		Target:          r.Target,
		RowsIn:          r.RowsIn,
		RowsOut:         r.RowsOut,
		Started:         r.Started,
		DurationSeconds: r.Duration.Seconds(),
		Success:         r.Success,
		Error:           r.Error,
	}
}

// aggregate derives the run totals. RowsAtStart counts the rows each extract
// added and RowsAtEnd is the output of the last successful non-load stage.
func aggregate(recs []Record, c Counters, v *ValidationSummary) Aggregates {
	a := Aggregates{
		Stages:               len(recs),
		DuplicatesRemoved:    c.DuplicatesRemoved,
		MissingValuesHandled: c.MissingValuesHandled,
	}
	var total time.Duration
	for _, r := range recs {
		total += r.Duration
		if !r.Success {
			a.FailedStages++
			continue
		}
		switch r.Kind {
		case KindExtract:
			a.RowsAtStart += r.RowsOut - r.RowsIn
			a.RowsAtEnd = r.RowsOut
		case KindTransform:
			a.TransformationsApplied++
			if r.RowsIn > r.RowsOut {
				a.RowsDropped += r.RowsIn - r.RowsOut
			}
			a.RowsAtEnd = r.RowsOut
		case KindValidate:
			a.RowsAtEnd = r.RowsOut
		}
	}
	a.TotalRecords = a.RowsAtStart
	a.StageSeconds = total.Seconds()
	if v != nil {
		a.ValidRecords = v.ValidRows
		a.InvalidRecords = v.InvalidRows
	}
	if a.RowsAtStart > 0 {
		a.ReductionRatio = float64(a.RowsAtStart-a.RowsAtEnd) / float64(a.RowsAtStart)
	}
	return a
}

// Export writes the report as YAML for .yaml/.yml paths and as indented JSON
// otherwise, creating parent directories.
func (r Report) Export(path string) error {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(r)
	default:
		b, err = json.MarshalIndent(r, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stats dir: %w", err)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// Clone returns a copy that shares no memory with r.
func (r Report) Clone() Report {
	out := r
	out.Stages = slices.Clone(r.Stages)
	if r.EndTime != nil {
		end := *r.EndTime
		out.EndTime = &end
	}
	if r.Validation != nil {
		v := *r.Validation
		v.Fields = maps.Clone(r.Validation.Fields)
		out.Validation = &v
	}
	return out
}

// Duration is DurationSeconds as a time.Duration.
func (r Report) Duration() time.Duration {
	return time.Duration(r.DurationSeconds * float64(time.Second))
}

// FormatDuration renders whole hours, minutes and seconds, e.g. "1h 30m 45s".
func FormatDuration(d time.Duration) string {
	secs := int64(math.Floor(max(d, 0).Seconds()))
	h, m, s := secs/3600, secs%3600/60, secs%60
	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}
