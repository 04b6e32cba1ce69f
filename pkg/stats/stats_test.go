package stats

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newRecorder() *Recorder {
	c := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewRecorder(c.now)
}

func TestRecorder(t *testing.T) {
	Convey("An empty run reports zero aggregates", t, func() {
		r := newRecorder()
		rep := r.Report()
		So(rep.Status, ShouldEqual, StatusPending)
		So(rep.Partial, ShouldBeTrue)
		So(rep.Aggregates, ShouldResemble, Aggregates{})
		So(rep.Stages, ShouldBeEmpty)
		So(rep.RunID, ShouldNotBeEmpty)
	})

	Convey("Given a run with extract, two transforms and a load", t, func() {
		r := newRecorder()
		r.Start()
		start := r.Now()
		So(r.Append(Record{Name: "extract", Kind: KindExtract, Target: "in.csv", RowsOut: 10, Started: start, Duration: time.Second, Success: true}), ShouldBeNil)
		So(r.Append(Record{Name: "deduplicate", Kind: KindTransform, RowsIn: 10, RowsOut: 8, Duration: 500 * time.Millisecond, Success: true}), ShouldBeNil)
		So(r.Append(Record{Name: "convert_types", Kind: KindTransform, RowsIn: 8, RowsOut: 8, Success: false, Error: "bad cell"}), ShouldBeNil)
		So(r.Append(Record{Name: "load", Kind: KindLoad, Target: "out.json", RowsIn: 8, RowsOut: 8, Duration: 250 * time.Millisecond, Success: true}), ShouldBeNil)
		r.Count(func(c *Counters) { c.DuplicatesRemoved += 2 })
		r.SetValidation(ValidationSummary{Rows: 8, ValidRows: 7, InvalidRows: 1, Violations: 2})

		Convey("The aggregates follow the records", func() {
			a := r.Report().Aggregates
			So(a.Stages, ShouldEqual, 4)
			So(a.FailedStages, ShouldEqual, 1)
			So(a.TransformationsApplied, ShouldEqual, 1)
			So(a.RowsAtStart, ShouldEqual, 10)
			So(a.RowsAtEnd, ShouldEqual, 8)
			So(a.RowsDropped, ShouldEqual, 2)
			So(a.DuplicatesRemoved, ShouldEqual, 2)
			So(a.ValidRecords, ShouldEqual, 7)
			So(a.InvalidRecords, ShouldEqual, 1)
			So(a.StageSeconds, ShouldAlmostEqual, 1.75)
			So(a.ReductionRatio, ShouldAlmostEqual, 0.2)
		})

		Convey("Sealing twice returns the same report", func() {
			first := r.Seal(nil)
			second := r.Seal(nil)
			So(second, ShouldResemble, first)
			So(first.Status, ShouldEqual, StatusCompleted)
			So(first.Partial, ShouldBeFalse)
			So(first.EndTime, ShouldNotBeNil)
			So(first.DurationSeconds, ShouldAlmostEqual, 1.75)
			So(errors.Is(r.Append(Record{Name: "late"}), etlerr.ErrSealed), ShouldBeTrue)
		})

		Convey("Sealed reports share nothing with their callers", func() {
			r.SetValidation(ValidationSummary{Rows: 8, ValidRows: 7, InvalidRows: 1, Violations: 2, Fields: map[string]int{"email": 2}})
			first := r.Seal(nil)
			first.Stages[0].Name = "changed"
			*first.EndTime = time.Time{}
			first.Validation.Fields["email"] = 99
			second := r.Seal(nil)
			So(second.Stages[0].Name, ShouldEqual, "extract")
			So(second.EndTime.IsZero(), ShouldBeFalse)
			So(second.Validation.Fields["email"], ShouldEqual, 2)
			So(r.Report().Stages[0].Name, ShouldEqual, "extract")
		})

		Convey("An override replaces the summed duration", func() {
			o := 10500 * time.Millisecond
			So(r.Seal(&o).DurationSeconds, ShouldAlmostEqual, 10.5)
		})

		Convey("A failed run says so", func() {
			r.MarkFailed()
			So(r.Report().Status, ShouldEqual, StatusFailed)
			So(r.Seal(nil).Status, ShouldEqual, StatusFailed)
		})
	})
}

func TestExport(t *testing.T) {
	Convey("Reports export as JSON or YAML by suffix", t, func() {
		r := newRecorder()
		So(r.Append(Record{Name: "extract", Kind: KindExtract, RowsOut: 3, Success: true}), ShouldBeNil)
		rep := r.Seal(nil)
		dir := t.TempDir()

		p := filepath.Join(dir, "nested", "stats.json")
		So(rep.Export(p), ShouldBeNil)
		raw, err := os.ReadFile(p)
		So(err, ShouldBeNil)
		So(string(raw), ShouldStartWith, "{\n  \"run_id\": ")
		var back map[string]any
		So(json.Unmarshal(raw, &back), ShouldBeNil)
		So(back["status"], ShouldEqual, StatusCompleted)

		y := filepath.Join(dir, "stats.yaml")
		So(rep.Export(y), ShouldBeNil)
		raw, err = os.ReadFile(y)
		So(err, ShouldBeNil)
		var ym map[string]any
		So(yaml.Unmarshal(raw, &ym), ShouldBeNil)
		So(ym["run_id"], ShouldEqual, rep.RunID)
	})
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                "0s",
		45 * time.Second: "45s",
		90 * time.Minute: "1h 30m",
		time.Hour + 30*time.Minute + 45*time.Second: "1h 30m 45s",
		1500 * time.Millisecond:                     "1s",
		-time.Second:                                "0s",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestReportDuration(t *testing.T) {
	if got := (Report{DurationSeconds: 1.5}).Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", got)
	}
}
