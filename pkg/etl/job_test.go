package etl

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/builtin"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/stats"
)

const jobYAML = `
options:
  strict_mode: false
  handle_missing_default: none
input:
  path: IN
steps:
  - deduplicate: {}
  - trim: {column: name}
  - handle_missing: {strategy: "fill:unknown", columns: [name]}
  - rename_columns: {mapping: {email: contact}}
  - filter_rows: {field: age, op: ">=", value: 26}
  - validate:
      rules:
        - {field: contact, rule: email}
        - {field: age, rule: range, min: 0, max: 120}
  - upper: {column: name}
outputs:
  - path: OUT
`

const jobTOML = `
steps = [{trim = {column = "name"}}]

[input]
path = "in.csv"

[[outputs]]
path = "out.parquet"
`

func TestDecodeJob(t *testing.T) {
	Convey("Jobs decode from every syntax", t, func() {
		j, err := DecodeJob([]byte(jobYAML), "yaml")
		So(err, ShouldBeNil)
		So(j.Input.Path, ShouldEqual, "IN")
		So(len(j.Steps), ShouldEqual, 7)
		cfg, err := j.Config()
		So(err, ShouldBeNil)
		So(cfg.StrictMode, ShouldBeFalse)
		So(cfg.BatchSize, ShouldEqual, 1000)

		j, err = DecodeJob([]byte(`{"input": {"path": "a.csv", "delimiter": ";"}, "steps": [{"clean": null}]}`), "json")
		So(err, ShouldBeNil)
		So(j.Input.Delimiter, ShouldEqual, ";")

		j, err = DecodeJob([]byte(jobTOML), "toml")
		So(err, ShouldBeNil)
		So(j.Outputs[0].Path, ShouldEqual, "out.parquet")
		So(len(j.Steps), ShouldEqual, 1)
	})

	Convey("Bad jobs are configuration errors", t, func() {
		for _, doc := range []string{
			`{"steps": []}`,
			`{"input": {"path": "a.csv"}, "extra": 1}`,
			`{"input": {"path": "a.csv", "sheet_name": "x"}}`,
		} {
			_, err := DecodeJob([]byte(doc), "json")
			So(etlerr.IsConfiguration(err), ShouldBeTrue)
		}
		_, err := DecodeJob([]byte("{}"), "ini")
		So(etlerr.IsConfiguration(err), ShouldBeTrue)
		_, err = LoadJob(filepath.Join(t.TempDir(), "absent.yaml"))
		So(etlerr.IsConfiguration(err), ShouldBeTrue)
	})

	Convey("Malformed steps are rejected before anything runs", t, func() {
		for _, steps := range []string{
			`[{"explode": {}}]`,
			`[{"trim": {"column": "a"}, "lower": {"column": "a"}}]`,
			`["trim"]`,
			`[{"trim": {"col": "a"}}]`,
			`[{"handle_missing": {"strategy": "none"}}]`,
			`[{"deduplicate": {"keep": "middle"}}]`,
			`[{"convert_types": {"types": {"a": "decimal"}}}]`,
			`[{"aggregate": {"group_by": ["a"], "aggregations": [{"column": "b", "func": "p99"}]}}]`,
			`[{"normalize": {"column": "a", "method": "log"}}]`,
			`[{"filter_rows": {"field": "a"}}]`,
			`[{"validate": {"rules": [{"field": "a", "rule": "luhn"}]}}]`,
			`[{"impute_constant": {"column": "a"}}]`,
			`[{"impute_mean": {}}]`,
		} {
			j, err := DecodeJob([]byte(`{"input": {"path": "in.csv"}, "steps": `+steps+`}`), "json")
			So(err, ShouldBeNil)
			p, err := j.Start()
			So(p, ShouldBeNil)
			So(etlerr.IsConfiguration(err), ShouldBeTrue)
		}
	})
}

func TestStartJob(t *testing.T) {
	Convey("Given a YAML job over the customer file", t, func() {
		dir := t.TempDir()
		in := writeFile(t, dir, "customers.csv", "id,name,email,age\n1, ana ,ana@example.com,30\n1, ana ,ana@example.com,30\n2,,bruno@example.com,41\n3,Caio,caio@example.com,25\n")
		out := filepath.Join(dir, "out", "customers.jsonl")
		doc := strings.Replace(jobYAML, "path: IN", "path: "+in, 1)
		doc = strings.Replace(doc, "path: OUT", "path: "+out, 1)
		jobPath := writeFile(t, dir, "job.yaml", doc)

		j, err := LoadJob(jobPath)
		So(err, ShouldBeNil)
		p, err := j.Start()
		So(err, ShouldBeNil)
		rep := p.Finish()

		Convey("Every step runs and the output is written", func() {
			So(p.Err(), ShouldBeNil)
			So(rep.Status, ShouldEqual, stats.StatusCompleted)
			So(rep.Aggregates.Stages, ShouldEqual, 1+7+1)
			So(rep.Aggregates.DuplicatesRemoved, ShouldEqual, 1)

			back, err := builtin.Default().Read(context.Background(), out)
			So(err, ShouldBeNil)
			So(back.Rows(), ShouldEqual, 2)
			So(back.Names(), ShouldResemble, []string{"id", "name", "contact", "age"})
			names, _ := back.ColumnByName("name")
			So(names.Value(0), ShouldEqual, "ANA")
			So(names.Value(1), ShouldEqual, "UNKNOWN")
		})

		Convey("The validation summary is kept", func() {
			So(rep.Validation, ShouldNotBeNil)
			So(rep.Validation.InvalidRows, ShouldEqual, 0)
		})
	})
}

func TestLegacyStepNames(t *testing.T) {
	Convey("The older impute and validate step names still work", t, func() {
		dir := t.TempDir()
		in := writeFile(t, dir, "scores.csv", "id,score,tier\n1,10,gold\n2,,silver\n3,20,bronze\n")
		doc := `{"input": {"path": "` + in + `"}, "steps": [
			{"impute_mean": {"column": "score"}},
			{"validate_in": {"column": "tier", "values": ["gold", "silver"]}},
			{"validate_range": {"column": "score", "min": 0, "max": 15}}
		]}`
		j, err := DecodeJob([]byte(doc), "json")
		So(err, ShouldBeNil)
		p, err := j.Start(WithStrict(false))
		So(err, ShouldBeNil)
		So(p.Err(), ShouldBeNil)

		score, _ := p.Data().ColumnByName("score")
		So(score.Value(1), ShouldEqual, int64(15))
		So(p.ValidationReport().InvalidRows(), ShouldResemble, []int{2})
		So(p.Finish().Aggregates.MissingValuesHandled, ShouldEqual, 1)
	})
}
