package etl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/config"
	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/formats"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/aggregate"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/columns"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/convert"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/dedup"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/filter"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/missing"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/normalize"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/outliers"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/standardize"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/validate"
)

// Job is a pipeline described in a file. Each step is an object with a
// single key naming the operation, e.g. {"trim": {"column": "name"}}.
type Job struct {
	Options map[string]any    `json:"options,omitempty"`
	Input   Source            `json:"input"`
	Append  []Source          `json:"append,omitempty"`
	Steps   []json.RawMessage `json:"steps,omitempty"`
	Outputs []Source          `json:"outputs,omitempty"`
}

// Source is an extract or load target plus its adapter options.
type Source struct {
	Path      string `json:"path"`
	Encoding  string `json:"encoding,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
	NoHeader  bool   `json:"no_header,omitempty"`
	Charset   string `json:"charset,omitempty"`
	Sheet     string `json:"sheet,omitempty"`
	Table     string `json:"table,omitempty"`
}

func (s Source) options() []formats.Option {
	var o []formats.Option
	if s.Encoding != "" {
		o = append(o, formats.WithEncoding(s.Encoding))
	}
	if s.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(s.Delimiter)
		o = append(o, formats.WithDelimiter(r))
	}
	if s.NoHeader {
		o = append(o, formats.NoHeader())
	}
	if s.Charset != "" {
		o = append(o, formats.WithCharset(s.Charset))
	}
	if s.Sheet != "" {
		o = append(o, formats.WithSheet(s.Sheet))
	}
	if s.Table != "" {
		o = append(o, formats.WithTable(s.Table))
	}
	return o
}

// LoadJob reads a JSON, YAML or TOML job file. Unknown keys are rejected.
func LoadJob(path string) (Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, &etlerr.ConfigurationError{Key: "job", Value: path, Reason: "cannot read job file", Err: err}
	}
	return DecodeJob(b, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// DecodeJob parses a job document. YAML and TOML are normalised through
// JSON so every syntax shares one set of field names.
func DecodeJob(b []byte, syntax string) (Job, error) {
	var doc map[string]any
	switch syntax {
	case "json":
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return Job{}, &etlerr.ConfigurationError{Key: "job", Reason: "cannot decode yaml", Err: err}
		}
	case "toml":
		if err := toml.Unmarshal(b, &doc); err != nil {
			return Job{}, &etlerr.ConfigurationError{Key: "job", Reason: "cannot decode toml", Err: err}
		}
	default:
		return Job{}, &etlerr.ConfigurationError{Key: "job", Value: syntax, Reason: "expected json, yaml or toml"}
	}
	if doc != nil {
		var err error
		if b, err = json.Marshal(doc); err != nil {
			return Job{}, &etlerr.ConfigurationError{Key: "job", Reason: "cannot normalise document", Err: err}
		}
	}
	var j Job
	if err := config.DecodeStrict(b, "json", &j); err != nil {
		return Job{}, err
	}
	if j.Input.Path == "" {
		return Job{}, &etlerr.ConfigurationError{Key: "input.path", Reason: "job needs an input"}
	}
	return j, nil
}

// Config merges the job options over the defaults.
func (j Job) Config() (config.Config, error) { return config.FromMap(j.Options) }

// Start builds a pipeline from the job and runs every stage up to and
// including the loads. The caller finishes it and exports the stats. A
// malformed step is reported before anything runs.
func (j Job) Start(opts ...Option) (*Pipeline, error) {
	cfg, err := j.Config()
	if err != nil {
		return nil, err
	}
	steps, err := compileSteps(j.Steps)
	if err != nil {
		return nil, err
	}
	p, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	p.Run().Extract(j.Input.Path, j.Input.options()...)
	for _, s := range j.Append {
		p.Extract(s.Path, append(s.options(), formats.WithAppend())...)
	}
	for _, step := range steps {
		step(p)
	}
	for _, out := range j.Outputs {
		p.Load(out.Path, out.options()...)
	}
	return p, nil
}

type step func(p *Pipeline) *Pipeline

func compileSteps(raw []json.RawMessage) ([]step, error) {
	out := make([]step, 0, len(raw))
	for i, r := range raw {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(r, &probe); err != nil {
			return nil, &etlerr.ConfigurationError{Key: fmt.Sprintf("steps[%d]", i), Reason: "step must be an object", Err: err}
		}
		if len(probe) != 1 {
			return nil, &etlerr.ConfigurationError{Key: fmt.Sprintf("steps[%d]", i), Reason: "step must have exactly one operation key"}
		}
		for op, body := range probe {
			s, err := compileStep(op, body)
			if err != nil {
				return nil, &etlerr.ConfigurationError{Key: fmt.Sprintf("steps[%d].%s", i, op), Err: err}
			}
			out = append(out, s)
		}
	}
	return out, nil
}

type columnArgs struct {
	Column string `json:"column"`
}

type ruleArgs struct {
	Field   string   `json:"field"`
	Rule    string   `json:"rule"`
	Kind    string   `json:"kind"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Layout  string   `json:"layout"`
	Values  []string `json:"values"`
	Pattern string   `json:"pattern"`
}

type rulesArgs struct {
	Rules []ruleArgs `json:"rules"`
}

func decodeArgs(body json.RawMessage, v any) error {
	if len(bytes.TrimSpace(body)) == 0 || string(bytes.TrimSpace(body)) == "null" {
		return nil
	}
	return config.DecodeStrict(body, "json", v)
}

func compileStep(op string, body json.RawMessage) (step, error) {
	switch op {
	case "clean":
		return (*Pipeline).Clean, nil
	case "deduplicate":
		var a struct {
			Subset []string `json:"subset"`
			Keep   string   `json:"keep"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		keep, err := dedup.ParseKeep(a.Keep)
		if err != nil {
			return nil, err
		}
		return func(p *Pipeline) *Pipeline { return p.DeduplicateKeep(keep, a.Subset...) }, nil
	case "handle_missing":
		var a struct {
			Strategy string   `json:"strategy"`
			Columns  []string `json:"columns"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		s, err := missing.ParseStrategy(a.Strategy)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("strategy is required")
		}
		return func(p *Pipeline) *Pipeline { return p.HandleMissing(s, a.Columns...) }, nil
	case "impute_constant", "impute_mean", "impute_median", "impute_mode":
		var a struct {
			Column string `json:"column"`
			Value  any    `json:"value"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		if a.Column == "" {
			return nil, fmt.Errorf("column is required")
		}
		var s missing.Strategy
		switch op {
		case "impute_constant":
			if a.Value == nil {
				return nil, fmt.Errorf("value is required")
			}
			s = missing.FillWith(a.Value)
		case "impute_mean":
			s = missing.FillMean()
		case "impute_median":
			s = missing.FillMedian()
		default:
			s = missing.FillMode()
		}
		return func(p *Pipeline) *Pipeline { return p.HandleMissing(s, a.Column) }, nil
	case "rename_columns":
		var a struct {
			Mapping map[string]string `json:"mapping"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		return func(p *Pipeline) *Pipeline { return p.RenameColumns(a.Mapping) }, nil
	case "select_columns", "drop_columns":
		var a struct {
			Columns []string `json:"columns"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		if op == "drop_columns" {
			return func(p *Pipeline) *Pipeline { return p.transform(&columns.Drop{Columns: a.Columns}, false, nil) }, nil
		}
		return func(p *Pipeline) *Pipeline { return p.SelectColumns(a.Columns...) }, nil
	case "filter_rows":
		var a struct {
			Field   string   `json:"field"`
			Op      string   `json:"op"`
			Value   float64  `json:"value"`
			In      []string `json:"in"`
			NotNull []string `json:"not_null"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		var pred filter.Predicate
		switch {
		case len(a.NotNull) > 0:
			pred = filter.NotNull(a.NotNull...)
		case len(a.In) > 0:
			pred = filter.Equals(a.Field, a.In...)
		case a.Op != "":
			pred = filter.Compare(a.Field, a.Op, a.Value)
		default:
			return nil, fmt.Errorf("filter needs op, in or not_null")
		}
		return func(p *Pipeline) *Pipeline { return p.FilterRows(pred) }, nil
	case "convert_types":
		var a struct {
			Types map[string]string `json:"types"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		targets, err := convert.ParseTargets(a.Types)
		if err != nil {
			return nil, err
		}
		return func(p *Pipeline) *Pipeline { return p.ConvertTypes(targets) }, nil
	case "aggregate":
		var a struct {
			GroupBy      []string `json:"group_by"`
			Aggregations []struct {
				Column string `json:"column"`
				Func   string `json:"func"`
				As     string `json:"as"`
			} `json:"aggregations"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		specs := make([]aggregate.Spec, len(a.Aggregations))
		for i, s := range a.Aggregations {
			fn, err := aggregate.ParseFunc(s.Func)
			if err != nil {
				return nil, err
			}
			specs[i] = aggregate.Spec{Column: s.Column, Func: fn, As: s.As}
		}
		return func(p *Pipeline) *Pipeline { return p.Aggregate(a.GroupBy, specs...) }, nil
	case "normalize":
		var a struct {
			Column string `json:"column"`
			Method string `json:"method"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		m, err := normalize.ParseMethod(a.Method)
		if err != nil {
			return nil, err
		}
		return func(p *Pipeline) *Pipeline { return p.Normalize(a.Column, m) }, nil
	case "trim", "lower", "upper":
		var a columnArgs
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		var t d.Transform
		switch op {
		case "trim":
			t = &standardize.Trim{Column: a.Column}
		case "lower":
			t = &standardize.Lower{Column: a.Column}
		default:
			t = &standardize.Upper{Column: a.Column}
		}
		return func(p *Pipeline) *Pipeline { return p.transform(t, false, nil) }, nil
	case "map_values":
		var a struct {
			Column string            `json:"column"`
			Map    map[string]string `json:"map"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		return func(p *Pipeline) *Pipeline {
			return p.transform(&standardize.MapValues{Column: a.Column, Map: a.Map}, false, nil)
		}, nil
	case "regex_replace":
		var a struct {
			Column  string `json:"column"`
			Pattern string `json:"pattern"`
			Replace string `json:"replace"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		return func(p *Pipeline) *Pipeline {
			return p.transform(&standardize.RegexReplace{Column: a.Column, Pattern: a.Pattern, Replace: a.Replace}, false, nil)
		}, nil
	case "cap_range":
		var a struct {
			Column string   `json:"column"`
			Min    *float64 `json:"min"`
			Max    *float64 `json:"max"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		return func(p *Pipeline) *Pipeline {
			return p.transform(&outliers.Cap{Column: a.Column, Min: a.Min, Max: a.Max}, false, nil)
		}, nil
	case "validate_in", "validate_range":
		var a struct {
			Column string   `json:"column"`
			Values []string `json:"values"`
			Min    *float64 `json:"min"`
			Max    *float64 `json:"max"`
		}
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		var r validate.Rule = validate.Range{Column: a.Column, Min: a.Min, Max: a.Max}
		if op == "validate_in" {
			r = &validate.InSet{Column: a.Column, Values: a.Values}
		}
		return func(p *Pipeline) *Pipeline { return p.Validate(r) }, nil
	case "validate", "drop_invalid":
		var a rulesArgs
		if err := decodeArgs(body, &a); err != nil {
			return nil, err
		}
		rules, err := buildRules(a.Rules)
		if err != nil {
			return nil, err
		}
		if op == "drop_invalid" {
			return func(p *Pipeline) *Pipeline { return p.DropInvalid(rules...) }, nil
		}
		return func(p *Pipeline) *Pipeline { return p.Validate(rules...) }, nil
	}
	return nil, fmt.Errorf("unknown operation %q", op)
}

func buildRules(specs []ruleArgs) ([]validate.Rule, error) {
	rules := make([]validate.Rule, 0, len(specs))
	for _, s := range specs {
		var r validate.Rule
		switch s.Rule {
		case "required":
			r = validate.Required{Column: s.Field}
		case "type":
			k, err := d.ParseKind(s.Kind)
			if err != nil {
				return nil, err
			}
			r = validate.Type{Column: s.Field, Kind: k}
		case "email":
			r = validate.Email{Column: s.Field}
		case "phone":
			r = validate.Phone{Column: s.Field}
		case "range":
			r = validate.Range{Column: s.Field, Min: s.Min, Max: s.Max}
		case "date":
			r = &validate.Date{Column: s.Field, Layout: s.Layout}
		case "length":
			l := validate.Length{Column: s.Field}
			if s.Min != nil {
				l.Min = int(*s.Min)
			}
			if s.Max != nil {
				l.Max = int(*s.Max)
			}
			r = l
		case "in_set":
			r = &validate.InSet{Column: s.Field, Values: s.Values}
		case "pattern":
			r = &validate.Pattern{Column: s.Field, Expr: s.Pattern}
		default:
			return nil, fmt.Errorf("unknown rule %q for field %q", s.Rule, s.Field)
		}
		rules = append(rules, r)
	}
	return rules, nil
}
