package validate

import (
	"context"
	"slices"
	"sort"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// MissingField is the rule name recorded when a rule names a field the frame
// does not have. Every row violates it.
const MissingField = "missing_field"

type Violation struct {
	Row   int    `json:"row" yaml:"row"`
	Rule  string `json:"rule" yaml:"rule"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Report lists violations per field in row order.
type Report struct {
	Rows          int                    `json:"rows" yaml:"rows"`
	Fields        map[string][]Violation `json:"fields" yaml:"fields"`
	MissingFields []string               `json:"missing_fields,omitempty" yaml:"missing_fields,omitempty"`
}

// Run checks every rule against f. The returned error is always a
// ConfigurationError for a malformed rule; data problems only show up in the
// report.
func Run(f *d.Frame, rules ...Rule) (*Report, error) {
	for _, r := range rules {
		if err := fieldOK(r); err != nil {
			return nil, err
		}
		if err := r.prepare(); err != nil {
			return nil, err
		}
	}
	rep := &Report{Rows: f.Rows(), Fields: map[string][]Violation{}}
	for _, r := range rules {
		field := r.Field()
		col, ok := f.ColumnByName(field)
		if !ok {
			if !slices.Contains(rep.MissingFields, field) {
				rep.MissingFields = append(rep.MissingFields, field)
				for i := 0; i < f.Rows(); i++ {
					rep.add(field, Violation{Row: i, Rule: MissingField})
				}
			}
			continue
		}
		for i := 0; i < col.Len(); i++ {
			v := col.Value(i)
			if !r.test(v) {
				rep.add(field, Violation{Row: i, Rule: r.Name(), Value: d.FormatValue(v)})
			}
		}
	}
	for k, vs := range rep.Fields {
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].Row < vs[j].Row })
		rep.Fields[k] = vs
	}
	return rep, nil
}

func (r *Report) add(field string, v Violation) {
	r.Fields[field] = append(r.Fields[field], v)
}

// InvalidRows returns the sorted positions of rows with any violation.
func (r *Report) InvalidRows() []int {
	seen := map[int]struct{}{}
	for _, vs := range r.Fields {
		for _, v := range vs {
			seen[v.Row] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for row := range seen {
		out = append(out, row)
	}
	sort.Ints(out)
	return out
}

func (r *Report) InvalidRowCount() int { return len(r.InvalidRows()) }
func (r *Report) ValidRows() int       { return r.Rows - r.InvalidRowCount() }

func (r *Report) Violations() int {
	n := 0
	for _, vs := range r.Fields {
		n += len(vs)
	}
	return n
}

func (r *Report) OK() bool { return r.Violations() == 0 }

// FieldNames returns the fields with violations, sorted.
func (r *Report) FieldNames() []string {
	out := make([]string, 0, len(r.Fields))
	for k, vs := range r.Fields {
		if len(vs) > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Err converts a report with violations into a ValidationError.
func (r *Report) Err() error {
	if r == nil || r.OK() {
		return nil
	}
	return &etlerr.ValidationError{Violations: r.Violations(), Fields: r.FieldNames()}
}

// DropInvalid keeps only the rows that pass every rule.
type DropInvalid struct {
	Rules []Rule
}

func (t *DropInvalid) Name() string { return "drop_invalid" }

func (t *DropInvalid) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	rep, err := Run(f, t.Rules...)
	if err != nil {
		return nil, err
	}
	bad := rep.InvalidRows()
	if len(bad) == 0 {
		return f, nil
	}
	keep := make([]int, 0, f.Rows()-len(bad))
	j := 0
	for i := 0; i < f.Rows(); i++ {
		if j < len(bad) && bad[j] == i {
			j++
			continue
		}
		keep = append(keep, i)
	}
	return f.Take(keep), nil
}
