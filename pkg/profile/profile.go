// Package profile summarises the columns of a frame: counts, nulls, numeric
// ranges and the most frequent text values.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

type NumStats struct {
	Count int     `json:"count" yaml:"count"`
	Nulls int     `json:"nulls" yaml:"nulls"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Sum   float64 `json:"sum" yaml:"sum"`
	Mean  float64 `json:"mean" yaml:"mean"`
}

type BoolStats struct {
	Count int `json:"count" yaml:"count"`
	Nulls int `json:"nulls" yaml:"nulls"`
	True  int `json:"true" yaml:"true"`
	False int `json:"false" yaml:"false"`
}

type TextStats struct {
	Count  int     `json:"count" yaml:"count"`
	Nulls  int     `json:"nulls" yaml:"nulls"`
	Unique int     `json:"unique" yaml:"unique"`
	Top    []Value `json:"top,omitempty" yaml:"top,omitempty"`
}

// Value is one entry of a frequency table.
type Value struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

type Column struct {
	Name string     `json:"name" yaml:"name"`
	Kind string     `json:"kind" yaml:"kind"`
	Num  *NumStats  `json:"num,omitempty" yaml:"num,omitempty"`
	Bool *BoolStats `json:"bool,omitempty" yaml:"bool,omitempty"`
	Text *TextStats `json:"text,omitempty" yaml:"text,omitempty"`
}

// Report is the profile of every consumed row, in schema order.
type Report struct {
	Rows    int      `json:"rows" yaml:"rows"`
	Columns []Column `json:"columns" yaml:"columns"`
}

type colState struct {
	name  string
	kind  d.Kind
	num   *NumStats
	bools *BoolStats
	text  *TextStats
	freqs map[string]int
}

// Collector accumulates statistics over one or more frames sharing a schema.
type Collector struct {
	cols  []colState
	index map[string]int
	topK  int
	rows  int
}

func NewCollector(schema d.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]colState, len(schema.Columns))
	for i, cs := range schema.Columns {
		st := colState{name: cs.Name, kind: cs.Type}
		switch cs.Type {
		case d.KindFloat, d.KindInt:
			st.num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case d.KindBool:
			st.bools = &BoolStats{}
		default:
			st.text = &TextStats{}
			st.freqs = make(map[string]int)
		}
		c.cols[i] = st
		c.index[cs.Name] = i
	}
	return c
}

// ConsumeFrame adds f's rows. Columns unknown to the collector are skipped.
func (c *Collector) ConsumeFrame(f *d.Frame) {
	c.rows += f.Rows()
	for ci := 0; ci < f.Cols(); ci++ {
		col := f.Column(ci)
		idx, ok := c.index[col.Name()]
		if !ok || c.cols[idx].kind != col.Kind() {
			continue
		}
		st := &c.cols[idx]
		switch col := col.(type) {
		case *d.FloatColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok || math.IsNaN(v) {
					st.num.Nulls++
					continue
				}
				st.addNum(v)
			}
		case *d.IntColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					st.num.Nulls++
					continue
				}
				st.addNum(float64(v))
			}
		case *d.BoolColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					st.bools.Nulls++
					continue
				}
				st.bools.Count++
				if v {
					st.bools.True++
				} else {
					st.bools.False++
				}
			}
		case *d.StringColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					st.text.Nulls++
					continue
				}
				st.text.Count++
				st.freqs[v]++
			}
		case *d.TimeColumn:
			for i := 0; i < col.Len(); i++ {
				v, ok := col.Get(i)
				if !ok {
					st.text.Nulls++
					continue
				}
				st.text.Count++
				st.freqs[v.Format(time.RFC3339)]++
			}
		}
	}
}

func (st *colState) addNum(v float64) {
	st.num.Count++
	st.num.Sum += v
	st.num.Min = math.Min(st.num.Min, v)
	st.num.Max = math.Max(st.num.Max, v)
}

// Of profiles a single frame.
func Of(f *d.Frame, topK int) Report {
	c := NewCollector(f.Schema(), topK)
	c.ConsumeFrame(f)
	return c.Report()
}

func (c *Collector) Report() Report {
	out := Report{Rows: c.rows, Columns: make([]Column, 0, len(c.cols))}
	for _, st := range c.cols {
		col := Column{Name: st.name, Kind: st.kind.String()}
		switch {
		case st.num != nil:
			n := *st.num
			if n.Count == 0 {
				n.Min, n.Max = 0, 0
			} else {
				n.Mean = n.Sum / float64(n.Count)
			}
			col.Num = &n
		case st.bools != nil:
			b := *st.bools
			col.Bool = &b
		default:
			t := *st.text
			t.Unique = len(st.freqs)
			t.Top = topValues(st.freqs, c.topK)
			col.Text = &t
		}
		out.Columns = append(out.Columns, col)
	}
	return out
}

// topValues orders by count, then value, and keeps k entries. k <= 0 keeps
// none.
func topValues(freqs map[string]int, k int) []Value {
	if k <= 0 || len(freqs) == 0 {
		return nil
	}
	vals := make([]Value, 0, len(freqs))
	for v, n := range freqs {
		vals = append(vals, Value{Value: v, Count: n})
	}
	sort.Slice(vals, func(i, j int) bool {
		if vals[i].Count != vals[j].Count {
			return vals[i].Count > vals[j].Count
		}
		return vals[i].Value < vals[j].Value
	})
	if len(vals) > k {
		vals = vals[:k]
	}
	return vals
}

// Text renders the report for terminals.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile Summary (%d rows)\n", r.Rows)
	for _, col := range r.Columns {
		fmt.Fprintf(&b, "- %s (%s): ", col.Name, col.Kind)
		switch {
		case col.Num != nil:
			n := col.Num
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", n.Count, n.Nulls, n.Min, n.Max, n.Mean)
		case col.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", col.Bool.Count, col.Bool.Nulls, col.Bool.True, col.Bool.False)
		case col.Text != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d unique=%d\n", col.Text.Count, col.Text.Nulls, col.Text.Unique)
			for _, v := range col.Text.Top {
				fmt.Fprintf(&b, "  * %q: %d\n", v.Value, v.Count)
			}
		}
	}
	return b.String()
}
