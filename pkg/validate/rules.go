// Package validate checks field-level correctness of a frame without
// changing it. Rules report violations per row; only a malformed rule is an
// error.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^[\d\s\-\+\(\)]{10,}$`)
)

// Rule checks one field. Test receives the raw cell value, nil for null.
type Rule interface {
	Field() string
	Name() string
	prepare() error
	test(v any) bool
}

func fieldOK(r Rule) error {
	if strings.TrimSpace(r.Field()) == "" {
		return &etlerr.ConfigurationError{Key: r.Name(), Reason: "rule needs a field"}
	}
	return nil
}

// Required rejects null cells.
type Required struct{ Column string }

func (r Required) Field() string   { return r.Column }
func (r Required) Name() string    { return "required" }
func (r Required) prepare() error  { return nil }
func (r Required) test(v any) bool { return v != nil }

// Type requires every non-null value to be of Kind.
type Type struct {
	Column string
	Kind   d.Kind
}

func (r Type) Field() string { return r.Column }
func (r Type) Name() string  { return "type" }
func (r Type) prepare() error {
	if r.Kind == d.KindInvalid {
		return &etlerr.ConfigurationError{Key: "type", Value: r.Column, Reason: "no kind given"}
	}
	return nil
}
func (r Type) test(v any) bool { return v == nil || d.KindOf(v) == r.Kind }

type Email struct{ Column string }

func (r Email) Field() string  { return r.Column }
func (r Email) Name() string   { return "email" }
func (r Email) prepare() error { return nil }
func (r Email) test(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && emailRE.MatchString(s)
}

// Phone accepts ten or more digits, spaces, dashes, plus signs and
// parentheses.
type Phone struct{ Column string }

func (r Phone) Field() string  { return r.Column }
func (r Phone) Name() string   { return "phone" }
func (r Phone) prepare() error { return nil }
func (r Phone) test(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && phoneRE.MatchString(s)
}

// Range requires a numeric value (or numeric text) within [Min, Max]. A nil
// bound is open.
type Range struct {
	Column string
	Min    *float64
	Max    *float64
}

func (r Range) Field() string { return r.Column }
func (r Range) Name() string  { return "range" }
func (r Range) prepare() error {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return &etlerr.ConfigurationError{Key: "range", Value: r.Column, Reason: fmt.Sprintf("min %g above max %g", *r.Min, *r.Max)}
	}
	return nil
}
func (r Range) test(v any) bool {
	var x float64
	switch t := v.(type) {
	case nil:
		return true
	case int64:
		x = float64(t)
	case float64:
		x = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return false
		}
		x = f
	default:
		return false
	}
	if r.Min != nil && x < *r.Min {
		return false
	}
	if r.Max != nil && x > *r.Max {
		return false
	}
	return true
}

// Date requires text parseable with Layout (default 2006-01-02). Layout may
// also be written strftime style, e.g. %d/%m/%Y. Time cells always pass.
type Date struct {
	Column string
	Layout string
	layout string
}

func (r *Date) Field() string { return r.Column }
func (r *Date) Name() string  { return "date" }
func (r *Date) prepare() error {
	r.layout = r.Layout
	if r.layout == "" {
		r.layout = time.DateOnly
	}
	if strings.Contains(r.layout, "%") {
		l, err := GoLayout(r.layout)
		if err != nil {
			return &etlerr.ConfigurationError{Key: "date", Value: r.Layout, Reason: "bad layout", Err: err}
		}
		r.layout = l
	}
	return nil
}
func (r *Date) test(v any) bool {
	switch t := v.(type) {
	case nil, time.Time:
		return true
	case string:
		_, err := time.Parse(r.layout, t)
		return err == nil
	}
	return false
}

// Length bounds the rune count of text values; Max 0 means unbounded.
type Length struct {
	Column string
	Min    int
	Max    int
}

func (r Length) Field() string { return r.Column }
func (r Length) Name() string  { return "length" }
func (r Length) prepare() error {
	if r.Min < 0 || r.Max < 0 || (r.Max > 0 && r.Max < r.Min) {
		return &etlerr.ConfigurationError{Key: "length", Value: r.Column, Reason: fmt.Sprintf("bad bounds %d..%d", r.Min, r.Max)}
	}
	return nil
}
func (r Length) test(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	n := utf8.RuneCountInString(s)
	return n >= r.Min && (r.Max == 0 || n <= r.Max)
}

// InSet compares the text form of each value against Values.
type InSet struct {
	Column string
	Values []string
	set    map[string]struct{}
}

func (r *InSet) Field() string { return r.Column }
func (r *InSet) Name() string  { return "in_set" }
func (r *InSet) prepare() error {
	if len(r.Values) == 0 {
		return &etlerr.ConfigurationError{Key: "in_set", Value: r.Column, Reason: "empty value set"}
	}
	r.set = make(map[string]struct{}, len(r.Values))
	for _, v := range r.Values {
		r.set[v] = struct{}{}
	}
	return nil
}
func (r *InSet) test(v any) bool {
	if v == nil {
		return true
	}
	_, ok := r.set[d.FormatValue(v)]
	if !ok {
		// 2.0 also matches "2"
		if f, isFloat := v.(float64); isFloat {
			_, ok = r.set[strconv.FormatFloat(f, 'f', -1, 64)]
		}
	}
	return ok
}

// Pattern requires text values to match Expr.
type Pattern struct {
	Column string
	Expr   string
	re     *regexp.Regexp
}

func (r *Pattern) Field() string { return r.Column }
func (r *Pattern) Name() string  { return "pattern" }
func (r *Pattern) prepare() error {
	re, err := regexp.Compile(r.Expr)
	if err != nil {
		return &etlerr.ConfigurationError{Key: "pattern", Value: r.Expr, Reason: "invalid regular expression", Err: err}
	}
	r.re = re
	return nil
}
func (r *Pattern) test(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && r.re.MatchString(s)
}

var strftime = map[byte]string{
	'Y': "2006", 'y': "06", 'm': "01", 'd': "02", 'H': "15", 'I': "03",
	'M': "04", 'S': "05", 'p': "PM", 'b': "Jan", 'B': "January",
	'a': "Mon", 'A': "Monday", 'z': "-0700", 'Z': "MST", 'f': "000000", '%': "%",
}

// GoLayout translates a strftime pattern into a Go time layout.
func GoLayout(p string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			b.WriteByte(p[i])
			continue
		}
		i++
		if i == len(p) {
			return "", fmt.Errorf("dangling %% in %q", p)
		}
		s, ok := strftime[p[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in %q", p[i], p)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}
