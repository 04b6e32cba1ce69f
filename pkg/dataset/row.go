package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// ErrNull is wrapped by Row getters when the requested cell is null.
var ErrNull = errors.New("null value")

// Row is a read-only view of one frame row, handed to predicates and
// derivation callbacks.
type Row struct {
	f *Frame
	i int
}

// Row returns a view of row i.
func (f *Frame) Row(i int) Row { return Row{f: f, i: i} }

func (r Row) Index() int { return r.i }

func (r Row) Has(name string) bool {
	_, ok := r.f.index[name]
	return ok
}

// Get returns the raw cell value (nil for null).
func (r Row) Get(name string) (any, error) {
	c, ok := r.f.ColumnByName(name)
	if !ok {
		return nil, &etlerr.ConversionError{Field: name, Row: r.i, Err: etlerr.ErrColumnNotFound}
	}
	return c.Value(r.i), nil
}

// IsNull reports whether the field is missing or null.
func (r Row) IsNull(name string) bool {
	v, err := r.Get(name)
	return err != nil || v == nil
}

func (r Row) get(name, target string) (any, error) {
	v, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &etlerr.ConversionError{Field: name, Row: r.i, Target: target, Err: ErrNull}
	}
	return v, nil
}

// Int returns the field as int64. Integral floats and numeric strings are
// accepted.
func (r Row) Int(name string) (int64, error) {
	v, err := r.get(name, "int")
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case int64:
		return t, nil
	case float64:
		if t == float64(int64(t)) {
			return int64(t), nil
		}
	case string:
		if x, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return x, nil
		}
	}
	return 0, r.convErr(name, v, "int")
}

// Float returns the field as float64.
func (r Row) Float(name string) (float64, error) {
	v, err := r.get(name, "float")
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case string:
		if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return x, nil
		}
	}
	return 0, r.convErr(name, v, "float")
}

// Text returns the field rendered as a string.
func (r Row) Text(name string) (string, error) {
	v, err := r.get(name, "string")
	if err != nil {
		return "", err
	}
	return FormatValue(v), nil
}

func (r Row) Bool(name string) (bool, error) {
	v, err := r.get(name, "bool")
	if err != nil {
		return false, err
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		if b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
			return b, nil
		}
	}
	return false, r.convErr(name, v, "bool")
}

func (r Row) Time(name string) (time.Time, error) {
	v, err := r.get(name, "time")
	if err != nil {
		return time.Time{}, err
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if ts, err := ParseTime(t); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, r.convErr(name, v, "time")
}

// Map copies the row into a name -> value map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.f.cols))
	for _, c := range r.f.cols {
		m[c.Name()] = c.Value(r.i)
	}
	return m
}

func (r Row) convErr(name string, v any, target string) error {
	return &etlerr.ConversionError{Field: name, Row: r.i, Value: FormatValue(v), Target: target}
}

// TimeLayouts are tried in order when text is parsed as a time.
var TimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// FormatValue renders a cell for messages, keys and text encodings. Floats
// always carry a decimal point or exponent so they read back as floats.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return FormatFloat(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
