// Package csvio reads and writes delimited text.
package csvio

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	iox "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/ioutils"
)

var (
	floatRE = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)
	intRE   = regexp.MustCompile(`^[-+]?[0-9]+$`)
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff
	SampleRows int  // rows used for kind inference; 0 = all
	Strict     bool // error on ragged records and unparsable cells
	Charset    string
	Fallbacks  []string
	Schema     *d.Schema
}

// Reader accumulates repair counters for one read.
type Reader struct {
	opt          ReaderOptions
	charset      string
	delimiter    rune
	shortRecords int
	longRecords  int
	badCells     int
}

func NewReader(opt ReaderOptions) *Reader { return &Reader{opt: opt} }

// ReadFile decodes path (gzip aware) and parses it.
func (r *Reader) ReadFile(ctx context.Context, path string) (*d.Frame, error) {
	raw, err := iox.ReadAllMaybeCompressed(path)
	if err != nil {
		return nil, &etlerr.FormatError{Op: "read", Path: path, Encoding: "csv", Err: err}
	}
	text, used, err := iox.Decode(raw, r.opt.Charset, r.opt.Fallbacks)
	if err != nil {
		return nil, &etlerr.FormatError{Op: "read", Path: path, Encoding: r.opt.Charset, Err: err}
	}
	r.charset = used
	return r.Read(ctx, bytes.NewReader(text))
}

// Charset reports the charset that decoded the last file.
func (r *Reader) Charset() string { return r.charset }

// Read parses UTF-8 text from src.
func (r *Reader) Read(ctx context.Context, src io.Reader) (*d.Frame, error) {
	text, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	r.delimiter = r.opt.Delimiter
	lazy := false
	if r.delimiter == 0 {
		r.delimiter, lazy = sniffDelimiterAndQuotes(text)
	}
	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = r.delimiter
	cr.LazyQuotes = lazy
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var names []string
	if r.opt.HasHeader {
		names = HeaderNames(records[0])
		records = records[1:]
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	schema, err := r.schemaFor(names, records)
	if err != nil {
		return nil, err
	}
	return r.build(schema, records)
}

func (r *Reader) schemaFor(names []string, records [][]string) (d.Schema, error) {
	sample := records
	if r.opt.SampleRows > 0 && len(sample) > r.opt.SampleRows {
		sample = sample[:r.opt.SampleRows]
	}
	return SchemaFor(names, sample, r.opt.Schema)
}

// SchemaFor returns given with blank names filled from the header, or the
// inferred schema of sample when given is nil.
func SchemaFor(names []string, sample [][]string, given *d.Schema) (d.Schema, error) {
	if given == nil {
		kinds := InferKinds(len(names), sample)
		cols := make([]d.ColumnSchema, len(names))
		for i, n := range names {
			cols[i] = d.Col(n, kinds[i])
		}
		return d.NewSchema(cols...), nil
	}
	if len(given.Columns) != len(names) {
		return d.Schema{}, &etlerr.ConfigurationError{Key: "schema", Reason: fmt.Sprintf("%d columns given, file has %d", len(given.Columns), len(names))}
	}
	s := d.Schema{Columns: append([]d.ColumnSchema(nil), given.Columns...)}
	for i := range s.Columns {
		if s.Columns[i].Name == "" {
			s.Columns[i].Name = names[i]
		}
	}
	return s, nil
}

// EmptyIsText reports whether an empty cell of cs holds "" rather than null.
// Only non-nullable string columns do.
func EmptyIsText(cs d.ColumnSchema) bool {
	return cs.Type == d.KindString && !cs.Nullable
}

func (r *Reader) build(schema d.Schema, records [][]string) (*d.Frame, error) {
	f := d.NewFrame(schema)
	cols := make([]d.Column, len(schema.Columns))
	for i := range cols {
		cols[i] = f.Column(i)
	}
	for n, rec := range records {
		f.AppendNullRow()
		switch {
		case len(rec) < len(cols):
			r.shortRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("record %d: need %d fields, got %d", n+1, len(cols), len(rec))
			}
		case len(rec) > len(cols):
			r.longRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("record %d: need %d fields, got %d", n+1, len(cols), len(rec))
			}
		}
		for i, c := range cols {
			if i >= len(rec) {
				continue
			}
			if rec[i] == "" {
				if EmptyIsText(schema.Columns[i]) {
					if err := d.Assign(c, n, ""); err != nil {
						return nil, err
					}
				}
				continue
			}
			v, err := ParseCell(rec[i], c.Kind())
			if err != nil {
				r.badCells++
				if r.opt.Strict {
					return nil, &etlerr.ConversionError{Field: c.Name(), Row: n, Value: rec[i], Target: c.Kind().String(), Err: err}
				}
				continue
			}
			if err := d.Assign(c, n, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// ParseCell converts one text cell into a value of kind k.
func ParseCell(s string, k d.Kind) (any, error) {
	t := strings.TrimSpace(s)
	switch k {
	case d.KindInt:
		return strconv.ParseInt(t, 10, 64)
	case d.KindFloat:
		return strconv.ParseFloat(t, 64)
	case d.KindBool:
		return strconv.ParseBool(strings.ToLower(t))
	case d.KindTime:
		return d.ParseTime(t)
	default:
		return s, nil
	}
}

// HeaderNames strips a BOM, names blank headers and suffixes repeats with
// .1, .2 and so on.
func HeaderNames(rec []string) []string {
	names := make([]string, len(rec))
	seen := map[string]int{}
	for i, h := range rec {
		h = strings.TrimSpace(strings.ToValidUTF8(h, "?"))
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		base := h
		for seen[h] > 0 {
			h = base + "." + strconv.Itoa(seen[base])
			seen[base]++
		}
		seen[h]++
		names[i] = h
	}
	return names
}

// InferKinds picks the narrowest kind holding every non-empty sample value:
// bool, int, float, time (RFC 3339 only), else string. All-empty columns
// are strings.
func InferKinds(ncol int, rows [][]string) []d.Kind {
	kinds := make([]d.Kind, ncol)
	for c := 0; c < ncol; c++ {
		isBool, isInt, isFloat, isTime, seen := true, true, true, true, false
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			seen = true
			lv := strings.ToLower(v)
			if isBool && lv != "true" && lv != "false" {
				isBool = false
			}
			if isInt && !intRE.MatchString(v) {
				isInt = false
			}
			if isFloat && !floatRE.MatchString(v) && lv != "nan" && lv != "inf" && lv != "-inf" {
				isFloat = false
			}
			if isTime {
				if _, err := time.Parse(time.RFC3339Nano, v); err != nil {
					isTime = false
				}
			}
		}
		switch {
		case !seen:
			kinds[c] = d.KindString
		case isBool:
			kinds[c] = d.KindBool
		case isInt:
			kinds[c] = d.KindInt
		case isFloat:
			kinds[c] = d.KindFloat
		case isTime:
			kinds[c] = d.KindTime
		default:
			kinds[c] = d.KindString
		}
	}
	return kinds
}

// sniffDelimiterAndQuotes counts candidate delimiters in the first 4 KiB,
// outside quotes, and enables lazy quotes when the quote count is odd.
func sniffDelimiterAndQuotes(text []byte) (rune, bool) {
	sample := text
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	candidates := []byte{',', '\t', ';', '|'}
	counts := make([]int, len(candidates))
	quotes := 0
	inQuote := false
	for _, b := range sample {
		if b == '"' {
			quotes++
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		for i, c := range candidates {
			if b == c {
				counts[i]++
			}
		}
	}
	best := 0
	for i := range candidates {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return rune(candidates[best]), quotes%2 != 0
}

// Warnings summarises the repairs made during the last read.
func (r *Reader) Warnings() string {
	var parts []string
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	if r.badCells > 0 {
		parts = append(parts, fmt.Sprintf("unparsable_cells=%d", r.badCells))
	}
	return strings.Join(parts, ", ")
}
