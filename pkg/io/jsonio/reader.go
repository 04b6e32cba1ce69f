// Package jsonio reads and writes record-oriented JSON: a top-level array
// of objects (json) or one object per line (jsonl).
package jsonio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	iox "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/ioutils"
)

type ReaderOptions struct {
	Schema *d.Schema
}

// record keeps the object's keys in document order.
type record struct {
	keys []string
	vals map[string]any
}

// ReadFile decodes path (gzip aware).
func ReadFile(ctx context.Context, path string, opt ReaderOptions) (*d.Frame, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, &etlerr.FormatError{Op: "read", Path: path, Encoding: "json", Err: err}
	}
	defer rc.Close()
	return Read(ctx, rc, opt)
}

// Read accepts either a JSON array of objects or a stream of objects.
func Read(ctx context.Context, src io.Reader, opt ReaderOptions) (*d.Frame, error) {
	br := bufio.NewReader(src)
	first, err := firstByte(br)
	if errors.Is(err, io.EOF) {
		// an empty document is a dataset without rows
		if opt.Schema != nil {
			return d.NewFrame(*opt.Schema), nil
		}
		return d.NewFrame(d.Schema{}), nil
	}
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(br)
	dec.UseNumber()
	array := first == '['
	if array {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	}

	var recs []record
	var order []string
	known := map[string]struct{}{}
	for n := 0; ; n++ {
		if array && !dec.More() {
			break
		}
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := readObject(dec)
		if errors.Is(err, io.EOF) && !array {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		for _, k := range rec.keys {
			if _, ok := known[k]; !ok {
				known[k] = struct{}{}
				order = append(order, k)
			}
		}
		recs = append(recs, rec)
	}

	schema := inferSchema(order, recs)
	if opt.Schema != nil {
		schema = *opt.Schema
	}
	f := d.NewFrame(schema)
	for r, rec := range recs {
		f.AppendNullRow()
		for i, cs := range schema.Columns {
			v, ok := rec.vals[cs.Name]
			if !ok || v == nil {
				continue
			}
			cv, err := toKind(v, cs.Type)
			if err != nil {
				return nil, &etlerr.ConversionError{Field: cs.Name, Row: r, Value: text(v), Target: cs.Type.String(), Err: err}
			}
			if err := d.Assign(f.Column(i), r, cv); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xef: // utf-8 bom
			_, _ = br.Discard(2)
			continue
		}
		return b, br.UnreadByte()
	}
}

func readObject(dec *json.Decoder) (record, error) {
	tok, err := dec.Token()
	if err != nil {
		return record{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return record{}, fmt.Errorf("expected object, got %v", tok)
	}
	rec := record{vals: map[string]any{}}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return record{}, err
		}
		key := kt.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return record{}, err
		}
		if _, dup := rec.vals[key]; !dup {
			rec.keys = append(rec.keys, key)
		}
		rec.vals[key] = flatten(v)
	}
	if _, err := dec.Token(); err != nil {
		return record{}, err
	}
	return rec, nil
}

// flatten keeps scalars and re-encodes nested values as JSON text.
func flatten(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, _ := json.Marshal(v)
		return string(b)
	}
	return v
}

func inferSchema(order []string, recs []record) d.Schema {
	cols := make([]d.ColumnSchema, len(order))
	for i, k := range order {
		cols[i] = d.Col(k, inferKind(k, recs))
	}
	return d.NewSchema(cols...)
}

func inferKind(key string, recs []record) d.Kind {
	var nBool, nInt, nFloat, nStr, nTime int
	for _, r := range recs {
		switch t := r.vals[key].(type) {
		case nil:
		case bool:
			nBool++
		case json.Number:
			if _, err := t.Int64(); err == nil && !strings.ContainsAny(t.String(), ".eE") {
				nInt++
			} else {
				nFloat++
			}
		case string:
			nStr++
			if _, err := time.Parse(time.RFC3339Nano, t); err == nil {
				nTime++
			}
		}
	}
	switch total := nBool + nInt + nFloat + nStr; {
	case total == 0:
		return d.KindString
	case nBool == total:
		return d.KindBool
	case nInt == total:
		return d.KindInt
	case nInt+nFloat == total:
		return d.KindFloat
	case nTime == total:
		return d.KindTime
	}
	return d.KindString
}

func toKind(v any, k d.Kind) (any, error) {
	if n, ok := v.(json.Number); ok {
		switch k {
		case d.KindInt:
			return n.Int64()
		case d.KindFloat:
			return n.Float64()
		case d.KindString:
			return n.String(), nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return d.Coerce(f, k)
	}
	if k == d.KindString {
		return text(v), nil
	}
	return d.Coerce(v, k)
}

func text(v any) string {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return d.FormatValue(v)
}
