// Package parquetio stores frames as Parquet files. Writing goes through the
// xitongsys JSON writer; reading uses the segmentio row reader.
package parquetio

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	xparquet "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

// schemaKey is the footer metadata entry holding column order and kinds.
const schemaKey = "etl.schema"

type metaColumn struct {
	Name string `json:"name"`
	Type d.Kind `json:"type"`
}

type WriterOptions struct {
	Workers int // parallel page encoders; default 4
}

func schemaJSON(s d.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		if strings.ContainsAny(cs.Name, ",=") {
			return "", fmt.Errorf("column name %q cannot be stored in parquet", cs.Name)
		}
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case d.KindFloat:
			tag += "DOUBLE"
		case d.KindInt:
			tag += "INT64"
		case d.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "UTF8, encoding=PLAIN_DICTIONARY"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes f with snappy compression. Times are stored as RFC 3339
// text and restored from the footer schema on read; NaN and infinities are
// stored as null.
func WriteAll(path string, f *d.Frame, opt WriterOptions) error {
	if f.Cols() == 0 {
		return fmt.Errorf("cannot write a frame without columns")
	}
	sc, err := schemaJSON(f.Schema())
	if err != nil {
		return err
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = 4
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewJSONWriter(sc, fw, int64(workers))
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	pw.CompressionType = xparquet.CompressionCodec_SNAPPY

	names := f.Names()
	rec := make(map[string]any, len(names))
	for r := 0; r < f.Rows(); r++ {
		clear(rec)
		for c, n := range names {
			switch v := f.Column(c).Value(r).(type) {
			case nil:
			case float64:
				if !math.IsNaN(v) && !math.IsInf(v, 0) {
					rec[n] = v
				}
			case time.Time:
				rec[n] = v.Format(time.RFC3339Nano)
			default:
				rec[n] = v
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			_ = fw.Close()
			return err
		}
		if err := pw.Write(string(b)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}

	meta := make([]metaColumn, len(names))
	for i, cs := range f.Schema().Columns {
		meta[i] = metaColumn{Name: cs.Name, Type: cs.Type}
	}
	mb, _ := json.Marshal(meta)
	ms := string(mb)
	pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, &xparquet.KeyValue{Key: schemaKey, Value: &ms})

	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet finish: %w", err)
	}
	return fw.Close()
}
