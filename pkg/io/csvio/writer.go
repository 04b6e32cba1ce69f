package csvio

import (
	"bytes"
	"encoding/csv"
	"io"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	iox "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
	NoHeader  bool
	Charset   string // default utf-8
}

// WriteAll writes f with a header row. Nulls are empty fields, floats always
// carry a decimal point and times are RFC 3339.
func WriteAll(path string, f *d.Frame, opt WriterOptions) error {
	var buf bytes.Buffer
	if err := Write(&buf, f, opt); err != nil {
		return err
	}
	out, err := iox.Encode(buf.Bytes(), opt.Charset)
	if err != nil {
		return err
	}
	w, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Write renders f as UTF-8 delimited text.
func Write(dst io.Writer, f *d.Frame, opt WriterOptions) error {
	w := csv.NewWriter(dst)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	row := make([]string, f.Cols())
	if !opt.NoHeader {
		if err := w.Write(f.Names()); err != nil {
			return err
		}
	}
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			row[c] = d.FormatValue(f.Column(c).Value(r))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
