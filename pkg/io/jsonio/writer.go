package jsonio

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	iox "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/ioutils"
)

type WriterOptions struct {
	Lines bool // one object per line instead of an array
}

func WriteAll(path string, f *d.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write emits every row as an object with keys in schema order. Nulls and
// non-finite floats are written as null; floats keep a decimal point.
func Write(dst io.Writer, f *d.Frame, opt WriterOptions) error {
	w := bufio.NewWriter(dst)
	keys := make([][]byte, f.Cols())
	for i, n := range f.Names() {
		k, err := json.Marshal(n)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	if !opt.Lines {
		w.WriteByte('[')
	}
	for r := 0; r < f.Rows(); r++ {
		if r > 0 && !opt.Lines {
			w.WriteByte(',')
		}
		w.WriteByte('{')
		for c := range keys {
			if c > 0 {
				w.WriteByte(',')
			}
			w.Write(keys[c])
			w.WriteByte(':')
			if err := writeValue(w, f.Column(c).Value(r)); err != nil {
				return err
			}
		}
		w.WriteByte('}')
		if opt.Lines {
			w.WriteByte('\n')
		}
	}
	if !opt.Lines {
		w.WriteString("]\n")
	}
	return w.Flush()
}

func writeValue(w *bufio.Writer, v any) error {
	switch t := v.(type) {
	case nil:
		w.WriteString("null")
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			w.WriteString("null")
			return nil
		}
		w.WriteString(d.FormatFloat(t))
	case time.Time:
		b, _ := json.Marshal(t.Format(time.RFC3339Nano))
		w.Write(b)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		w.Write(b)
	}
	return nil
}
