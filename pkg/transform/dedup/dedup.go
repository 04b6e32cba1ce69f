// Package dedup removes repeated rows.
package dedup

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
)

// Keep selects which member of a duplicate group survives.
type Keep int

const (
	KeepFirst Keep = iota
	KeepLast
	// KeepNone drops every row that has a duplicate.
	KeepNone
)

func (k Keep) String() string {
	switch k {
	case KeepLast:
		return "last"
	case KeepNone:
		return "none"
	default:
		return "first"
	}
}

// ParseKeep accepts first, last and none (or false, as pandas spells it).
func ParseKeep(s string) (Keep, error) {
	switch s {
	case "", "first":
		return KeepFirst, nil
	case "last":
		return KeepLast, nil
	case "none", "false":
		return KeepNone, nil
	}
	return KeepFirst, fmt.Errorf("unknown keep policy %q", s)
}

// Dedup compares rows on Subset (every column when empty).
type Dedup struct {
	Subset []string
	Keep   Keep
}

func (t *Dedup) Name() string { return "deduplicate" }

func (t *Dedup) Apply(ctx context.Context, f *d.Frame) (*d.Frame, error) {
	names := t.Subset
	if len(names) == 0 {
		names = f.Names()
	}
	cols := make([]d.Column, 0, len(names))
	for _, n := range names {
		c, ok := f.ColumnByName(n)
		if !ok {
			return nil, etlerr.Missing(t.Name(), n)
		}
		cols = append(cols, c)
	}

	// group id per row; groups are numbered in first-appearance order
	groupOf := make([]int, f.Rows())
	var sizes []int
	buckets := make(map[uint64][]int) // hash -> representative rows
	var buf []byte
	for r := 0; r < f.Rows(); r++ {
		buf = rowKey(buf[:0], cols, r)
		h := xxh3.Hash(buf)
		g := -1
		for _, rep := range buckets[h] {
			if sameRow(cols, rep, r) {
				g = groupOf[rep]
				break
			}
		}
		if g < 0 {
			g = len(sizes)
			sizes = append(sizes, 0)
			buckets[h] = append(buckets[h], r)
		}
		groupOf[r] = g
		sizes[g]++
	}
	if len(sizes) == f.Rows() {
		return f, nil
	}

	keep := make([]int, 0, len(sizes))
	switch t.Keep {
	case KeepFirst:
		seen := make([]bool, len(sizes))
		for r, g := range groupOf {
			if !seen[g] {
				seen[g] = true
				keep = append(keep, r)
			}
		}
	case KeepLast:
		remaining := append([]int(nil), sizes...)
		for r, g := range groupOf {
			remaining[g]--
			if remaining[g] == 0 {
				keep = append(keep, r)
			}
		}
	case KeepNone:
		for r, g := range groupOf {
			if sizes[g] == 1 {
				keep = append(keep, r)
			}
		}
	default:
		return nil, &etlerr.TransformError{Op: t.Name(), Err: fmt.Errorf("unknown keep policy %d", t.Keep)}
	}
	return f.Take(keep), nil
}

// rowKey encodes the subset cells of row r. Fields are separated by 0x1f and
// nulls are written as 0x00 so "" and null differ.
func rowKey(buf []byte, cols []d.Column, r int) []byte {
	for i, c := range cols {
		if i > 0 {
			buf = append(buf, 0x1f)
		}
		switch v := c.Value(r).(type) {
		case nil:
			buf = append(buf, 0x00)
		case string:
			buf = append(buf, 's')
			buf = append(buf, v...)
		case int64:
			buf = append(buf, 'i')
			buf = strconv.AppendInt(buf, v, 10)
		case float64:
			buf = append(buf, 'f')
			if math.IsNaN(v) {
				buf = append(buf, "NaN"...)
			} else {
				if v == 0 {
					v = 0 // fold -0 onto +0
				}
				buf = strconv.AppendUint(buf, math.Float64bits(v), 16)
			}
		case bool:
			buf = append(buf, 'b')
			buf = strconv.AppendBool(buf, v)
		case time.Time:
			buf = append(buf, 't')
			buf = strconv.AppendInt(buf, v.UnixNano(), 10)
		}
	}
	return buf
}

func sameRow(cols []d.Column, a, b int) bool {
	for _, c := range cols {
		if !d.ValuesEqual(c.Value(a), c.Value(b)) {
			return false
		}
	}
	return true
}
