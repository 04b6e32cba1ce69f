// Package sample generates synthetic customer data for examples and
// benchmarks.
package sample

import (
	"fmt"
	"math/rand"
	"time"

	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
)

var statuses = []string{"active", "inactive", "pending"}

type Options struct {
	Rows int
	Seed int64
	// MissingRate is the share of rows whose email is blanked.
	MissingRate float64
	// Duplicates copies the first rows onto the end of the frame.
	Duplicates int
	// Now anchors last_purchase, which falls within the year before it.
	Now time.Time
}

// Schema is the column layout Customers produces.
func Schema() d.Schema {
	return d.NewSchema(
		d.Col("customer_id", d.KindInt),
		d.Col("name", d.KindString),
		d.Col("email", d.KindString),
		d.Col("age", d.KindInt),
		d.Col("purchase_amount", d.KindFloat),
		d.Col("last_purchase", d.KindString),
		d.Col("status", d.KindString),
	)
}

// Customers builds o.Rows customers plus o.Duplicates repeated rows. The
// same options always give the same frame.
func Customers(o Options) *d.Frame {
	if o.Now.IsZero() {
		o.Now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rnd := rand.New(rand.NewSource(o.Seed))
	f := d.NewFrame(Schema())
	for i := 0; i < o.Rows; i++ {
		id := i + 1
		f.AppendNullRow()
		_ = f.SetCell(i, "customer_id", int64(id))
		_ = f.SetCell(i, "name", fmt.Sprintf("Cliente %d", id))
		if rnd.Float64() >= o.MissingRate {
			_ = f.SetCell(i, "email", fmt.Sprintf("cliente%d@example.com", id))
		}
		_ = f.SetCell(i, "age", int64(18+rnd.Intn(62)))
		_ = f.SetCell(i, "purchase_amount", 10+rnd.Float64()*990)
		_ = f.SetCell(i, "last_purchase", o.Now.AddDate(0, 0, -rnd.Intn(365)).Format(time.DateOnly))
		_ = f.SetCell(i, "status", statuses[rnd.Intn(len(statuses))])
	}
	dups := min(o.Duplicates, o.Rows)
	if dups <= 0 {
		return f
	}
	idx := make([]int, dups)
	for i := range idx {
		idx[i] = i
	}
	out, err := f.Concat(f.Take(idx))
	if err != nil {
		panic(err)
	}
	return out
}
