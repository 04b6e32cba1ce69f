// Command etlbench times a full pipeline run over generated customer data.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/config"
	d "github.com/lucasandre16112000-png/03-etl-pipeline/pkg/dataset"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etl"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/builtin"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/sample"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/normalize"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/standardize"
)

func main() {
	var (
		rows    = flag.Int("rows", 1_000_000, "customers to generate")
		dups    = flag.Int("duplicates", 1000, "rows repeated at the end")
		missp   = flag.Float64("missing", 0.05, "probability of a missing email")
		format  = flag.String("format", "csv", "file format for the round trip (csv, jsonl, parquet, ...)")
		workers = flag.Int("workers", runtime.NumCPU(), "adapter workers")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	summary, err := bench(*rows, *dups, *missp, *format, *workers, *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d\n", summary.Rows)
	fmt.Printf("Elapsed: %s\n", summary.Elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", summary.RowsPerSec)
	for _, s := range summary.Stages {
		fmt.Printf("  %-16s %8.3fs %d -> %d\n", s.Name, s.Seconds, s.RowsIn, s.RowsOut)
	}
	fmt.Printf("Total Alloc (delta): %d MB\n", summary.TotalAllocBytes/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", summary.GCCycles)
}

type stageTiming struct {
	Name    string  `json:"name"`
	Seconds float64 `json:"seconds"`
	RowsIn  int     `json:"rows_in"`
	RowsOut int     `json:"rows_out"`
}

type result struct {
	Rows            int           `json:"rows"`
	Format          string        `json:"format"`
	Elapsed         time.Duration `json:"elapsed_ns"`
	RowsPerSec      float64       `json:"rows_per_sec"`
	Stages          []stageTiming `json:"stages"`
	TotalAllocBytes uint64        `json:"mem_total_alloc_bytes"`
	GCCycles        uint32        `json:"gc_num"`
}

func bench(rows, dups int, missp float64, format string, workers int, seed int64) (*result, error) {
	dir, err := os.MkdirTemp("", "etlbench-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, "in."+format)
	data := sample.Customers(sample.Options{Rows: rows, Seed: seed, MissingRate: missp, Duplicates: dups})
	if err := builtin.Default().Write(context.Background(), data, in); err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.MaxWorkers = workers
	p, err := etl.New(cfg)
	if err != nil {
		return nil, err
	}
	text := d.NewChain().
		Add(&standardize.Trim{Column: "name"}).
		Add(&standardize.Lower{Column: "name"}).
		Add(&standardize.Upper{Column: "status"})

	runtime.GC()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	p.Run().Extract(in).Clean()
	for _, t := range text.Steps() {
		p.Apply(t)
	}
	p.Normalize("purchase_amount", normalize.ZScore).Load(filepath.Join(dir, "out."+format))

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)
	rep := p.FinishWithTime(elapsed)
	if err := p.Err(); err != nil {
		return nil, err
	}

	res := &result{
		Rows:            data.Rows(),
		Format:          format,
		Elapsed:         elapsed,
		RowsPerSec:      float64(data.Rows()) / elapsed.Seconds(),
		TotalAllocBytes: after.TotalAlloc - before.TotalAlloc,
		GCCycles:        after.NumGC - before.NumGC,
	}
	for _, s := range rep.Stages {
		res.Stages = append(res.Stages, stageTiming{Name: s.Name, Seconds: s.DurationSeconds, RowsIn: s.RowsIn, RowsOut: s.RowsOut})
	}
	return res, nil
}
