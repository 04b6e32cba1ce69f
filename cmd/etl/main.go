// Command etl runs a job file through the pipeline:
//
//	etl -config job.yaml -stats out/stats.json
//
// Exit status is 0 on success, 1 when the run fails and 2 on usage errors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etl"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/metrics"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/stats"
)

var version = "0.1.0-dev"

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "Print version and exit")
	jobPath := fs.String("config", "", "Path to the job file (json, yaml or toml)")
	statsPath := fs.String("stats", "", "Write the run report here (.json, .yaml)")
	metricsPath := fs.String("metrics", "", "Write prometheus metrics here in text format")
	showProfile := fs.Bool("profile", false, "Print a column profile of the final data")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintln(stdout, "etl", version)
		return exitOK
	}
	if *jobPath == "" {
		fmt.Fprintln(stderr, "no job provided; nothing to do. try -config <file> or -version")
		return exitUsage
	}

	job, err := etl.LoadJob(*jobPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	cfg, err := job.Config()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	reg := prometheus.NewRegistry()
	p, err := job.Start(
		etl.WithLogger(cfg.Logger(stderr)),
		etl.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if etlerr.IsConfiguration(err) {
			return exitUsage
		}
		return exitFail
	}
	rep := p.Finish()

	if *showProfile && p.Data() != nil {
		fmt.Fprint(stdout, p.Profile().Text())
	}
	code := exitOK
	if *statsPath != "" {
		if err := p.SaveStats(*statsPath); err != nil {
			fmt.Fprintln(stderr, err)
			code = exitFail
		}
	}
	if *metricsPath != "" {
		if err := prometheus.WriteToTextfile(*metricsPath, reg); err != nil {
			fmt.Fprintln(stderr, err)
			code = exitFail
		}
	}
	if err := p.Err(); err != nil {
		fmt.Fprintln(stderr, "run failed:", err)
		var cfgErr *etlerr.ConfigurationError
		if errors.As(err, &cfgErr) {
			return exitUsage
		}
		return exitFail
	}
	fmt.Fprintf(stdout, "%s: %d rows in, %d rows out, %d stages in %s\n",
		rep.Status, rep.Aggregates.RowsAtStart, rep.Aggregates.RowsAtEnd, rep.Aggregates.Stages,
		stats.FormatDuration(rep.Duration()))
	return code
}
