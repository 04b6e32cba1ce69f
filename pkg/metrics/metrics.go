// Package metrics provides Prometheus instrumentation for pipeline stages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage outcomes used for the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Collector holds the stage metrics. A nil *Collector records nothing.
type Collector struct {
	StageTotal    *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Rows          *prometheus.CounterVec
}

// New registers the collectors on reg. Registering twice on the same
// registerer panics, as with any promauto factory.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		StageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "etl",
				Name:      "stage_total",
				Help:      "Total number of pipeline stages run",
			},
			[]string{"stage", "status"},
		),

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "etl",
				Name:      "stage_duration_seconds",
				Help:      "Time spent in each pipeline stage",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		Rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "etl",
				Name:      "rows_total",
				Help:      "Rows entering and leaving pipeline stages",
			},
			[]string{"stage", "direction"},
		),
	}
}

// ObserveStage records one finished stage.
func (c *Collector) ObserveStage(stage string, ok bool, d time.Duration, rowsIn, rowsOut int) {
	if c == nil {
		return
	}
	status := StatusSuccess
	if !ok {
		status = StatusFailure
	}
	c.StageTotal.WithLabelValues(stage, status).Inc()
	c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if rowsIn > 0 {
		c.Rows.WithLabelValues(stage, "in").Add(float64(rowsIn))
	}
	if rowsOut > 0 {
		c.Rows.WithLabelValues(stage, "out").Add(float64(rowsOut))
	}
}
