// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A batch job exits before any scraper would see it, so collected series are
// pushed to a Pushgateway on Flush instead of being exposed over HTTP. The
// pipeline job name is the Pushgateway grouping key and is therefore not a
// Prometheus label here.
package prompush

import (
	"fmt"

	"heartetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	grouping   [][2]string
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // etl_step_total
	stepDuration *prometheus.SummaryVec // etl_step_duration_seconds

	rowCounter     *prometheus.CounterVec // etl_rows_total
	imputedCounter *prometheus.CounterVec // etl_imputed_cells_total
	batchCounter   prometheus.Counter     // etl_batches_total
}

// Option customizes a Backend.
type Option func(*Backend)

// WithGrouping adds a grouping key label to every push, e.g. run_id, so
// each run gets its own Pushgateway group.
func WithGrouping(name, value string) Option {
	return func(b *Backend) { b.grouping = append(b.grouping, [2]string{name, value}) }
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually the pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string, opts ...Option) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "heart_disease_etl"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "ETL step executions by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of ETL steps in seconds, by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows per kind (extracted, duplicates_removed, loaded).",
		},
		[]string{"kind"},
	)
	imputedCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.ImputedCellTotal,
			Help: "Missing cells filled, by column and imputation strategy.",
		},
		[]string{"column", "strategy"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Insert batches flushed to the destination table.",
		},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":    stepCounter,
		"step summary":    stepDuration,
		"row counter":     rowCounter,
		"imputed counter": imputedCounter,
		"batch counter":   batchCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	b := &Backend{
		gatewayURL:     gatewayURL,
		jobName:        jobName,
		reg:            reg,
		stepCounter:    stepCounter,
		stepDuration:   stepDuration,
		rowCounter:     rowCounter,
		imputedCounter: imputedCounter,
		batchCounter:   batchCounter,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.ImputedCellTotal:
		if b.imputedCounter == nil {
			return
		}
		b.imputedCounter.WithLabelValues(labels["column"], labels["strategy"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	for _, g := range b.grouping {
		p = p.Grouping(g[0], g[1])
	}
	return p.Push()
}
