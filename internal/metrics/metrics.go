// Package metrics records operational metrics from the heart disease ETL
// without tying the pipeline to a particular metrics system.
//
// A global, pluggable Backend defaults to a no-op, so instrumentation is
// always safe to call. Concrete systems live in subpackages (prompush,
// datadog) and are installed once at startup with SetBackend.
//
// Emitted series:
//
//	etl_step_total{job,step,status}             one per extract/transform/load step
//	etl_step_duration_seconds{job,step,status}
//	etl_rows_total{job,kind}                    extracted, duplicates_removed, loaded
//	etl_imputed_cells_total{job,column,strategy}
//	etl_batches_total{job}                      insert batches flushed
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by the pipeline and the backends.
const (
	StepTotal        = "etl_step_total"
	StepDuration     = "etl_step_duration_seconds"
	RowsTotal        = "etl_rows_total"
	ImputedCellTotal = "etl_imputed_cells_total"
	BatchesTotal     = "etl_batches_total"
)

// Row kinds reported through RecordRows.
const (
	RowsExtracted         = "extracted"
	RowsDuplicatesRemoved = "duplicates_removed"
	RowsLoaded            = "loaded"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one pipeline step.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows increments the row counter for the given job and kind.
// Non-positive deltas are ignored.
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordImputed counts cells filled in column by strategy.
func RecordImputed(job, column, strategy string, cells int) {
	if cells <= 0 {
		return
	}
	current().IncCounter(ImputedCellTotal, float64(cells), Labels{
		"job":      job,
		"column":   column,
		"strategy": strategy,
	})
}

// RecordBatches increments a batch-level counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
