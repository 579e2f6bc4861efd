// Package etl runs one batch of the heart disease pipeline:
//
//	extract -> transform -> load
//
// Each stage is timed and reported through the metrics package; the run is
// tagged with a run id that appears in every pipeline log line.
package etl

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"heartetl/internal/config"
	"heartetl/internal/extract"
	"heartetl/internal/load"
	"heartetl/internal/metrics"
	"heartetl/internal/schema"
	"heartetl/internal/table"
	"heartetl/internal/transformer"
)

// Summary reports one run.
type Summary struct {
	RunID string

	Extracted int
	Skipped   int
	Cleaned   int
	Loaded    int64
	Batches   int64

	Snapshot string
	Table    string
	Elapsed  time.Duration
}

// Option customizes Run.
type Option func(*options)

type options struct {
	runID  string
	schema *schema.Schema
	extOps []extract.Option
}

// WithRunID sets the run id; a random UUID is used otherwise.
func WithRunID(id string) Option { return func(o *options) { o.runID = id } }

// WithSchema replaces the heart disease schema used for validation.
func WithSchema(s schema.Schema) Option { return func(o *options) { o.schema = &s } }

// WithExtractOptions passes options through to extract.Extract.
func WithExtractOptions(opts ...extract.Option) Option {
	return func(o *options) { o.extOps = append(o.extOps, opts...) }
}

// Run executes the pipeline described by p. p is expected to be validated
// already (config.Load does that). The first failing stage aborts the run;
// its error is returned wrapped with the stage name.
func Run(ctx context.Context, p config.Pipeline, opts ...Option) (Summary, error) {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	sch := schema.HeartDisease()
	if o.schema != nil {
		sch = *o.schema
	}

	job := p.Job
	sum := Summary{RunID: o.runID, Table: p.Load.DBTable}
	start := time.Now()
	log.Printf("pipeline: run_id=%s job=%s source=%s storage=%s table=%s",
		o.runID, job, p.Data.DatasetSource, p.Load.Kind, p.Load.DBTable)

	var raw *table.Table
	err := stage(ctx, o.runID, job, "extract", func(ctx context.Context) error {
		res, err := extract.Extract(ctx, p.Data, append([]extract.Option{extract.WithJob(job)}, o.extOps...)...)
		if err != nil {
			return err
		}
		raw = res.Table
		sum.Extracted = res.Table.Len()
		sum.Skipped = res.Skipped
		sum.Snapshot = res.SnapshotPath
		return nil
	})
	if err != nil {
		return sum, err
	}

	var cleaned *table.Table
	err = stage(ctx, o.runID, job, "transform", func(ctx context.Context) error {
		out, err := transformer.Transform(ctx, raw, p.Transform, sch, transformer.WithJob(job))
		if err != nil {
			return err
		}
		cleaned = out
		sum.Cleaned = out.Len()
		return nil
	})
	if err != nil {
		return sum, err
	}

	err = stage(ctx, o.runID, job, "load", func(ctx context.Context) error {
		res, err := load.Load(ctx, cleaned, p.Load, load.WithJob(job))
		if err != nil {
			return err
		}
		sum.Loaded = res.Rows
		sum.Batches = res.Batches
		return nil
	})
	if err != nil {
		return sum, err
	}

	sum.Elapsed = time.Since(start)
	log.Printf("pipeline: run_id=%s done: extracted=%d skipped=%d cleaned=%d loaded=%d batches=%d table=%s elapsed=%s",
		sum.RunID, sum.Extracted, sum.Skipped, sum.Cleaned, sum.Loaded, sum.Batches, sum.Table,
		sum.Elapsed.Truncate(time.Millisecond))
	return sum, nil
}

// stage runs fn as the named pipeline step and records its outcome.
func stage(ctx context.Context, runID, job, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	metrics.RecordStep(job, name, err, d)
	if err != nil {
		log.Printf("pipeline: run_id=%s %s failed after %s: %v", runID, name, d.Round(time.Millisecond), err)
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Printf("pipeline: run_id=%s %s done in %s", runID, name, d.Round(time.Millisecond))
	return nil
}
