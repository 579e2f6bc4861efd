package transformer

import (
	"context"
	"log"

	"heartetl/internal/config"
	"heartetl/internal/metrics"
	"heartetl/internal/schema"
	"heartetl/internal/table"
	"heartetl/internal/transformer/builtin"
)

// Option customizes Transform.
type Option func(*options)

type options struct {
	job string
}

// WithJob sets the job label used for metrics.
func WithJob(job string) Option {
	return func(o *options) { o.job = job }
}

// Transform cleans t according to cfg:
//
//	Start -> [validate] -> impute -> [dedup] -> Done
//
// Validation (cfg.ValidateTypes) runs against sch before any cell is
// changed; de-duplication runs when cfg.RemoveDuplicates is set. The input
// table is never modified. On any error Transform returns a nil table and
// the error: *config.ConfigurationError, *schema.ViolationError,
// *builtin.ColumnNotFoundError or *builtin.ImputationError, wrapped with the
// failing step name.
func Transform(ctx context.Context, t *table.Table, cfg config.Transform, sch schema.Schema, opts ...Option) (*table.Table, error) {
	o := options{job: "transform"}
	for _, fn := range opts {
		fn(&o)
	}

	if err := config.Check(config.ValidateTransform(cfg)); err != nil {
		return nil, err
	}

	var steps []Step
	if cfg.ValidateTypes {
		steps = append(steps, validateStep{schema: sch})
	}
	steps = append(steps, imputeStep{
		job: o.job,
		impute: builtin.Impute{
			Strategies: cfg.HandleMissing.Strategies,
			KNN:        cfg.HandleMissing.KNN,
		},
	})
	if cfg.RemoveDuplicates {
		steps = append(steps, dedupStep{job: o.job})
	}

	return Chain{Job: o.job, Steps: steps}.Run(ctx, t.Clone())
}

type validateStep struct {
	schema schema.Schema
}

func (validateStep) Name() string { return "validate" }

func (s validateStep) Run(_ context.Context, t *table.Table) (*table.Table, error) {
	if err := schema.Validate(t, s.schema); err != nil {
		return nil, err
	}
	return t, nil
}

type imputeStep struct {
	job    string
	impute builtin.Impute
}

func (imputeStep) Name() string { return "impute" }

func (s imputeStep) Run(ctx context.Context, t *table.Table) (*table.Table, error) {
	out, report, err := s.impute.Apply(ctx, t)
	if err != nil {
		return nil, err
	}
	for _, f := range report {
		if f.Value != nil {
			log.Printf("impute: %s filled %d cells in %s with %v", f.Strategy, f.Cells, f.Column, f.Value)
		} else {
			log.Printf("impute: %s filled %d cells in %s", f.Strategy, f.Cells, f.Column)
		}
		metrics.RecordImputed(s.job, f.Column, f.Strategy, f.Cells)
	}
	return out, nil
}

type dedupStep struct {
	job string
}

func (dedupStep) Name() string { return "dedup" }

func (s dedupStep) Run(_ context.Context, t *table.Table) (*table.Table, error) {
	out, removed := builtin.DeDup{}.Apply(t)
	log.Printf("dedup: removed %d duplicate rows, %d remain", removed, out.Len())
	metrics.RecordRows(s.job, metrics.RowsDuplicatesRemoved, int64(removed))
	return out, nil
}
