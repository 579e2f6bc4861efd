// Package transformer runs the transform stage of the pipeline: schema
// validation, imputation and de-duplication over an in-memory table.
package transformer

import (
	"context"
	"fmt"
	"log"
	"time"

	"heartetl/internal/metrics"
	"heartetl/internal/table"
)

// Step is one state of the transform run. It receives the working table and
// returns the next one; it must not modify its input.
type Step interface {
	Name() string
	Run(ctx context.Context, t *table.Table) (*table.Table, error)
}

// Chain is an ordered list of steps run against a single working table.
type Chain struct {
	// Job labels step metrics.
	Job   string
	Steps []Step
}

// Run executes the steps in order. It stops at the first error or when ctx
// is cancelled; no partial table is returned.
func (c Chain) Run(ctx context.Context, t *table.Table) (*table.Table, error) {
	work := t
	for _, s := range c.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := s.Run(ctx, work)
		d := time.Since(start)
		metrics.RecordStep(c.Job, "transform."+s.Name(), err, d)
		if err != nil {
			log.Printf("transform: %s failed after %s: %v", s.Name(), d.Round(time.Microsecond), err)
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		log.Printf("transform: %s done in %s (rows=%d cols=%d)", s.Name(), d.Round(time.Microsecond), next.Len(), next.Width())
		work = next
	}
	return work, nil
}
