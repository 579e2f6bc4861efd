package storage

import (
	"context"
	"fmt"
	"iter"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// written. It is called once per batch and should cancel promptly when ctx
// is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadStats summarizes a LoadBatches run.
type LoadStats struct {
	Rows    int64
	Batches int64
	Elapsed time.Duration
}

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn for each non-empty batch. It returns the totals reported by
// copyFn and the first error encountered.
//
// Cancellation: returns ctx.Err() when canceled. Progress is logged on each
// successful flush.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (LoadStats, error) {
	if batchSize <= 0 {
		return LoadStats{}, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return LoadStats{}, fmt.Errorf("copyFn must not be nil")
	}

	var (
		st          LoadStats
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		st.Rows += n
		batch = batch[:0]

		if err != nil {
			log.Printf("loader: copy failed after=%d total=%d err=%v", n, st.Rows, err)
			return err
		}

		st.Batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(n) / sinceLast.Seconds()
		}
		log.Printf(
			"batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			st.Batches, rps, n, st.Rows, now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlushTS = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			st.Elapsed = time.Since(start)
			return st, ctx.Err()

		case row, ok := <-in:
			if !ok {
				err := flush()
				st.Elapsed = time.Since(start)
				if err != nil {
					return st, err
				}
				log.Printf("loader: input closed, batches=%d total_inserted=%d", st.Batches, st.Rows)
				return st, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					st.Elapsed = time.Since(start)
					return st, err
				}
			}
		}
	}
}

// Feed streams rows into a channel that LoadBatches can drain. The channel
// is closed after the last row or when ctx is done.
func Feed(ctx context.Context, rows iter.Seq[[]any]) <-chan []any {
	out := make(chan []any)
	go func() {
		defer close(out)
		for r := range rows {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
