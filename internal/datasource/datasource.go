// Package datasource defines where raw bytes come from. Implementations
// live in subpackages: file (local disk) and httpds (one URL over HTTP).
package datasource

import (
	"context"
	"io"
)

// Source opens a readable stream. The caller closes it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
