// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens a dataset file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the file the source reads.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading. A context that is already
// done short-circuits without touching the filesystem. Filesystem errors
// keep their cause, so errors.Is(err, os.ErrNotExist) works.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", l.path, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: is a directory", l.path)
	}
	return f, nil
}
