// Package source defines the data-source abstraction the profiler consumes.
// Implementations materialize tables from relational databases or flat files.
package source

import (
	"context"

	"github.com/CharlesDeJager/dprof/internal/profiler"
)

// Source yields tabular data for profiling.
//
// FetchTable must treat a positive rowCap as a hard upper bound on returned
// rows, not a hint, and must return a descriptive error for a missing table
// or connectivity failure.
type Source interface {
	Tables(ctx context.Context) ([]string, error)
	FetchTable(ctx context.Context, name string, rowCap int) (*profiler.Table, error)
	Close() error
}
