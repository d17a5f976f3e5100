package profiler

import "fmt"

// ErrConfiguration reports invalid profiling settings. It is the only error
// fatal to a whole Profile call.
type ErrConfiguration struct {
	Msg string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Msg)
}

// ErrDataSource reports a table fetch or connectivity failure.
type ErrDataSource struct {
	Table string
	Err   error
}

func (e *ErrDataSource) Error() string {
	return fmt.Sprintf("data source error for table %q: %v", e.Table, e.Err)
}

func (e *ErrDataSource) Unwrap() error { return e.Err }

// ErrTableProfiling reports a failure profiling one table. Recorded as the
// table's error marker; never aborts sibling tables.
type ErrTableProfiling struct {
	Table string
	Err   error
}

func (e *ErrTableProfiling) Error() string {
	return fmt.Sprintf("profiling table %q: %v", e.Table, e.Err)
}

func (e *ErrTableProfiling) Unwrap() error { return e.Err }

// ErrColumnProfiling reports a failure profiling one column. Recorded as the
// column's error marker; never fails the table.
type ErrColumnProfiling struct {
	Table  string
	Column string
	Err    error
}

func (e *ErrColumnProfiling) Error() string {
	return fmt.Sprintf("profiling column %q of table %q: %v", e.Column, e.Table, e.Err)
}

func (e *ErrColumnProfiling) Unwrap() error { return e.Err }
