package profiler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Fetcher is the data-source abstraction the orchestrator consumes. rowCap
// is a hard upper bound on returned rows when positive; implementations must
// return a descriptive error for missing tables and connectivity failures.
type Fetcher interface {
	FetchTable(ctx context.Context, name string, rowCap int) (*Table, error)
}

// ProgressFunc receives the percentage of completed tables, 0..100. It is
// invoked from the collecting goroutine only, after each table finishes.
type ProgressFunc func(percent int)

// Config holds the profiling engine settings.
type Config struct {
	// MaxConcurrency bounds both worker pools: the table-level pool and
	// each table's column-level pool.
	MaxConcurrency int
	// PatternSampleSize caps how many string values feed pattern mining.
	PatternSampleSize int
	// MaxPatterns bounds the returned pattern ranking.
	MaxPatterns int
	// TopValues bounds the most-frequent-values ranking of string columns.
	TopValues int
	// TopDates bounds the most-frequent-timestamps ranking.
	TopDates int
}

// DefaultConfig mirrors the engine's documented defaults.
var DefaultConfig = Config{
	MaxConcurrency:    4,
	PatternSampleSize: 1000,
	MaxPatterns:       20,
	TopValues:         10,
	TopDates:          5,
}

func (c Config) validate() error {
	if c.MaxConcurrency <= 0 {
		return &ErrConfiguration{Msg: fmt.Sprintf("max concurrency must be positive, got %d", c.MaxConcurrency)}
	}
	if c.PatternSampleSize < 0 || c.MaxPatterns < 0 || c.TopValues < 0 || c.TopDates < 0 {
		return &ErrConfiguration{Msg: "sample and ranking limits must not be negative"}
	}
	return nil
}

// Service orchestrates profiling over many tables and, within each table,
// many columns, using two nested bounded worker pools.
type Service struct {
	fetcher Fetcher
	cfg     Config
	logger  *zap.Logger
}

func NewService(fetcher Fetcher, cfg Config, logger *zap.Logger) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, cfg: cfg, logger: logger}, nil
}

type tableResult struct {
	name  string
	entry TableEntry
}

// Profile fetches and profiles every requested table. A failed table is
// recorded as its error marker and never aborts siblings, so the report
// always has one entry per requested table. rowCap <= 0 disables the cap.
// progress may be nil.
func (s *Service) Profile(ctx context.Context, tables []string, rowCap int, progress ProgressFunc) (Report, error) {
	if rowCap < 0 {
		return nil, &ErrConfiguration{Msg: fmt.Sprintf("row cap must not be negative, got %d", rowCap)}
	}

	report := make(Report, len(tables))
	if len(tables) == 0 {
		return report, nil
	}

	start := time.Now()
	s.logger.Info("starting profiling run",
		zap.Int("tables", len(tables)),
		zap.Int("row_cap", rowCap),
		zap.Int("max_concurrency", s.cfg.MaxConcurrency))

	jobs := make(chan string)
	results := make(chan tableResult)

	workers := s.cfg.MaxConcurrency
	if workers > len(tables) {
		workers = len(tables)
	}
	for i := 0; i < workers; i++ {
		go func() {
			for name := range jobs {
				results <- tableResult{name: name, entry: s.profileTable(ctx, name, rowCap)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range tables {
			jobs <- name
		}
	}()

	// Collecting on a single goroutine serializes both report writes and
	// progress notifications, keeping progress monotonically non-decreasing.
	// Truncation, not rounding: 100 must not be reported until the last
	// table is in.
	completed := 0
	for range tables {
		res := <-results
		report[res.name] = res.entry
		completed++
		if progress != nil {
			progress(completed * 100 / len(tables))
		}
	}

	s.logger.Info("profiling run finished",
		zap.Int("tables", len(tables)),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

func (s *Service) profileTable(ctx context.Context, name string, rowCap int) (entry TableEntry) {
	defer func() {
		if r := recover(); r != nil {
			err := &ErrTableProfiling{Table: name, Err: fmt.Errorf("%v", r)}
			s.logger.Warn("table profiling failed", zap.String("table", name), zap.Error(err))
			entry = TableEntry{Err: err}
		}
	}()

	table, err := s.fetcher.FetchTable(ctx, name, rowCap)
	if err != nil {
		s.logger.Warn("table fetch failed", zap.String("table", name), zap.Error(err))
		return TableEntry{Err: &ErrDataSource{Table: name, Err: err}}
	}

	profile := &TableProfile{
		TableName:    name,
		TotalRecords: int64(table.RowCount()),
		TotalColumns: int64(table.ColumnCount()),
		ProfiledAt:   time.Now().UTC(),
		Columns:      make(map[string]ColumnEntry, table.ColumnCount()),
	}

	type columnResult struct {
		name  string
		entry ColumnEntry
	}

	jobs := make(chan int)
	results := make(chan columnResult)

	workers := s.cfg.MaxConcurrency
	if workers > table.ColumnCount() {
		workers = table.ColumnCount()
	}
	for i := 0; i < workers; i++ {
		go func() {
			for idx := range jobs {
				col := &table.Columns[idx]
				results <- columnResult{name: col.Name, entry: s.profileColumn(name, col, profile.TotalRecords)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range table.Columns {
			jobs <- idx
		}
	}()

	for range table.Columns {
		res := <-results
		profile.Columns[res.name] = res.entry
	}

	return TableEntry{Profile: profile}
}

// profileColumn isolates one column unit: a panic inside statistics
// computation degrades to that column's error marker instead of taking the
// table down.
func (s *Service) profileColumn(table string, col *Column, totalRecords int64) (entry ColumnEntry) {
	defer func() {
		if r := recover(); r != nil {
			err := &ErrColumnProfiling{Table: table, Column: col.Name, Err: fmt.Errorf("%v", r)}
			s.logger.Warn("column profiling failed", zap.String("table", table),
				zap.String("column", col.Name), zap.Error(err))
			entry = ColumnEntry{Err: err}
		}
	}()
	return ColumnEntry{Profile: ProfileColumn(col, totalRecords, s.cfg)}
}
