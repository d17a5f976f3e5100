// Package database implements the SQL-backed data source. Dialect-specific
// behavior lives in handler implementations registered at init time by the
// postgres, mysql, and sqlserver subpackages.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CharlesDeJager/dprof/internal/config"
	"github.com/CharlesDeJager/dprof/internal/profiler"
	"github.com/CharlesDeJager/dprof/internal/source"
)

// DialectHandler covers the dialect-specific pieces of table fetching.
type DialectHandler interface {
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) string
	ListTables(db *DB) ([]string, error)
	// SelectRowsSQL builds the row-fetch statement; rowCap <= 0 means no cap.
	SelectRowsSQL(quotedTable string, rowCap int) string
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

// DB holds the connection pool and dialect handler for one database.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig

	logger *zap.Logger
}

var _ source.Source = (*DB)(nil)
var _ profiler.Fetcher = (*DB)(nil)

func New(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	if err := pool.PingContext(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return &DB{Pool: pool, Handler: handler, Config: cfg, logger: logger}, nil
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	return nil
}

func (db *DB) Tables(ctx context.Context) ([]string, error) {
	return db.Handler.ListTables(db)
}

// FetchTable materializes one table into the profiler's in-memory model.
// Driver type names map onto native kinds; anything unrecognized degrades to
// a textual column and is left to coercion-based inference.
func (db *DB) FetchTable(ctx context.Context, name string, rowCap int) (*profiler.Table, error) {
	query := db.Handler.SelectRowsSQL(db.Handler.QuoteIdentifier(name), rowCap)

	rows, err := db.Pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error reading table %s: %w", name, err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("error reading column types for table %s: %w", name, err)
	}

	table := &profiler.Table{Name: name, Columns: make([]profiler.Column, len(colTypes))}
	for i, ct := range colTypes {
		table.Columns[i] = profiler.Column{
			Name:   ct.Name(),
			Native: kindForTypeName(ct.DatabaseTypeName()),
		}
	}

	scanDest := make([]any, len(colTypes))
	for rows.Next() {
		raw := make([]any, len(colTypes))
		for i := range raw {
			scanDest[i] = &raw[i]
		}
		if err := rows.Scan(scanDest...); err != nil {
			return nil, fmt.Errorf("error scanning row of table %s: %w", name, err)
		}
		for i, v := range raw {
			table.Columns[i].Values = append(table.Columns[i].Values, normalizeValue(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of table %s: %w", name, err)
	}

	db.logger.Debug("table fetched",
		zap.String("table", name),
		zap.Int("rows", table.RowCount()),
		zap.Int("columns", table.ColumnCount()))
	return table, nil
}

// kindForTypeName maps a driver-reported column type name onto the
// profiler's closed kind set.
func kindForTypeName(typeName string) profiler.Kind {
	switch strings.ToUpper(typeName) {
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT", "SERIAL", "BIGSERIAL":
		return profiler.KindInteger
	case "FLOAT", "FLOAT4", "FLOAT8", "REAL", "DOUBLE", "DOUBLE PRECISION", "NUMERIC", "DECIMAL", "MONEY":
		return profiler.KindFloat
	case "BOOL", "BOOLEAN", "BIT":
		return profiler.KindBoolean
	case "DATE", "TIME", "DATETIME", "DATETIME2", "SMALLDATETIME", "TIMESTAMP", "TIMESTAMPTZ",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE":
		return profiler.KindDatetime
	default:
		return profiler.KindString
	}
}

// normalizeValue reduces driver scan results to the profiler's cell types:
// nil, string, int64, float64, bool, or time.Time.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case string, int64, float64, bool, time.Time:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint64:
		// Values past MaxInt64 would flip sign; degrade to text instead.
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return fmt.Sprint(x)
	}
}
