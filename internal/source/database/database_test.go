package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CharlesDeJager/dprof/internal/config"
	"github.com/CharlesDeJager/dprof/internal/profiler"
)

// stubHandler is a minimal DialectHandler for exercising DB against sqlmock.
type stubHandler struct {
	listTablesFn func(db *DB) ([]string, error)
}

func (h stubHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	mockDb, _, _ := sqlmock.New()
	return mockDb, nil
}

func (h stubHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	mockDb, _, _ := sqlmock.New()
	return mockDb, nil
}

func (h stubHandler) QuoteIdentifier(name string) string { return fmt.Sprintf(`"%s"`, name) }

func (h stubHandler) ListTables(db *DB) ([]string, error) {
	if h.listTablesFn != nil {
		return h.listTablesFn(db)
	}
	return []string{"table1"}, nil
}

func (h stubHandler) SelectRowsSQL(quotedTable string, rowCap int) string {
	if rowCap > 0 {
		return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, rowCap)
	}
	return fmt.Sprintf("SELECT * FROM %s", quotedTable)
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return &DB{Pool: pool, Handler: stubHandler{}, logger: zap.NewNop()}, mock
}

func TestDialectHandlerRegistry(t *testing.T) {
	RegisterDialectHandler("stub-test", stubHandler{})
	handler, err := GetDialectHandler("stub-test")
	require.NoError(t, err)
	assert.NotNil(t, handler)

	_, err = GetDialectHandler("no-such-dialect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database dialect")
}

func TestNewRejectsUnknownDialect(t *testing.T) {
	_, err := New(config.DatabaseConfig{Dialect: "oracle"}, nil)
	require.Error(t, err)
}

func TestTables(t *testing.T) {
	db, _ := newMockDB(t)
	db.Handler = stubHandler{listTablesFn: func(db *DB) ([]string, error) {
		return []string{"orders", "users"}, nil
	}}

	tables, err := db.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)
}

func TestFetchTable(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("INT8", int64(0)),
		sqlmock.NewColumn("name").OfType("VARCHAR", ""),
		sqlmock.NewColumn("created").OfType("TIMESTAMP", time.Time{}),
	).
		AddRow(int64(1), []byte("alice"), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).
		AddRow(nil, "bob", nil)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(rows)

	table, err := db.FetchTable(context.Background(), "users", 0)
	require.NoError(t, err)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, 2, table.RowCount())

	id := table.Columns[0]
	assert.Equal(t, profiler.KindInteger, id.Native)
	assert.Equal(t, []any{int64(1), nil}, id.Values)

	name := table.Columns[1]
	assert.Equal(t, profiler.KindString, name.Native)
	// []byte scan results are normalized to strings.
	assert.Equal(t, []any{"alice", "bob"}, name.Values)

	created := table.Columns[2]
	assert.Equal(t, profiler.KindDatetime, created.Native)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchTableAppliesRowCap(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("INT4", int32(0)),
	).AddRow(int32(7))

	mock.ExpectQuery(`SELECT \* FROM "events" LIMIT 5`).WillReturnRows(rows)

	table, err := db.FetchTable(context.Background(), "events", 5)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7)}, table.Columns[0].Values)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchTableQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "missing"`).WillReturnError(sql.ErrConnDone)

	_, err := db.FetchTable(context.Background(), "missing", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestKindForTypeName(t *testing.T) {
	tests := []struct {
		typeName string
		want     profiler.Kind
	}{
		{"INT8", profiler.KindInteger},
		{"bigint", profiler.KindInteger},
		{"SERIAL", profiler.KindInteger},
		{"NUMERIC", profiler.KindFloat},
		{"DOUBLE PRECISION", profiler.KindFloat},
		{"BOOL", profiler.KindBoolean},
		{"TIMESTAMPTZ", profiler.KindDatetime},
		{"DATETIME2", profiler.KindDatetime},
		{"VARCHAR", profiler.KindString},
		{"JSONB", profiler.KindString},
		{"", profiler.KindString},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			if got := kindForTypeName(tt.typeName); got != tt.want {
				t.Errorf("kindForTypeName(%q) = %v, want %v", tt.typeName, got, tt.want)
			}
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	ts := time.Now()
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bytes to string", []byte("x"), "x"},
		{"int to int64", int(3), int64(3)},
		{"int32 to int64", int32(3), int64(3)},
		{"uint64 to int64", uint64(3), int64(3)},
		{"uint64 at the int64 boundary", uint64(math.MaxInt64), int64(math.MaxInt64)},
		{"uint64 past int64 degrades to string", uint64(math.MaxUint64), "18446744073709551615"},
		{"float32 to float64", float32(1.5), float64(1.5)},
		{"time passthrough", ts, ts},
		{"bool passthrough", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}
