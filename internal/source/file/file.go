// Package file implements the flat-file data source for CSV and JSON input.
package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/CharlesDeJager/dprof/internal/profiler"
	"github.com/CharlesDeJager/dprof/internal/source"
)

// CSVTableName is the single table a CSV file exposes.
const CSVTableName = "CSV_Data"

// JSONArrayTableName names the table of a JSON file whose top level is a
// bare array rather than an object of named arrays.
const JSONArrayTableName = "JSON_Array"

// Source reads tables from a CSV or JSON file.
type Source struct {
	path   string
	ext    string
	logger *zap.Logger
}

var _ source.Source = (*Source)(nil)
var _ profiler.Fetcher = (*Source)(nil)

func New(path string, logger *zap.Logger) (*Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".json" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot access file %s: %w", path, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{path: path, ext: ext, logger: logger}, nil
}

func (s *Source) Close() error { return nil }

func (s *Source) Tables(ctx context.Context) ([]string, error) {
	if s.ext == ".csv" {
		return []string{CSVTableName}, nil
	}

	root, err := s.decodeJSON()
	if err != nil {
		return nil, err
	}

	switch data := root.(type) {
	case []any:
		return []string{JSONArrayTableName}, nil
	case map[string]any:
		var tables []string
		for key, value := range data {
			if records, ok := value.([]any); ok && len(records) > 0 {
				if _, isObj := records[0].(map[string]any); isObj {
					tables = append(tables, key)
				}
			}
		}
		sort.Strings(tables)
		return tables, nil
	default:
		return nil, fmt.Errorf("file %s holds no tabular data", s.path)
	}
}

func (s *Source) FetchTable(ctx context.Context, name string, rowCap int) (*profiler.Table, error) {
	if s.ext == ".csv" {
		if name != CSVTableName {
			return nil, fmt.Errorf("unknown table %q in CSV file %s", name, s.path)
		}
		return s.fetchCSV(rowCap)
	}
	return s.fetchJSON(name, rowCap)
}

// fetchCSV reads the header row and up to rowCap data rows. Every column is
// textual; an empty cell is a NULL, a whitespace-only cell stays a value.
func (s *Source) fetchCSV(rowCap int) (*profiler.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &profiler.Table{Name: CSVTableName}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	table := &profiler.Table{Name: CSVTableName, Columns: make([]profiler.Column, len(header))}
	for i, h := range header {
		table.Columns[i] = profiler.Column{Name: strings.TrimSpace(h), Native: profiler.KindString}
	}

	rows := 0
	for {
		if rowCap > 0 && rows >= rowCap {
			break
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row %d: %w", rows+1, err)
		}
		for i := range table.Columns {
			var cell any
			if i < len(record) && record[i] != "" {
				cell = record[i]
			}
			table.Columns[i].Values = append(table.Columns[i].Values, cell)
		}
		rows++
	}

	s.logger.Debug("csv table read", zap.String("path", s.path), zap.Int("rows", rows))
	return table, nil
}

func (s *Source) fetchJSON(name string, rowCap int) (*profiler.Table, error) {
	root, err := s.decodeJSON()
	if err != nil {
		return nil, err
	}

	var records []any
	switch data := root.(type) {
	case []any:
		if name != JSONArrayTableName {
			return nil, fmt.Errorf("unknown table %q in JSON file %s", name, s.path)
		}
		records = data
	case map[string]any:
		value, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("unknown table %q in JSON file %s", name, s.path)
		}
		records, ok = value.([]any)
		if !ok {
			return nil, fmt.Errorf("entry %q in JSON file %s is not an array", name, s.path)
		}
	default:
		return nil, fmt.Errorf("file %s holds no tabular data", s.path)
	}

	if rowCap > 0 && len(records) > rowCap {
		records = records[:rowCap]
	}

	return buildJSONTable(name, records)
}

// buildJSONTable assembles columns from an array of objects. Column order is
// the sorted key set of the first record; keys absent from a record are
// NULL. A column whose non-null values are all numbers or all booleans gets
// the matching native kind, everything else stays textual.
func buildJSONTable(name string, records []any) (*profiler.Table, error) {
	table := &profiler.Table{Name: name}
	if len(records) == 0 {
		return table, nil
	}

	first, ok := records[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("table %q does not contain objects", name)
	}
	keys := make([]string, 0, len(first))
	for k := range first {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table.Columns = make([]profiler.Column, len(keys))
	for i, k := range keys {
		table.Columns[i] = profiler.Column{Name: k, Native: profiler.KindString}
	}

	for _, rec := range records {
		obj, _ := rec.(map[string]any)
		for i, k := range keys {
			var cell any
			if obj != nil {
				switch v := obj[k].(type) {
				case nil:
					cell = nil
				case string, float64, bool:
					cell = v
				default:
					raw, _ := json.Marshal(v)
					cell = string(raw)
				}
			}
			table.Columns[i].Values = append(table.Columns[i].Values, cell)
		}
	}

	for i := range table.Columns {
		table.Columns[i].Native = jsonColumnKind(table.Columns[i].Values)
	}
	return table, nil
}

func jsonColumnKind(values []any) profiler.Kind {
	sawFloat, sawBool, sawOther, sawAny := false, false, false, false
	for _, v := range values {
		switch v.(type) {
		case nil:
		case float64:
			sawFloat, sawAny = true, true
		case bool:
			sawBool, sawAny = true, true
		default:
			sawOther, sawAny = true, true
		}
	}
	if !sawAny || sawOther {
		return profiler.KindString
	}
	if sawFloat && !sawBool {
		return profiler.KindFloat
	}
	if sawBool && !sawFloat {
		return profiler.KindBoolean
	}
	return profiler.KindString
}

func (s *Source) decodeJSON() (any, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", s.path, err)
	}
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("error parsing JSON file %s: %w", s.path, err)
	}
	return root, nil
}
