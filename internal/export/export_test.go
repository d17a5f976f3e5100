package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CharlesDeJager/dprof/internal/profiler"
)

func sampleReport() profiler.Report {
	return profiler.Report{
		"users": profiler.TableEntry{Profile: &profiler.TableProfile{
			TableName:    "users",
			TotalRecords: 2,
			TotalColumns: 1,
			ProfiledAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Columns: map[string]profiler.ColumnEntry{
				"id": {Profile: &profiler.ColumnProfile{
					ColumnName:      "id",
					DataType:        "integer",
					TotalValues:     2,
					QualityScore:    105,
					Completeness:    100,
					Uniqueness:      100,
					PotentialIssues: []string{},
				}},
				"broken": {Err: errors.New("column exploded")},
			},
		}},
		"orders": profiler.TableEntry{Err: errors.New("table not found")},
	}
}

func TestWriteJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).WriteJSON(&buf, sampleReport()))

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	var format, runID string
	require.NoError(t, json.Unmarshal(env["export_format"], &format))
	assert.Equal(t, FormatJSON, format)
	require.NoError(t, json.Unmarshal(env["run_id"], &runID))
	_, err := uuid.Parse(runID)
	assert.NoError(t, err)

	var totalTables int
	require.NoError(t, json.Unmarshal(env["total_tables"], &totalTables))
	assert.Equal(t, 2, totalTables)

	// Failed tables serialize as error markers, not profiles.
	var tables map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env["tables"], &tables))
	assert.JSONEq(t, `{"error": "table not found"}`, string(tables["orders"]))
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).WriteJSON(&buf, sampleReport()))

	report, err := LoadJSON(&buf)
	require.NoError(t, err)
	require.Len(t, report, 2)

	require.Error(t, report["orders"].Err)
	assert.Equal(t, "table not found", report["orders"].Err.Error())

	users := report["users"].Profile
	require.NotNil(t, users)
	assert.Equal(t, int64(2), users.TotalRecords)
	assert.Equal(t, "column exploded", users.Columns["broken"].Err.Error())
	assert.Equal(t, 105.0, users.Columns["id"].Profile.QualityScore)
}

func TestLoadJSONBareReport(t *testing.T) {
	raw := `{"t": {"error": "boom"}}`
	report, err := LoadJSON(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "boom", report["t"].Err.Error())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).WriteCSV(&buf, sampleReport()))
	out := buf.String()

	// StyleDefault upper-cases header cells.
	assert.Contains(t, out, "TABLE,ROWS,COLUMNS,AVG QUALITY,STATUS")
	assert.Contains(t, out, "table not found")
	assert.Contains(t, out, "column exploded")
	assert.Contains(t, out, "integer")
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).WriteHTML(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "<h2>Summary</h2>")
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "table not found")
	assert.Contains(t, out, "</html>")
}

func TestExportUnsupportedFormat(t *testing.T) {
	e := New(nil)
	_, err := e.Export(sampleReport(), "xlsx", t.TempDir()+"/out.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestFilename(t *testing.T) {
	e := New(nil)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 13, 45, 9, 0, time.UTC) }
	assert.Equal(t, "data_profile_20240501_134509.html", e.Filename(FormatHTML))
}

func TestAverageQuality(t *testing.T) {
	p := &profiler.TableProfile{Columns: map[string]profiler.ColumnEntry{
		"a": {Profile: &profiler.ColumnProfile{QualityScore: 90}},
		"b": {Profile: &profiler.ColumnProfile{QualityScore: 70}},
		"c": {Err: errors.New("skip me")},
	}}
	assert.Equal(t, 80.0, averageQuality(p))
	assert.Equal(t, 0.0, averageQuality(&profiler.TableProfile{}))
}
