package profiler

import (
	"encoding/json"
	"errors"
	"time"
)

// ColumnProfile is the report unit for one column.
type ColumnProfile struct {
	ColumnName         string   `json:"column_name"`
	DataType           string   `json:"data_type"`
	TotalValues        int64    `json:"total_values"`
	NullCount          int64    `json:"null_count"`
	NullPercentage     float64  `json:"null_percentage"`
	BlankCount         int64    `json:"blank_count"`
	BlankPercentage    float64  `json:"blank_percentage"`
	NonNullCount       int64    `json:"non_null_count"`
	DistinctCount      int64    `json:"distinct_count"`
	DistinctPercentage float64  `json:"distinct_percentage"`
	Numeric            *NumericStats  `json:"numeric_stats,omitempty"`
	String             *StringStats   `json:"string_stats,omitempty"`
	Datetime           *DatetimeStats `json:"datetime_stats,omitempty"`
	Boolean            *BooleanStats  `json:"boolean_stats,omitempty"`
	QualityScore       float64  `json:"quality_score"`
	Completeness       float64  `json:"completeness_percentage"`
	Uniqueness         float64  `json:"uniqueness_percentage"`
	PotentialIssues    []string `json:"potential_issues"`
}

// NumericStats covers integer and float columns. Pointer fields are null
// when no value in the column survived numeric coercion.
type NumericStats struct {
	MinValue          *float64 `json:"min_value"`
	MaxValue          *float64 `json:"max_value"`
	Average           *float64 `json:"average"`
	Median            *float64 `json:"median"`
	StandardDeviation *float64 `json:"standard_deviation"`
	Quartile25        *float64 `json:"quartile_25"`
	Quartile75        *float64 `json:"quartile_75"`
	ZeroCount         int64    `json:"zero_count"`
	NegativeCount     int64    `json:"negative_count"`
	PositiveCount     int64    `json:"positive_count"`
}

type StringStats struct {
	AvgLength        float64      `json:"avg_length"`
	MinLength        int64        `json:"min_length"`
	MaxLength        int64        `json:"max_length"`
	MostCommonValues []ValueCount `json:"most_common_values"`
	Patterns         []Pattern    `json:"patterns"`
}

type DatetimeStats struct {
	MinDate         *string  `json:"min_date"`
	MaxDate         *string  `json:"max_date"`
	DateRangeDays   *int64   `json:"date_range_days"`
	MostCommonDates []string `json:"most_common_dates"`
}

type BooleanStats struct {
	TrueCount       int64   `json:"true_count"`
	FalseCount      int64   `json:"false_count"`
	TruePercentage  float64 `json:"true_percentage"`
	FalsePercentage float64 `json:"false_percentage"`
}

// ValueCount is one entry of a most-frequent-values ranking.
type ValueCount struct {
	Value      string  `json:"value"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Pattern is a structural signature of string values: digits replaced by
// '9', letters by 'A', punctuation and whitespace kept verbatim.
type Pattern struct {
	Pattern    string   `json:"pattern"`
	Count      int64    `json:"count"`
	Percentage float64  `json:"percentage"`
	Examples   []string `json:"examples"`
}

// TableProfile is the per-table report with one entry per source column.
type TableProfile struct {
	TableName    string                 `json:"table_name"`
	TotalRecords int64                  `json:"total_records"`
	TotalColumns int64                  `json:"total_columns"`
	ProfiledAt   time.Time              `json:"profiled_at"`
	Columns      map[string]ColumnEntry `json:"columns"`
}

// ColumnEntry holds either a profile or an error marker, never both.
type ColumnEntry struct {
	Profile *ColumnProfile
	Err     error
}

// TableEntry holds either a table profile or an error marker, never both.
type TableEntry struct {
	Profile *TableProfile
	Err     error
}

// Report maps table name to its outcome. Iteration order is undefined;
// callers wanting stable output sort the keys.
type Report map[string]TableEntry

type errorMarker struct {
	Error string `json:"error"`
}

func (e ColumnEntry) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		return json.Marshal(errorMarker{Error: e.Err.Error()})
	}
	return json.Marshal(e.Profile)
}

func (e *ColumnEntry) UnmarshalJSON(data []byte) error {
	var marker errorMarker
	if err := json.Unmarshal(data, &marker); err == nil && marker.Error != "" {
		e.Err = errors.New(marker.Error)
		return nil
	}
	e.Profile = new(ColumnProfile)
	return json.Unmarshal(data, e.Profile)
}

func (e TableEntry) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		return json.Marshal(errorMarker{Error: e.Err.Error()})
	}
	return json.Marshal(e.Profile)
}

func (e *TableEntry) UnmarshalJSON(data []byte) error {
	var marker errorMarker
	if err := json.Unmarshal(data, &marker); err == nil && marker.Error != "" {
		e.Err = errors.New(marker.Error)
		return nil
	}
	e.Profile = new(TableProfile)
	return json.Unmarshal(data, e.Profile)
}
