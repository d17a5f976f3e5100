package profiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericStats(t *testing.T) {
	stats := numericStats([]any{int64(1), int64(2), int64(3), int64(4), int64(5)})

	require.NotNil(t, stats.MinValue)
	assert.Equal(t, float64(1), *stats.MinValue)
	assert.Equal(t, float64(5), *stats.MaxValue)
	assert.Equal(t, float64(3), *stats.Average)
	assert.Equal(t, float64(3), *stats.Median)
	assert.Equal(t, float64(2), *stats.Quartile25)
	assert.Equal(t, float64(4), *stats.Quartile75)
	// Population standard deviation of 1..5 is sqrt(2), rounded to 6 decimals.
	assert.Equal(t, round6(math.Sqrt2), *stats.StandardDeviation)
	assert.Equal(t, int64(0), stats.ZeroCount)
	assert.Equal(t, int64(0), stats.NegativeCount)
	assert.Equal(t, int64(5), stats.PositiveCount)
}

func TestNumericStatsSignBuckets(t *testing.T) {
	stats := numericStats([]any{int64(-2), int64(0), int64(0), float64(3.5)})

	assert.Equal(t, int64(2), stats.ZeroCount)
	assert.Equal(t, int64(1), stats.NegativeCount)
	assert.Equal(t, int64(1), stats.PositiveCount)
}

func TestNumericStatsDropsNonCoercible(t *testing.T) {
	stats := numericStats([]any{"10", "oops", "20"})

	require.NotNil(t, stats.Average)
	assert.Equal(t, float64(15), *stats.Average)
	assert.Equal(t, int64(2), stats.PositiveCount)
}

func TestNumericStatsNoSurvivors(t *testing.T) {
	stats := numericStats([]any{"a", "b"})

	assert.Nil(t, stats.MinValue)
	assert.Nil(t, stats.MaxValue)
	assert.Nil(t, stats.Average)
	assert.Nil(t, stats.StandardDeviation)
}

func TestTopValues(t *testing.T) {
	ranked := topValues([]string{"b", "a", "a", "c", "b"}, 10)

	require.Len(t, ranked, 3)
	// Frequency ties break lexicographically.
	assert.Equal(t, ValueCount{Value: "a", Count: 2, Percentage: 40}, ranked[0])
	assert.Equal(t, ValueCount{Value: "b", Count: 2, Percentage: 40}, ranked[1])
	assert.Equal(t, ValueCount{Value: "c", Count: 1, Percentage: 20}, ranked[2])
}

func TestTopValuesLimit(t *testing.T) {
	ranked := topValues([]string{"a", "b", "c", "d"}, 2)
	assert.Len(t, ranked, 2)
}

func TestStringStatsLengths(t *testing.T) {
	stats := stringStats([]any{"a", "bbb", "cc"}, DefaultConfig)

	assert.Equal(t, 2.0, stats.AvgLength)
	assert.Equal(t, int64(1), stats.MinLength)
	assert.Equal(t, int64(3), stats.MaxLength)
	assert.Len(t, stats.MostCommonValues, 3)
	assert.Len(t, stats.Patterns, 3)
}

func TestStringStatsLengthIsRuneBased(t *testing.T) {
	stats := stringStats([]any{"héllo"}, DefaultConfig)
	assert.Equal(t, int64(5), stats.MinLength)
	assert.Equal(t, int64(5), stats.MaxLength)
}

func TestDatetimeStats(t *testing.T) {
	stats := datetimeStats([]any{
		"2024-01-11",
		"2024-01-01",
		"2024-01-01",
	}, DefaultConfig)

	require.NotNil(t, stats.MinDate)
	assert.Equal(t, "2024-01-01T00:00:00Z", *stats.MinDate)
	assert.Equal(t, "2024-01-11T00:00:00Z", *stats.MaxDate)
	require.NotNil(t, stats.DateRangeDays)
	assert.Equal(t, int64(10), *stats.DateRangeDays)
	// Most frequent first, then chronological.
	require.Len(t, stats.MostCommonDates, 2)
	assert.Equal(t, "2024-01-01T00:00:00Z", stats.MostCommonDates[0])
}

func TestDatetimeStatsRangeBeyondDurationLimit(t *testing.T) {
	// A millennium is far past time.Duration's ~292-year ceiling. The
	// proleptic Gregorian span 1000-01-01..2000-01-01 is 365242 days.
	stats := datetimeStats([]any{"1000-01-01", "2000-01-01"}, DefaultConfig)

	require.NotNil(t, stats.DateRangeDays)
	assert.Equal(t, int64(365242), *stats.DateRangeDays)
}

func TestDatetimeStatsNoSurvivors(t *testing.T) {
	stats := datetimeStats([]any{"nope"}, DefaultConfig)
	assert.Nil(t, stats.MinDate)
	assert.Nil(t, stats.DateRangeDays)
	assert.Empty(t, stats.MostCommonDates)
}

func TestBooleanStats(t *testing.T) {
	stats := booleanStats([]any{true, true, false})

	assert.Equal(t, int64(2), stats.TrueCount)
	assert.Equal(t, int64(1), stats.FalseCount)
	assert.Equal(t, 66.67, stats.TruePercentage)
	assert.Equal(t, 33.33, stats.FalsePercentage)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 2.5, quantile(sorted, 0.5))
	assert.Equal(t, 1.75, quantile(sorted, 0.25))
	assert.Equal(t, 4.0, quantile(sorted, 1))
	assert.Equal(t, 7.0, quantile([]float64{7}, 0.5))
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 0.0, percentOf(5, 0))
	assert.Equal(t, 33.33, percentOf(1, 3))
	assert.Equal(t, 100.0, percentOf(3, 3))
}
