package profiler

import (
	"math"
	"sort"
	"time"
)

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round6(x float64) float64 { return math.Round(x*1e6) / 1e6 }

// percentOf is count/total*100 rounded to 2 decimals, 0 for an empty total.
func percentOf(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(count) / float64(total) * 100)
}

func ptr[T any](v T) *T { return &v }

// quantile computes the q-th quantile of sorted values using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// numericStats computes statistics over the non-null values of an integer or
// float column. Values that do not survive numeric coercion are dropped
// rather than failing the column; with no survivors every field stays null.
func numericStats(values []any) *NumericStats {
	stats := &NumericStats{}

	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return stats
	}

	var sum float64
	for _, f := range nums {
		sum += f
		switch {
		case f == 0:
			stats.ZeroCount++
		case f < 0:
			stats.NegativeCount++
		default:
			stats.PositiveCount++
		}
	}
	mean := sum / float64(len(nums))

	var sqDiff float64
	for _, f := range nums {
		d := f - mean
		sqDiff += d * d
	}
	// Population standard deviation: the divisor is n, not n-1.
	stdDev := math.Sqrt(sqDiff / float64(len(nums)))

	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	stats.MinValue = ptr(sorted[0])
	stats.MaxValue = ptr(sorted[len(sorted)-1])
	stats.Average = ptr(round6(mean))
	stats.Median = ptr(quantile(sorted, 0.5))
	stats.StandardDeviation = ptr(round6(stdDev))
	stats.Quartile25 = ptr(quantile(sorted, 0.25))
	stats.Quartile75 = ptr(quantile(sorted, 0.75))
	return stats
}

// stringStats computes length statistics, the top most frequent values, and
// structural patterns over the string renderings of non-null values.
func stringStats(values []any, cfg Config) *StringStats {
	stats := &StringStats{
		MostCommonValues: []ValueCount{},
		Patterns:         []Pattern{},
	}
	if len(values) == 0 {
		return stats
	}

	rendered := make([]string, len(values))
	var totalLen int64
	minLen, maxLen := int64(math.MaxInt64), int64(0)
	for i, v := range values {
		s := asString(v)
		rendered[i] = s
		l := int64(len([]rune(s)))
		totalLen += l
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
	}

	stats.AvgLength = round2(float64(totalLen) / float64(len(rendered)))
	stats.MinLength = minLen
	stats.MaxLength = maxLen
	stats.MostCommonValues = topValues(rendered, cfg.TopValues)
	stats.Patterns = MinePatterns(rendered, cfg.PatternSampleSize, cfg.MaxPatterns)
	return stats
}

// topValues ranks values by frequency, ties broken lexicographically for
// deterministic output. Percentages are relative to the full value set.
func topValues(values []string, limit int) []ValueCount {
	counts := make(map[string]int64, len(values))
	for _, s := range values {
		counts[s]++
	}

	ranked := make([]ValueCount, 0, len(counts))
	for s, c := range counts {
		ranked = append(ranked, ValueCount{
			Value:      s,
			Count:      c,
			Percentage: percentOf(c, int64(len(values))),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// datetimeStats computes the observed time range and the most frequent
// timestamps. Malformed values are dropped defensively.
func datetimeStats(values []any, cfg Config) *DatetimeStats {
	stats := &DatetimeStats{MostCommonDates: []string{}}

	times := make([]time.Time, 0, len(values))
	for _, v := range values {
		if t, ok := toTime(v); ok {
			times = append(times, t)
		}
	}
	if len(times) == 0 {
		return stats
	}

	minT, maxT := times[0], times[0]
	counts := make(map[time.Time]int64, len(times))
	for _, t := range times {
		if t.Before(minT) {
			minT = t
		}
		if t.After(maxT) {
			maxT = t
		}
		counts[t]++
	}

	type dateCount struct {
		t time.Time
		n int64
	}
	ranked := make([]dateCount, 0, len(counts))
	for t, n := range counts {
		ranked = append(ranked, dateCount{t, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].t.Before(ranked[j].t)
	})
	if len(ranked) > cfg.TopDates {
		ranked = ranked[:cfg.TopDates]
	}
	for _, dc := range ranked {
		stats.MostCommonDates = append(stats.MostCommonDates, dc.t.Format(time.RFC3339))
	}

	stats.MinDate = ptr(minT.Format(time.RFC3339))
	stats.MaxDate = ptr(maxT.Format(time.RFC3339))
	// Unix-second arithmetic: a time.Duration difference saturates at
	// roughly 292 years, which real-world sentinel dates exceed.
	stats.DateRangeDays = ptr((maxT.Unix() - minT.Unix()) / 86400)
	return stats
}

// booleanStats counts true/false over the values that survive best-effort
// boolean coercion. Coercion failure yields zero counts, not an error.
// Percentages are relative to the non-null subset size.
func booleanStats(values []any) *BooleanStats {
	stats := &BooleanStats{}
	for _, v := range values {
		if b, ok := toBool(v); ok {
			if b {
				stats.TrueCount++
			} else {
				stats.FalseCount++
			}
		}
	}
	n := int64(len(values))
	stats.TruePercentage = percentOf(stats.TrueCount, n)
	stats.FalsePercentage = percentOf(stats.FalseCount, n)
	return stats
}
