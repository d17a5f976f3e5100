package profiler

import "strings"

// ProfileColumn computes the full profile of one column. totalValues is the
// table's row count; null and blank counts use the full column while the
// type-specific statistics use only the non-null subset.
func ProfileColumn(col *Column, totalValues int64, cfg Config) *ColumnProfile {
	kind := InferKind(col)

	profile := &ColumnProfile{
		ColumnName:  col.Name,
		DataType:    kind.String(),
		TotalValues: totalValues,
	}

	nonNull := col.NonNull()
	profile.NonNullCount = int64(len(nonNull))
	profile.NullCount = totalValues - profile.NonNullCount
	profile.NullPercentage = percentOf(profile.NullCount, totalValues)

	// Blank counting applies to textual storage only; typed columns have no
	// notion of a whitespace-only value.
	if col.Native == KindString {
		for _, v := range nonNull {
			if strings.TrimSpace(asString(v)) == "" {
				profile.BlankCount++
			}
		}
	}
	profile.BlankPercentage = percentOf(profile.BlankCount, totalValues)

	distinct := make(map[string]struct{}, len(nonNull))
	for _, v := range nonNull {
		distinct[asString(v)] = struct{}{}
	}
	profile.DistinctCount = int64(len(distinct))
	profile.DistinctPercentage = percentOf(profile.DistinctCount, totalValues)

	switch kind {
	case KindInteger, KindFloat:
		profile.Numeric = numericStats(nonNull)
	case KindDatetime:
		profile.Datetime = datetimeStats(nonNull, cfg)
	case KindBoolean:
		profile.Boolean = booleanStats(nonNull)
	default:
		profile.String = stringStats(nonNull, cfg)
	}

	scoreQuality(profile)
	return profile
}
