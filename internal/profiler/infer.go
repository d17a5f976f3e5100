package profiler

// InferKind classifies a column's dominant semantic type.
//
// Columns with a typed storage declaration keep that kind. Textual columns
// are classified by coercion trials over every non-null value: if the whole
// column parses as numbers it is float (numeric text is not split into
// integer vs float), else if the whole column parses as timestamps it is
// datetime, else string. A single unparsable value forces the next trial.
// Empty and all-null columns default to string.
func InferKind(col *Column) Kind {
	if col.Native != KindString {
		return col.Native
	}

	values := col.NonNull()
	if len(values) == 0 {
		return KindString
	}

	allFloat := true
	for _, v := range values {
		if _, ok := toFloat(v); !ok {
			allFloat = false
			break
		}
	}
	if allFloat {
		return KindFloat
	}

	allTime := true
	for _, v := range values {
		if _, ok := toTime(v); !ok {
			allTime = false
			break
		}
	}
	if allTime {
		return KindDatetime
	}

	return KindString
}
