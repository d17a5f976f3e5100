package profiler

// Kind is the closed set of semantic column types the profiler works with.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindDatetime
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDatetime:
		return "datetime"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// Column is one named, ordered sequence of cell values. A nil cell is NULL.
// Cell values are one of: string, int64, float64, bool, time.Time.
// Native is the kind declared by the column's storage; textual and untyped
// columns carry KindString and go through coercion-based inference instead.
type Column struct {
	Name   string
	Native Kind
	Values []any
}

// NonNull returns the non-null subset of the column's values in order.
func (c *Column) NonNull() []any {
	out := make([]any, 0, len(c.Values))
	for _, v := range c.Values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Table is a fully materialized tabular dataset. All columns share row count.
type Table struct {
	Name    string
	Columns []Column
}

func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

func (t *Table) ColumnCount() int {
	return len(t.Columns)
}
