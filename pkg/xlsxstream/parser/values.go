package parser

import (
	"strconv"
	"time"
)

// Row holds the cell values of one worksheet row indexed by zero-based
// column. A value is a string, a float64 for General numbers, or a
// time.Time when dates are rendered as times.
type Row []interface{}

// Strings returns the text of every cell.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = CellText(v)
	}
	return out
}

// Empty reports whether every cell is blank.
func (r Row) Empty() bool {
	for _, v := range r {
		if s, ok := v.(string); !ok || s != "" {
			return false
		}
	}
	return true
}

// CellText renders a cell value as text.
func CellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.DateTime)
	}
	return ""
}
