// Package records defines the generic record type passed between the
// normalizer, the metric calculator, the store, and the reporting engine.
// A Record is a flat map of canonical field name to value; values are
// strings, float64s, ints, time.Times, or nil for an explicitly empty cell.
package records

import (
	"fmt"
	"strconv"
	"time"
)

// Record is one logical row keyed by canonical field names.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the field carries a value (present, non-nil, and not
// an empty string).
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	s, isStr := v.(string)
	return !isStr || s != ""
}

// Float returns the field as a float64. The second return is false when the
// field is absent, empty, or not numeric.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if n == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String renders the field as a string. Absent or nil fields render as "".
func (r Record) String(key string) string {
	return Render(r[key])
}

// Render renders a single value the way Record.String does, so predicate
// values and stored values compare on equal footing.
func Render(v any) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", s)
	}
}
