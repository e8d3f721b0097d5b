package storage

import (
	"sort"
	"strconv"
	"time"

	"costengine/internal/schema"
	"costengine/pkg/records"
)

// BuildInsertRows aligns a record batch to the table's declared column order
// and stamps the write-time timestamp columns. Values for absent fields are
// nil. Shared by all backends.
func BuildInsertRows(t schema.TableDef, recs []records.Record, now time.Time) (columns []string, rows [][]any) {
	columns = t.ColumnNames()
	rows = make([][]any, 0, len(recs))
	for _, rec := range recs {
		row := make([]any, len(columns))
		for i, c := range t.Columns {
			switch c.Name {
			case schema.CreatedAtColumn, schema.LastUpdatedColumn:
				row[i] = now
			default:
				row[i] = rec[c.Name]
			}
		}
		rows = append(rows, row)
	}
	return columns, rows
}

// DecodeValue maps a driver-returned value back onto the record
// representation for the column's declared type.
func DecodeValue(col schema.ColumnDef, v any) any {
	if v == nil {
		return nil
	}
	switch col.Type {
	case schema.TypeNumber:
		switch n := v.(type) {
		case float64:
			return n
		case float32:
			return float64(n)
		case int64:
			return float64(n)
		case []byte:
			if f, err := strconv.ParseFloat(string(n), 64); err == nil {
				return f
			}
			return string(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
			return n
		}
	case schema.TypeInteger:
		switch n := v.(type) {
		case int64:
			return n
		case int:
			return int64(n)
		case float64:
			return int64(n)
		}
	case schema.TypeTimestamp:
		switch ts := v.(type) {
		case time.Time:
			return ts
		case string:
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				return t
			}
			return ts
		}
	case schema.TypeText:
		if b, ok := v.([]byte); ok {
			return string(b)
		}
	}
	return v
}

// FilterColumns returns the filter's column names in deterministic order.
func FilterColumns(f Filter) []string {
	cols := make([]string, 0, len(f.Equals))
	for k := range f.Equals {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
