// Package ingest maps heterogeneous spreadsheet exports onto canonical
// records. Two historical upload formats fed the same tables with different
// column sets and different validation; this package reconciles them into one
// contract: every payload is alias-mapped, required fields are always
// validated, numeric fields are always coerced, and failure rejects the whole
// batch.
package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"costengine/pkg/records"
)

// Payload is a parsed tabular upload: one header row plus zero or more data
// rows. The normalizer does not care whether it came from delimited text or
// a workbook sheet.
type Payload struct {
	Header []string
	Rows   [][]string
}

// ErrEmptyInput rejects a payload with zero data rows.
var ErrEmptyInput = errors.New("ingest: payload has no data rows")

// ValidationError rejects a payload whose column set or cell values cannot
// satisfy the kind's contract. Missing names every absent required field.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "ingest: missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return "ingest: " + e.Reason
}

// Normalize turns a raw payload into a canonical record batch for the given
// kind. Missing cells become explicit empty values: "" for text fields, nil
// for numeric ones. The batch is all-or-nothing; any failure returns no
// records.
func Normalize(kind Kind, p Payload) ([]records.Record, error) {
	if len(p.Rows) == 0 {
		return nil, ErrEmptyInput
	}

	fields := make([]string, len(p.Header))
	seen := make(map[string]bool, len(p.Header))
	for i, h := range p.Header {
		fields[i] = canonicalField(kind, h)
		seen[fields[i]] = true
	}

	var missing []string
	for _, f := range required[kind] {
		if !seen[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &ValidationError{Missing: missing}
	}

	numericSet := make(map[string]bool, len(numeric[kind]))
	for _, f := range numeric[kind] {
		numericSet[f] = true
	}

	out := make([]records.Record, 0, len(p.Rows))
	for n, row := range p.Rows {
		rec := make(records.Record, len(fields))
		for i, f := range fields {
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if numericSet[f] {
				if cell == "" {
					rec[f] = nil
					continue
				}
				v, err := parseNumber(cell)
				if err != nil {
					return nil, &ValidationError{Reason: fmt.Sprintf(
						"row %d: field %s: %q is not numeric", n+1, f, cell)}
				}
				rec[f] = v
				continue
			}
			rec[f] = cell
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseNumber accepts plain floats plus the thousands-separated form common
// in POS exports ("1,234.50"). Separators must split the integer part into
// a leading group of one to three digits followed by groups of exactly
// three; anything else ("1,2,3", "12,34") is rejected rather than silently
// collapsed into a different number.
func parseNumber(s string) (float64, error) {
	if strings.Contains(s, ",") {
		intPart, frac, hasFrac := strings.Cut(s, ".")
		groups := strings.Split(intPart, ",")
		head := strings.TrimPrefix(strings.TrimPrefix(groups[0], "-"), "+")
		ok := len(head) >= 1 && len(head) <= 3
		for _, g := range groups[1:] {
			if len(g) != 3 {
				ok = false
			}
		}
		if !ok {
			return 0, fmt.Errorf("misplaced thousands separator in %q", s)
		}
		s = strings.Join(groups, "")
		if hasFrac {
			s += "." + frac
		}
	}
	return strconv.ParseFloat(s, 64)
}
