// Package report computes group-by summaries over record batches for the
// reporting surface. All reducers are associative and commutative, and every
// function sorts its output by group key, so results are identical for a
// fixed input multiset regardless of evaluation order.
package report

import (
	"fmt"
	"sort"
	"strings"

	"costengine/pkg/records"
)

// Reducer is an aggregate function applied to one field within a group.
type Reducer string

const (
	Sum     Reducer = "sum"
	Mean    Reducer = "mean"
	Count   Reducer = "count"
	NUnique Reducer = "nunique"
)

// ParseReducer maps a string onto a Reducer.
func ParseReducer(s string) (Reducer, error) {
	switch Reducer(strings.ToLower(strings.TrimSpace(s))) {
	case Sum:
		return Sum, nil
	case Mean:
		return Mean, nil
	case Count:
		return Count, nil
	case NUnique:
		return NUnique, nil
	default:
		return "", fmt.Errorf("report: unknown reducer %q", s)
	}
}

// Metric pairs a field with the reducer applied to it.
type Metric struct {
	Field   string
	Reducer Reducer
}

// Name is the output column for the metric, e.g. "value_sum".
func (m Metric) Name() string { return m.Field + "_" + string(m.Reducer) }

// Row is one output group: the group-key values (aligned with the group-by
// fields) plus one computed value per requested metric.
type Row struct {
	Key    []string
	Values map[string]float64
}

// accumulator carries the running state for one metric within one group.
type accumulator struct {
	sum      float64
	numeric  int
	present  int
	distinct map[string]struct{}
}

func (a *accumulator) observe(rec records.Record, field string) {
	if !rec.Has(field) {
		return
	}
	a.present++
	if v, ok := rec.Float(field); ok {
		a.sum += v
		a.numeric++
	}
	if a.distinct == nil {
		a.distinct = make(map[string]struct{})
	}
	a.distinct[rec.String(field)] = struct{}{}
}

func (a *accumulator) value(r Reducer) float64 {
	switch r {
	case Sum:
		return a.sum
	case Mean:
		if a.numeric == 0 {
			return 0
		}
		return a.sum / float64(a.numeric)
	case Count:
		return float64(a.present)
	case NUnique:
		return float64(len(a.distinct))
	default:
		return 0
	}
}

// Summarize produces one row per distinct group key with the requested
// metrics. Multiple rows sharing a key (e.g. re-ingested recipes under the
// append policy) are aggregated together; sums intentionally count every
// row.
func Summarize(recs []records.Record, groupBy []string, metrics []Metric) []Row {
	type group struct {
		key  []string
		accs []*accumulator
	}
	groups := make(map[string]*group)

	for _, rec := range recs {
		key := make([]string, len(groupBy))
		for i, f := range groupBy {
			key[i] = rec.String(f)
		}
		id := strings.Join(key, "\x1f")
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, accs: make([]*accumulator, len(metrics))}
			for i := range g.accs {
				g.accs[i] = &accumulator{}
			}
			groups[id] = g
		}
		for i, m := range metrics {
			g.accs[i].observe(rec, m.Field)
		}
	}

	out := make([]Row, 0, len(groups))
	for _, g := range groups {
		row := Row{Key: g.key, Values: make(map[string]float64, len(metrics))}
		for i, m := range metrics {
			row.Values[m.Name()] = g.accs[i].value(m.Reducer)
		}
		out = append(out, row)
	}
	sortByKey(out)
	return out
}

// FilterThenSummarize narrows the record set to those matching every
// equality predicate, then summarizes. Zero matching records yield an empty
// group set, not an error.
func FilterThenSummarize(recs []records.Record, predicates map[string]any, groupBy []string, metrics []Metric) []Row {
	if len(predicates) == 0 {
		return Summarize(recs, groupBy, metrics)
	}
	var kept []records.Record
	for _, rec := range recs {
		match := true
		for f, want := range predicates {
			if rec.String(f) != records.Render(want) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, rec)
		}
	}
	return Summarize(kept, groupBy, metrics)
}

// TopN returns the n groups with the highest value for the metric, ties
// broken by group key ascending for reproducibility.
func TopN(recs []records.Record, groupBy []string, metric Metric, n int) []Row {
	rows := Summarize(recs, groupBy, []Metric{metric})
	name := metric.Name()
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := rows[i].Values[name], rows[j].Values[name]
		if vi != vj {
			return vi > vj
		}
		return lessKey(rows[i].Key, rows[j].Key)
	})
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

func sortByKey(rows []Row) {
	sort.Slice(rows, func(i, j int) bool { return lessKey(rows[i].Key, rows[j].Key) })
}

func lessKey(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
