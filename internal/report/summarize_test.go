package report

import (
	"reflect"
	"testing"

	"costengine/pkg/records"
)

func salesFixture() []records.Record {
	return []records.Record{
		{"item_group": "Beverages", "item_code": "B-01", "value": 100.0},
		{"item_group": "Beverages", "item_code": "B-02", "value": 200.0},
		{"item_group": "Beverages", "item_code": "B-01", "value": 300.0},
		{"item_group": "Food", "item_code": "F-01", "value": 50.0},
	}
}

/*
TestSummarize verifies sum, mean, count, and nunique over a grouped fixture,
and that output rows come back sorted by group key.
*/
func TestSummarize(t *testing.T) {
	rows := Summarize(salesFixture(), []string{"item_group"}, []Metric{
		{Field: "value", Reducer: Sum},
		{Field: "value", Reducer: Mean},
		{Field: "value", Reducer: Count},
		{Field: "item_code", Reducer: NUnique},
	})
	want := []Row{
		{Key: []string{"Beverages"}, Values: map[string]float64{
			"value_sum": 600, "value_mean": 200, "value_count": 3, "item_code_nunique": 2,
		}},
		{Key: []string{"Food"}, Values: map[string]float64{
			"value_sum": 50, "value_mean": 50, "value_count": 1, "item_code_nunique": 1,
		}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %#v, want %#v", rows, want)
	}
}

/*
TestSummarize_SkipsEmptyValues verifies that nil and empty-string fields are
excluded from count and mean rather than observed as zeros.
*/
func TestSummarize_SkipsEmptyValues(t *testing.T) {
	recs := []records.Record{
		{"item_group": "Beverages", "value": 100.0},
		{"item_group": "Beverages", "value": nil},
		{"item_group": "Beverages", "value": ""},
	}
	rows := Summarize(recs, []string{"item_group"}, []Metric{
		{Field: "value", Reducer: Count},
		{Field: "value", Reducer: Mean},
	})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if got := rows[0].Values["value_count"]; got != 1 {
		t.Errorf("value_count = %v, want 1", got)
	}
	if got := rows[0].Values["value_mean"]; got != 100 {
		t.Errorf("value_mean = %v, want 100", got)
	}
}

/*
TestSummarize_Empty verifies that an empty record set yields an empty group
set, not an error or a nil-keyed row.
*/
func TestSummarize_Empty(t *testing.T) {
	rows := Summarize(nil, []string{"item_group"}, []Metric{{Field: "value", Reducer: Sum}})
	if len(rows) != 0 {
		t.Errorf("rows = %#v, want empty", rows)
	}
}

/*
TestFilterThenSummarize verifies equality predicates narrow the input, that
numeric predicate values compare against stored floats, and that zero
matches yield an empty result.
*/
func TestFilterThenSummarize(t *testing.T) {
	rows := FilterThenSummarize(salesFixture(),
		map[string]any{"item_group": "Beverages"},
		[]string{"item_code"},
		[]Metric{{Field: "value", Reducer: Sum}})
	want := []Row{
		{Key: []string{"B-01"}, Values: map[string]float64{"value_sum": 400}},
		{Key: []string{"B-02"}, Values: map[string]float64{"value_sum": 200}},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %#v, want %#v", rows, want)
	}

	rows = FilterThenSummarize(salesFixture(),
		map[string]any{"value": 50.0},
		[]string{"item_code"},
		[]Metric{{Field: "value", Reducer: Count}})
	if len(rows) != 1 || rows[0].Key[0] != "F-01" {
		t.Errorf("numeric predicate rows = %#v, want single F-01 group", rows)
	}

	rows = FilterThenSummarize(salesFixture(),
		map[string]any{"item_group": "Desserts"},
		[]string{"item_code"},
		[]Metric{{Field: "value", Reducer: Sum}})
	if len(rows) != 0 {
		t.Errorf("unmatched predicate rows = %#v, want empty", rows)
	}
}

/*
TestTopN verifies descending order by metric value, the deterministic
ascending-key tie break, and truncation to n.
*/
func TestTopN(t *testing.T) {
	recs := []records.Record{
		{"item_code": "A", "value": 10.0},
		{"item_code": "D", "value": 10.0},
		{"item_code": "B", "value": 30.0},
		{"item_code": "C", "value": 30.0},
	}
	rows := TopN(recs, []string{"item_code"}, Metric{Field: "value", Reducer: Sum}, 3)
	gotKeys := make([]string, len(rows))
	for i, r := range rows {
		gotKeys[i] = r.Key[0]
	}
	want := []string{"B", "C", "A"}
	if !reflect.DeepEqual(gotKeys, want) {
		t.Errorf("keys = %v, want %v", gotKeys, want)
	}

	// n larger than the group count returns everything.
	rows = TopN(recs, []string{"item_code"}, Metric{Field: "value", Reducer: Sum}, 10)
	if len(rows) != 4 {
		t.Errorf("got %d rows, want 4", len(rows))
	}
}

/*
TestParseReducer verifies parsing, case folding, and rejection of unknown
names.
*/
func TestParseReducer(t *testing.T) {
	cases := []struct {
		in      string
		want    Reducer
		wantErr bool
	}{
		{"sum", Sum, false},
		{" MEAN ", Mean, false},
		{"count", Count, false},
		{"nunique", NUnique, false},
		{"median", "", true},
	}
	for _, tc := range cases {
		got, err := ParseReducer(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseReducer(%q) = (%q, %v), want (%q, wantErr=%v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}
