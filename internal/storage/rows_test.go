package storage

import (
	"reflect"
	"testing"
	"time"

	"costengine/internal/schema"
	"costengine/pkg/records"
)

/*
TestBuildInsertRows verifies records align to declared column order, absent
fields become nil, and timestamp columns are stamped from now regardless of
caller-supplied values.
*/
func TestBuildInsertRows(t *testing.T) {
	def := schema.TableDef{
		Name: "recipes",
		Columns: []schema.ColumnDef{
			{Name: "item_code", Type: schema.TypeText},
			{Name: "selling_price", Type: schema.TypeNumber},
			{Name: schema.LastUpdatedColumn, Type: schema.TypeTimestamp},
			{Name: schema.CreatedAtColumn, Type: schema.TypeTimestamp},
		},
	}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []records.Record{
		{"selling_price": 600.0, "item_code": "R-01", "created_at": "caller junk"},
		{"item_code": "R-02"},
	}

	cols, rows := BuildInsertRows(def, recs, now)
	if !reflect.DeepEqual(cols, []string{"item_code", "selling_price", "last_updated", "created_at"}) {
		t.Errorf("columns = %v", cols)
	}
	want := [][]any{
		{"R-01", 600.0, now, now},
		{"R-02", nil, now, now},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %#v, want %#v", rows, want)
	}
}

/*
TestDecodeValue verifies driver values map back onto the record
representation per declared type.
*/
func TestDecodeValue(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		col  schema.ColumnDef
		in   any
		want any
	}{
		{"nil", schema.ColumnDef{Type: schema.TypeNumber}, nil, nil},
		{"number from int64", schema.ColumnDef{Type: schema.TypeNumber}, int64(3), 3.0},
		{"number from bytes", schema.ColumnDef{Type: schema.TypeNumber}, []byte("12.5"), 12.5},
		{"number from string", schema.ColumnDef{Type: schema.TypeNumber}, "900", 900.0},
		{"integer from float", schema.ColumnDef{Type: schema.TypeInteger}, 7.0, int64(7)},
		{"timestamp passthrough", schema.ColumnDef{Type: schema.TypeTimestamp}, ts, ts},
		{"timestamp from string", schema.ColumnDef{Type: schema.TypeTimestamp}, "2025-03-01T12:00:00Z", ts},
		{"text from bytes", schema.ColumnDef{Type: schema.TypeText}, []byte("espresso"), "espresso"},
		{"text passthrough", schema.ColumnDef{Type: schema.TypeText}, "espresso", "espresso"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeValue(tc.col, tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("DecodeValue(%v, %#v) = %#v, want %#v", tc.col.Type, tc.in, got, tc.want)
			}
		})
	}
}

/*
TestFilterColumns verifies deterministic ordering of predicate columns.
*/
func TestFilterColumns(t *testing.T) {
	f := Filter{Equals: map[string]any{"store": "Main", "date": "2025-03", "item_code": "B-01"}}
	got := FilterColumns(f)
	want := []string{"date", "item_code", "store"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterColumns = %v, want %v", got, want)
	}
}

/*
TestParsePolicy verifies policy parsing, case folding, and rejection of
unknown names.
*/
func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"append", PolicyAppend, false},
		{" Replace ", PolicyReplace, false},
		{"upsert", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParsePolicy(%q) = (%q, %v), want (%q, wantErr=%v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}
