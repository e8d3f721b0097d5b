package records

import (
	"testing"
	"time"
)

/*
TestHas verifies the presence rules: absent keys, nil values, and empty
strings do not count as values; zero numbers do.
*/
func TestHas(t *testing.T) {
	r := Record{
		"name":  "espresso",
		"empty": "",
		"none":  nil,
		"zero":  0.0,
	}
	cases := []struct {
		key  string
		want bool
	}{
		{"name", true},
		{"empty", false},
		{"none", false},
		{"zero", true},
		{"missing", false},
	}
	for _, tc := range cases {
		if got := r.Has(tc.key); got != tc.want {
			t.Errorf("Has(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

/*
TestFloat verifies numeric coercion across the value types a record can
carry, and that non-numeric values report ok=false.
*/
func TestFloat(t *testing.T) {
	r := Record{
		"f64":  12.5,
		"i":    int(3),
		"i64":  int64(7),
		"str":  "42.25",
		"text": "espresso",
		"none": nil,
	}
	cases := []struct {
		key    string
		want   float64
		wantOK bool
	}{
		{"f64", 12.5, true},
		{"i", 3, true},
		{"i64", 7, true},
		{"str", 42.25, true},
		{"text", 0, false},
		{"none", 0, false},
		{"missing", 0, false},
	}
	for _, tc := range cases {
		got, ok := r.Float(tc.key)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Float(%q) = (%v, %v), want (%v, %v)", tc.key, got, ok, tc.want, tc.wantOK)
		}
	}
}

/*
TestRender verifies the string rendering used for predicate comparison:
floats render without trailing zeros, times as RFC3339, nil as "".
*/
func TestRender(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"espresso", "espresso"},
		{12.5, "12.5"},
		{100.0, "100"},
		{int(7), "7"},
		{int64(9), "9"},
		{ts, "2025-03-01T12:00:00Z"},
	}
	for _, tc := range cases {
		if got := Render(tc.in); got != tc.want {
			t.Errorf("Render(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

/*
TestClone verifies that Clone is a copy: mutating the clone leaves the
original untouched.
*/
func TestClone(t *testing.T) {
	orig := Record{"item_code": "B-01", "quantity": 2.0}
	c := orig.Clone()
	c["quantity"] = 5.0
	if got, _ := orig.Float("quantity"); got != 2.0 {
		t.Errorf("original mutated through clone: quantity = %v", got)
	}
}
