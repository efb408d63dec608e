package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"19.99", 1999, true},
		{"19,99", 1999, true},
		{"0.01", 1, true},
		{"0", 0, true}, // zero-priced subscriptions are allowed
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{".", 0, false}, // separator without any digits
		{",", 0, false},
		{".5", 50, true},
		{"3.", 300, true},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyAmount(t *testing.T) {
	m := Money{Cents: 1999}
	if m.Amount() != 19.99 {
		t.Fatalf("expected 19.99, got %v", m.Amount())
	}
}
