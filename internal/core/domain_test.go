package core

import (
	"strings"
	"testing"
)

func TestParseFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want Frequency
		ok   bool
	}{
		{"Monthly", Monthly, true},
		{"monthly", Monthly, true},
		{"MONTHLY", Monthly, true},
		{"Weekly", Weekly, true},
		{"yearly", Yearly, true},
		{" Yearly ", Yearly, true},
		{"Daily", "", false},
		{"", "", false},
		{"fortnightly", "", false},
	}
	for _, tc := range cases {
		got, err := ParseFrequency(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !strings.Contains(err.Error(), "Invalid frequency") {
				t.Fatalf("%q error should mention invalid frequency, got %v", tc.in, err)
			}
			if !strings.Contains(err.Error(), "Weekly, Monthly, Yearly") {
				t.Fatalf("%q error should enumerate allowed values, got %v", tc.in, err)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Active", Active, true},
		{"active", Active, true},
		{"PAUSED", Paused, true},
		{"cancelled", Cancelled, true},
		{"deleted", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !strings.Contains(err.Error(), "Invalid status") {
				t.Fatalf("%q error should mention invalid status, got %v", tc.in, err)
			}
		}
	}
}

func TestCapitalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"gaming", "Gaming"},
		{"GAMING", "Gaming"},
		{"gAmInG", "Gaming"},
		{"home office", "Home office"}, // whole string, not per-word
		{"", ""},
		{"x", "X"},
	}
	for _, tc := range cases {
		if got := Capitalize(tc.in); got != tc.want {
			t.Fatalf("Capitalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSubscriptionValidate(t *testing.T) {
	valid := Subscription{
		Name:      "Netflix",
		Price:     Money{Cents: 1999},
		Frequency: Monthly,
		Status:    Active,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid subscription rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Subscription)
	}{
		{"empty name", func(s *Subscription) { s.Name = "  " }},
		{"negative price", func(s *Subscription) { s.Price = Money{Cents: -1} }},
		{"bad frequency", func(s *Subscription) { s.Frequency = "Daily" }},
		{"bad status", func(s *Subscription) { s.Status = "Archived" }},
		{"long name", func(s *Subscription) { s.Name = strings.Repeat("a", 201) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Fatal("expected validation error")
			} else if KindOf(err) != KindValidation {
				t.Fatalf("expected validation kind, got %s", KindOf(err))
			}
		})
	}

	zero := valid
	zero.Price = Money{Cents: 0}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero price should be valid: %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{MonthlyLimit: Money{Cents: 10000}}).Validate(); err != nil {
		t.Fatalf("positive limit rejected: %v", err)
	}
	for _, cents := range []int64{0, -100} {
		if err := (Budget{MonthlyLimit: Money{Cents: cents}}).Validate(); err == nil {
			t.Fatalf("limit %d should be rejected", cents)
		}
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(NotFoundf("missing")) != KindNotFound {
		t.Fatal("expected not_found kind")
	}
	if _, err := ParseFrequency("never"); KindOf(err) != KindValidation {
		t.Fatal("expected validation kind")
	}
	if KindOf(&plainErr{}) != KindInternal {
		t.Fatal("plain errors should map to internal")
	}
}

type plainErr struct{}

func (*plainErr) Error() string { return "boom" }
