package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	Weekly  Frequency = "Weekly"
	Monthly Frequency = "Monthly"
	Yearly  Frequency = "Yearly"
)

const (
	Active    Status = "Active"
	Paused    Status = "Paused"
	Cancelled Status = "Cancelled"
)

type (
	Frequency string

	Status string

	Money struct {
		Cents int64
	}

	Category struct {
		ID   int64
		Name string
	}

	Subscription struct {
		ID           int64
		Name         string
		Price        Money
		Frequency    Frequency
		Status       Status
		CategoryID   int64
		CategoryName string
	}

	// Budget is a singleton; at most one row exists and sets overwrite it.
	Budget struct {
		ID           int64
		MonthlyLimit Money
	}
)

// Frequencies lists the allowed billing frequencies in display order.
func Frequencies() []Frequency {
	return []Frequency{Weekly, Monthly, Yearly}
}

// Statuses lists the allowed subscription statuses in display order.
func Statuses() []Status {
	return []Status{Active, Paused, Cancelled}
}

// ParseFrequency converts user input to a Frequency, accepting any casing.
// Unknown values yield a validation error enumerating the allowed set.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(Capitalize(strings.TrimSpace(s))) {
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", Validationf("Invalid frequency. Allowed: [%s]", joinFrequencies())
}

// ParseStatus converts user input to a Status, accepting any casing.
func ParseStatus(s string) (Status, error) {
	switch Status(Capitalize(strings.TrimSpace(s))) {
	case Active:
		return Active, nil
	case Paused:
		return Paused, nil
	case Cancelled:
		return Cancelled, nil
	}
	return "", Validationf("Invalid status. Allowed: [%s]", joinStatuses())
}

func joinFrequencies() string {
	parts := make([]string, 0, 3)
	for _, f := range Frequencies() {
		parts = append(parts, string(f))
	}
	return strings.Join(parts, ", ")
}

func joinStatuses() string {
	parts := make([]string, 0, 3)
	for _, s := range Statuses() {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

// Capitalize upper-cases the first rune and lower-cases the remainder of the
// whole string. Category names are stored in this form.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Validationf("Category name is required")
	}
	if len(c.Name) > 100 {
		return Validationf("Category name too long (max 100 characters)")
	}
	return nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Validationf("Subscription name is required")
	}
	if len(s.Name) > 200 {
		return Validationf("Subscription name too long (max 200 characters)")
	}
	if s.Price.Cents < 0 {
		return Validationf("Price must be a non-negative number")
	}
	if _, err := ParseFrequency(string(s.Frequency)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if b.MonthlyLimit.Cents <= 0 {
		return Validationf("Budget limit must be a positive number")
	}
	return nil
}
