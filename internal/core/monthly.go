package core

// MonthlyEquivalent normalizes a price to a per-month amount using flat
// factors: weekly prices count four times, yearly prices are split across
// twelve months with half-up cents rounding. The factors are deliberately
// not calendar-accurate.
//
// An unrecognized frequency is an invariant violation (parsing rejects it
// before any subscription is stored) and reported as an internal error
// rather than silently contributing zero.
func MonthlyEquivalent(price Money, freq Frequency) (Money, error) {
	switch freq {
	case Monthly:
		return price, nil
	case Yearly:
		// Half-up rounding keeps twelve monthly shares within one
		// cent of the yearly price.
		return Money{Cents: (price.Cents + 6) / 12}, nil
	case Weekly:
		return Money{Cents: price.Cents * 4}, nil
	}
	return Money{}, Internalf("unrecognized billing frequency %q", string(freq))
}
