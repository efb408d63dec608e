package services

import (
	"context"
	"fmt"

	"subtrack/internal/core"
	"subtrack/internal/store"
)

// AnalyticsService aggregates active subscriptions into monthly and
// yearly totals with a per-subscription breakdown.
type AnalyticsService struct {
	store store.Store
}

func NewAnalyticsService(st store.Store) *AnalyticsService {
	return &AnalyticsService{store: st}
}

type (
	BreakdownEntry struct {
		Name              string
		MonthlyEquivalent core.Money
	}

	AnalyticsReport struct {
		TotalPerMonth core.Money
		TotalPerYear  core.Money
		ActiveCount   int
		Breakdown     []BreakdownEntry
	}
)

// MonthlyReport computes totals over active subscriptions only. Paused
// and cancelled subscriptions contribute nothing.
func (s *AnalyticsService) MonthlyReport(ctx context.Context) (AnalyticsReport, error) {
	active, err := s.store.ListActiveSubscriptions(ctx)
	if err != nil {
		return AnalyticsReport{}, fmt.Errorf("list active subscriptions: %w", err)
	}

	report := AnalyticsReport{
		ActiveCount: len(active),
		Breakdown:   make([]BreakdownEntry, 0, len(active)),
	}
	for _, sub := range active {
		eq, err := core.MonthlyEquivalent(sub.Price, sub.Frequency)
		if err != nil {
			return AnalyticsReport{}, err
		}
		report.TotalPerMonth = report.TotalPerMonth.Add(eq)
		report.Breakdown = append(report.Breakdown, BreakdownEntry{
			Name:              sub.Name,
			MonthlyEquivalent: eq,
		})
	}
	report.TotalPerYear = core.Money{Cents: report.TotalPerMonth.Cents * 12}
	return report, nil
}
