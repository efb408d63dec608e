package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"subtrack/internal/core"
	"subtrack/internal/store"
)

// BudgetService owns the budget singleton and its usage report.
type BudgetService struct {
	store         store.Store
	subscriptions *SubscriptionService
}

func NewBudgetService(st store.Store, subscriptions *SubscriptionService) *BudgetService {
	return &BudgetService{store: st, subscriptions: subscriptions}
}

// BudgetStatus reports current spending against the configured limit.
// RemainingBudget goes negative on overspend; that is a signal, not an
// error.
type BudgetStatus struct {
	MonthlyBudget   core.Money
	CurrentSpending core.Money
	RemainingBudget core.Money
	UsagePercent    float64
}

// Set overwrites the budget singleton. The limit must be positive; the
// usage percentage would be undefined at zero.
func (s *BudgetService) Set(ctx context.Context, limitCents int64) (core.Budget, error) {
	b := core.Budget{MonthlyLimit: core.Money{Cents: limitCents}}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.store.UpsertBudget(ctx, b.MonthlyLimit)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return saved, nil
}

func (s *BudgetService) Get(ctx context.Context) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return core.Budget{}, core.NotFoundf("No budget set")
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *BudgetService) Status(ctx context.Context) (BudgetStatus, error) {
	budget, err := s.Get(ctx)
	if err != nil {
		return BudgetStatus{}, err
	}

	spending, err := s.subscriptions.activeMonthlyTotal(ctx)
	if err != nil {
		return BudgetStatus{}, err
	}

	usage := float64(spending.Cents) / float64(budget.MonthlyLimit.Cents) * 100
	return BudgetStatus{
		MonthlyBudget:   budget.MonthlyLimit,
		CurrentSpending: spending,
		RemainingBudget: core.Money{Cents: budget.MonthlyLimit.Cents - spending.Cents},
		UsagePercent:    math.Round(usage*100) / 100,
	}, nil
}
