package services

import (
	"context"
	"testing"

	"subtrack/internal/core"
)

func TestSetBudgetRejectsNonPositive(t *testing.T) {
	_, budget, _, _ := newTestServices(t)
	ctx := context.Background()

	for _, cents := range []int64{0, -500} {
		if _, err := budget.Set(ctx, cents); core.KindOf(err) != core.KindValidation {
			t.Fatalf("limit %d should be a validation error, got %v", cents, err)
		}
	}
}

func TestBudgetStatus(t *testing.T) {
	subs, budget, _, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := budget.Status(ctx); core.KindOf(err) != core.KindNotFound {
		t.Fatal("status without budget should be not_found")
	}

	if _, err := budget.Set(ctx, 10000); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "Netflix", PriceCents: 2500, Frequency: "Monthly", Category: "Entertainment",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	status, err := budget.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.MonthlyBudget.Cents != 10000 {
		t.Fatalf("budget = %d", status.MonthlyBudget.Cents)
	}
	if status.CurrentSpending.Cents != 2500 {
		t.Fatalf("spending = %d", status.CurrentSpending.Cents)
	}
	if status.RemainingBudget.Cents != 7500 {
		t.Fatalf("remaining = %d", status.RemainingBudget.Cents)
	}
	if status.UsagePercent != 25.0 {
		t.Fatalf("usage = %v", status.UsagePercent)
	}
}

func TestBudgetStatusOverspendGoesNegative(t *testing.T) {
	subs, budget, _, _ := newTestServices(t)
	ctx := context.Background()

	// Create first, configure the cap afterwards; existing spend may
	// already exceed a newly configured limit.
	if _, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "Everything", PriceCents: 30000, Frequency: "Monthly", Category: "Utilities",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := budget.Set(ctx, 10000); err != nil {
		t.Fatalf("set: %v", err)
	}

	status, err := budget.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.RemainingBudget.Cents != -20000 {
		t.Fatalf("remaining = %d, want -20000", status.RemainingBudget.Cents)
	}
	if status.UsagePercent != 300.0 {
		t.Fatalf("usage = %v, want 300", status.UsagePercent)
	}
}

func TestSetBudgetOverwritesSingleton(t *testing.T) {
	_, budget, _, _ := newTestServices(t)
	ctx := context.Background()

	first, err := budget.Set(ctx, 10000)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	second, err := budget.Set(ctx, 50000)
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("set must overwrite the singleton")
	}

	got, err := budget.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MonthlyLimit.Cents != 50000 {
		t.Fatalf("limit = %d", got.MonthlyLimit.Cents)
	}
}
