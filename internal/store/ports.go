// Package store defines the persistence ports for categories,
// subscriptions and the budget singleton. Backends (memory, sqlite)
// implement these and report failures via the sentinel errors below;
// services translate them into user-facing messages.
package store

import (
	"context"
	"errors"

	"subtrack/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type (
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		// GetCategoryByName matches case-insensitively.
		GetCategoryByName(ctx context.Context, name string) (core.Category, error)
		// CreateCategory stores name as given and fails with ErrConflict
		// when a category with the same name already exists under
		// case-insensitive comparison.
		CreateCategory(ctx context.Context, name string) (core.Category, error)
	}

	SubscriptionStore interface {
		// ListSubscriptions returns all subscriptions, restricted to a
		// category name (case-insensitive) when filter is non-empty. A
		// filter matching nothing yields an empty slice, not an error.
		ListSubscriptions(ctx context.Context, categoryFilter string) ([]core.Subscription, error)
		ListActiveSubscriptions(ctx context.Context) ([]core.Subscription, error)
		GetSubscription(ctx context.Context, id int64) (core.Subscription, error)
		GetSubscriptionByName(ctx context.Context, name string) (core.Subscription, error)
		CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error)
		UpdateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error)
		DeleteSubscription(ctx context.Context, id int64) error
	}

	BudgetStore interface {
		GetBudget(ctx context.Context) (core.Budget, error)
		// UpsertBudget overwrites the singleton, creating it on first set.
		UpsertBudget(ctx context.Context, limit core.Money) (core.Budget, error)
	}

	// Store composes all persistence ports.
	Store interface {
		CategoryStore
		SubscriptionStore
		BudgetStore
	}
)
