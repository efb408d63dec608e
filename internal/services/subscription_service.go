package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"subtrack/internal/amqp"
	"subtrack/internal/core"
	"subtrack/internal/store"
)

// EventPublisher pushes subscription change events to interested
// consumers. A nil publisher disables eventing.
type EventPublisher interface {
	PublishSubscriptionEvent(ctx context.Context, id int64, action string) error
}

// SubscriptionService owns subscription CRUD and the budget-guarded
// admission of new active subscriptions.
type SubscriptionService struct {
	store      store.Store
	categories *CategoryService
	events     EventPublisher

	// Serializes admit-then-insert so two concurrent creations cannot
	// both pass the budget check and jointly exceed the limit.
	admitMu sync.Mutex
}

func NewSubscriptionService(st store.Store, categories *CategoryService, events EventPublisher) *SubscriptionService {
	return &SubscriptionService{
		store:      st,
		categories: categories,
		events:     events,
	}
}

// CreateSubscriptionInput carries the validated-by-transport fields for a
// new subscription. Status is optional and defaults to Active.
type CreateSubscriptionInput struct {
	Name       string
	PriceCents int64
	Frequency  string
	Category   string
	Status     string
}

// UpdateSubscriptionInput is a partial update; nil fields are untouched.
type UpdateSubscriptionInput struct {
	Name       *string
	PriceCents *int64
	Frequency  *string
	Status     *string
	Category   *string
}

// Create validates the candidate, runs budget admission when it would be
// active, resolves its category and persists it. All validation happens
// before any mutation; a budget rejection leaves no category behind.
func (s *SubscriptionService) Create(ctx context.Context, in CreateSubscriptionInput) (core.Subscription, error) {
	freq, err := core.ParseFrequency(in.Frequency)
	if err != nil {
		return core.Subscription{}, err
	}

	status := core.Active
	if in.Status != "" {
		status, err = core.ParseStatus(in.Status)
		if err != nil {
			return core.Subscription{}, err
		}
	}

	if in.PriceCents < 0 {
		return core.Subscription{}, core.Validationf("Price must be a positive number")
	}

	candidate := core.Subscription{
		Name:      in.Name,
		Price:     core.Money{Cents: in.PriceCents},
		Frequency: freq,
		Status:    status,
	}
	if err := candidate.Validate(); err != nil {
		return core.Subscription{}, err
	}

	if _, err := s.store.GetSubscriptionByName(ctx, in.Name); err == nil {
		return core.Subscription{}, core.Conflictf("Subscription '%s' already exists", in.Name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return core.Subscription{}, fmt.Errorf("check subscription name: %w", err)
	}

	s.admitMu.Lock()
	defer s.admitMu.Unlock()

	if err := s.admit(ctx, candidate.Price, freq, status); err != nil {
		return core.Subscription{}, err
	}

	cat, err := s.categories.Resolve(ctx, in.Category)
	if err != nil {
		return core.Subscription{}, err
	}
	candidate.CategoryID = cat.ID

	created, err := s.store.CreateSubscription(ctx, candidate)
	if errors.Is(err, store.ErrConflict) {
		return core.Subscription{}, core.Conflictf("Subscription '%s' already exists", in.Name)
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

// admit applies the budget guard: it only acts when a budget is configured
// and the candidate would be active. The total of all active monthly
// equivalents plus the candidate may equal the limit but not exceed it.
func (s *SubscriptionService) admit(ctx context.Context, price core.Money, freq core.Frequency, status core.Status) error {
	if status != core.Active {
		return nil
	}

	budget, err := s.store.GetBudget(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil // no configured cap
	}
	if err != nil {
		return fmt.Errorf("load budget: %w", err)
	}

	total, err := s.activeMonthlyTotal(ctx)
	if err != nil {
		return err
	}

	candidate, err := core.MonthlyEquivalent(price, freq)
	if err != nil {
		return err
	}

	if total.Add(candidate).Cents > budget.MonthlyLimit.Cents {
		return core.BudgetExceededf("Budget limit exceeded!")
	}
	return nil
}

func (s *SubscriptionService) activeMonthlyTotal(ctx context.Context) (core.Money, error) {
	active, err := s.store.ListActiveSubscriptions(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("list active subscriptions: %w", err)
	}
	var total core.Money
	for _, sub := range active {
		eq, err := core.MonthlyEquivalent(sub.Price, sub.Frequency)
		if err != nil {
			return core.Money{}, err
		}
		total = total.Add(eq)
	}
	return total, nil
}

// Update applies a partial update. The budget guard is not re-run, even
// when the update reactivates a paused or cancelled subscription; the
// budget status report surfaces the resulting overspend.
func (s *SubscriptionService) Update(ctx context.Context, id int64, in UpdateSubscriptionInput) (core.Subscription, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}

	if in.Name != nil {
		if *in.Name != sub.Name {
			if _, err := s.store.GetSubscriptionByName(ctx, *in.Name); err == nil {
				return core.Subscription{}, core.Conflictf("Subscription '%s' already exists", *in.Name)
			} else if !errors.Is(err, store.ErrNotFound) {
				return core.Subscription{}, fmt.Errorf("check subscription name: %w", err)
			}
		}
		sub.Name = *in.Name
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return core.Subscription{}, core.Validationf("Invalid price")
		}
		sub.Price = core.Money{Cents: *in.PriceCents}
	}
	if in.Frequency != nil {
		freq, err := core.ParseFrequency(*in.Frequency)
		if err != nil {
			return core.Subscription{}, err
		}
		sub.Frequency = freq
	}
	if in.Status != nil {
		status, err := core.ParseStatus(*in.Status)
		if err != nil {
			return core.Subscription{}, err
		}
		sub.Status = status
	}
	if in.Category != nil {
		cat, err := s.categories.Resolve(ctx, *in.Category)
		if err != nil {
			return core.Subscription{}, err
		}
		sub.CategoryID = cat.ID
	}

	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	updated, err := s.store.UpdateSubscription(ctx, sub)
	if errors.Is(err, store.ErrNotFound) {
		return core.Subscription{}, core.NotFoundf("Subscription with ID %d not found", id)
	}
	if errors.Is(err, store.ErrConflict) {
		return core.Subscription{}, core.Conflictf("Subscription '%s' already exists", sub.Name)
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}

	s.publish(ctx, updated.ID, amqp.ActionUpdated)
	return updated, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteSubscription(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.NotFoundf("Cannot delete: Subscription %d does not exist", id)
	}
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *SubscriptionService) Get(ctx context.Context, id int64) (core.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.Subscription{}, core.NotFoundf("Subscription with ID %d not found", id)
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// List returns all subscriptions, restricted by category name when
// categoryFilter is non-empty. A filter matching nothing yields an empty
// list, never an error.
func (s *SubscriptionService) List(ctx context.Context, categoryFilter string) ([]core.Subscription, error) {
	return s.store.ListSubscriptions(ctx, categoryFilter)
}

func (s *SubscriptionService) publish(ctx context.Context, id int64, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishSubscriptionEvent(ctx, id, action); err != nil {
		// Don't fail the request; the change is already persisted.
		slog.ErrorContext(ctx, "Failed to publish subscription event",
			"id", id, "action", action, "error", err)
	}
}
