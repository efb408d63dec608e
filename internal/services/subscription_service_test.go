package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"subtrack/internal/core"
	"subtrack/internal/store/memory"
)

type capturedEvent struct {
	id     int64
	action string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (f *fakePublisher) PublishSubscriptionEvent(_ context.Context, id int64, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, capturedEvent{id: id, action: action})
	return nil
}

func newTestServices(t *testing.T) (*SubscriptionService, *BudgetService, *CategoryService, *fakePublisher) {
	t.Helper()
	st := memory.New("Entertainment", "Utilities", "Health")
	cats := NewCategoryService(st)
	pub := &fakePublisher{}
	subs := NewSubscriptionService(st, cats, pub)
	budget := NewBudgetService(st, subs)
	return subs, budget, cats, pub
}

func TestCreateSubscription(t *testing.T) {
	subs, _, _, pub := newTestServices(t)
	ctx := context.Background()

	created, err := subs.Create(ctx, CreateSubscriptionInput{
		Name:       "Netflix",
		PriceCents: 1999,
		Frequency:  "Monthly",
		Category:   "Entertainment",
		Status:     "Active",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 || created.CategoryName != "Entertainment" {
		t.Fatalf("unexpected subscription: %+v", created)
	}
	if len(pub.events) != 1 || pub.events[0].action != "created" {
		t.Fatalf("expected one created event, got %+v", pub.events)
	}
}

func TestCreateSubscriptionDefaultsToActive(t *testing.T) {
	subs, _, _, _ := newTestServices(t)

	created, err := subs.Create(context.Background(), CreateSubscriptionInput{
		Name: "Gym", PriceCents: 5200, Frequency: "Weekly", Category: "Health",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != core.Active {
		t.Fatalf("expected Active default, got %s", created.Status)
	}
}

func TestCreateSubscriptionValidation(t *testing.T) {
	subs, _, _, _ := newTestServices(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		in       CreateSubscriptionInput
		kind     core.Kind
		contains string
	}{
		{
			name:     "unknown frequency",
			in:       CreateSubscriptionInput{Name: "Bad Data", PriceCents: 1000, Frequency: "Daily", Category: "Misc"},
			kind:     core.KindValidation,
			contains: "Invalid frequency",
		},
		{
			name:     "unknown status",
			in:       CreateSubscriptionInput{Name: "Bad Data", PriceCents: 1000, Frequency: "Monthly", Category: "Misc", Status: "Archived"},
			kind:     core.KindValidation,
			contains: "Invalid status",
		},
		{
			name:     "negative price",
			in:       CreateSubscriptionInput{Name: "Bad Data", PriceCents: -1, Frequency: "Monthly", Category: "Misc"},
			kind:     core.KindValidation,
			contains: "Price must be a positive number",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := subs.Create(ctx, tc.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if core.KindOf(err) != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, core.KindOf(err))
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Fatalf("expected message containing %q, got %q", tc.contains, err.Error())
			}
		})
	}
}

func TestCreateSubscriptionDuplicateName(t *testing.T) {
	subs, _, _, _ := newTestServices(t)
	ctx := context.Background()

	in := CreateSubscriptionInput{Name: "Netflix", PriceCents: 1999, Frequency: "Monthly", Category: "Entertainment"}
	if _, err := subs.Create(ctx, in); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := subs.Create(ctx, in)
	if err == nil || core.KindOf(err) != core.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestBudgetGuardRejectsOverLimit(t *testing.T) {
	subs, budget, _, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := budget.Set(ctx, 10000); err != nil { // 100.00 limit
		t.Fatalf("set budget: %v", err)
	}

	// Two active subscriptions totaling 80/month
	for _, in := range []CreateSubscriptionInput{
		{Name: "Netflix", PriceCents: 3000, Frequency: "Monthly", Category: "Entertainment"},
		{Name: "Spotify", PriceCents: 5000, Frequency: "Monthly", Category: "Entertainment"},
	} {
		if _, err := subs.Create(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	// 80 + 25 = 105 > 100: rejected
	_, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "HBO", PriceCents: 2500, Frequency: "Monthly", Category: "Entertainment",
	})
	if err == nil {
		t.Fatal("expected budget rejection")
	}
	if core.KindOf(err) != core.KindBudgetExceeded {
		t.Fatalf("expected budget_exceeded, got %s", core.KindOf(err))
	}
	if err.Error() != "Budget limit exceeded!" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	// A rejected create must not vivify its category
	cats, _ := subs.store.ListCategories(ctx)
	for _, c := range cats {
		if strings.EqualFold(c.Name, "HBO") {
			t.Fatal("budget rejection should not create categories")
		}
	}
}

func TestBudgetGuardAllowsEqualToLimit(t *testing.T) {
	subs, budget, _, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := budget.Set(ctx, 10000); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if _, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "Netflix", PriceCents: 8000, Frequency: "Monthly", Category: "Entertainment",
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// 80 + 20 = 100 == limit: allowed
	if _, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "Spotify", PriceCents: 2000, Frequency: "Monthly", Category: "Entertainment",
	}); err != nil {
		t.Fatalf("equal-to-limit create should pass: %v", err)
	}
}

func TestBudgetGuardIgnoresInactiveCandidates(t *testing.T) {
	subs, budget, _, _ := newTestServices(t)
	ctx := context.Background()

	if _, err := budget.Set(ctx, 1000); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	// Paused candidate far above the limit is admitted
	if _, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "Dormant", PriceCents: 99900, Frequency: "Monthly",
		Category: "Entertainment", Status: "Paused",
	}); err != nil {
		t.Fatalf("paused candidate should bypass the guard: %v", err)
	}
}

func TestUpdateSubscription(t *testing.T) {
	subs, _, _, pub := newTestServices(t)
	ctx := context.Background()

	created, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "Netflix", PriceCents: 1999, Frequency: "Monthly", Category: "Entertainment",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := "Cancelled"
	updated, err := subs.Update(ctx, created.ID, UpdateSubscriptionInput{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != core.Cancelled {
		t.Fatalf("expected Cancelled, got %s", updated.Status)
	}
	if updated.Name != "Netflix" || updated.Price.Cents != 1999 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	badFreq := "Daily"
	if _, err := subs.Update(ctx, created.ID, UpdateSubscriptionInput{Frequency: &badFreq}); err == nil {
		t.Fatal("invalid frequency should fail")
	}

	newCat := "gaming"
	moved, err := subs.Update(ctx, created.ID, UpdateSubscriptionInput{Category: &newCat})
	if err != nil {
		t.Fatalf("category update: %v", err)
	}
	if moved.CategoryName != "Gaming" {
		t.Fatalf("expected vivified Gaming category, got %q", moved.CategoryName)
	}

	if _, err := subs.Update(ctx, 9999, UpdateSubscriptionInput{Status: &status}); core.KindOf(err) != core.KindNotFound {
		t.Fatalf("expected not_found for missing id, got %v", err)
	}

	last := pub.events[len(pub.events)-1]
	if last.action != "updated" {
		t.Fatalf("expected updated event, got %+v", last)
	}
}

func TestDeleteSubscription(t *testing.T) {
	subs, _, _, _ := newTestServices(t)
	ctx := context.Background()

	created, err := subs.Create(ctx, CreateSubscriptionInput{
		Name: "Netflix", PriceCents: 1999, Frequency: "Monthly", Category: "Entertainment",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := subs.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := subs.Get(ctx, created.ID); core.KindOf(err) != core.KindNotFound {
		t.Fatalf("get after delete should be not_found, got %v", err)
	}
	err = subs.Delete(ctx, created.ID)
	if core.KindOf(err) != core.KindNotFound {
		t.Fatalf("second delete should be not_found, got %v", err)
	}
	if !strings.Contains(err.Error(), "Cannot delete") {
		t.Fatalf("unexpected delete message: %q", err.Error())
	}

	// Category survives the delete
	cats, err := subs.store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	found := false
	for _, c := range cats {
		if c.Name == "Entertainment" {
			found = true
		}
	}
	if !found {
		t.Fatal("deleting a subscription must not delete its category")
	}
}
