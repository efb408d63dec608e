package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"subtrack/internal/core"
	"subtrack/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "subtrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsSeedDefaultCategories(t *testing.T) {
	repo := newTestRepo(t)
	cats, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	want := map[string]bool{"Entertainment": false, "Utilities": false, "Health": false}
	for _, c := range cats {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("seed category %q missing", name)
		}
	}
}

func TestCategoryUniqueAcrossCase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateCategory(ctx, "Gaming"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, "gaming"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := repo.GetCategoryByName(ctx, "GAMING")
	if err != nil {
		t.Fatalf("case-insensitive lookup: %v", err)
	}
	if got.Name != "Gaming" {
		t.Fatalf("expected stored name Gaming, got %q", got.Name)
	}
}

func TestSubscriptionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.GetCategoryByName(ctx, "Entertainment")
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	created, err := repo.CreateSubscription(ctx, core.Subscription{
		Name:       "Netflix",
		Price:      core.Money{Cents: 1999},
		Frequency:  core.Monthly,
		Status:     core.Active,
		CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CategoryName != "Entertainment" {
		t.Fatalf("expected joined category name, got %q", created.CategoryName)
	}

	if _, err := repo.CreateSubscription(ctx, core.Subscription{
		Name: "Netflix", Price: core.Money{Cents: 1}, Frequency: core.Monthly,
		Status: core.Active, CategoryID: cat.ID,
	}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate name should conflict, got %v", err)
	}

	created.Status = core.Paused
	updated, err := repo.UpdateSubscription(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != core.Paused {
		t.Fatalf("expected Paused, got %s", updated.Status)
	}

	active, err := repo.ListActiveSubscriptions(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("paused subscription still active: %+v", active)
	}

	byCat, err := repo.ListSubscriptions(ctx, "entertainment")
	if err != nil || len(byCat) != 1 {
		t.Fatalf("filtered list: %v (%d items)", err, len(byCat))
	}
	missing, err := repo.ListSubscriptions(ctx, "Nope")
	if err != nil || len(missing) != 0 {
		t.Fatalf("filter miss should be empty, got %v (%d items)", err, len(missing))
	}

	if err := repo.DeleteSubscription(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteSubscription(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestBudgetUpsertSingleton(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetBudget(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before set, got %v", err)
	}
	if _, err := repo.UpsertBudget(ctx, core.Money{Cents: 10000}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	b, err := repo.UpsertBudget(ctx, core.Money{Cents: 25000})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if b.ID != 1 || b.MonthlyLimit.Cents != 25000 {
		t.Fatalf("unexpected budget after upsert: %+v", b)
	}
}
