// Package services orchestrates the domain operations over the store:
// category resolution, subscription admission and CRUD, budget upsert and
// reporting. Services own the locking that keeps check-then-act sequences
// atomic; stores stay dumb.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"subtrack/internal/core"
	"subtrack/internal/store"
)

// CategoryService resolves and manages categories.
type CategoryService struct {
	store store.Store

	// Serializes resolution so two requests naming the same unseen
	// category cannot vivify it twice. The sqlite backend additionally
	// enforces a unique index on lower(name); the conflict retry below
	// covers writers outside this process.
	resolveMu sync.Mutex
}

func NewCategoryService(st store.Store) *CategoryService {
	return &CategoryService{store: st}
}

// Resolve returns the category matching name case-insensitively, creating
// it when absent. The stored name of a vivified category is the input with
// its first letter upper-cased and the remainder lower-cased.
func (s *CategoryService) Resolve(ctx context.Context, name string) (core.Category, error) {
	if err := (core.Category{Name: name}).Validate(); err != nil {
		return core.Category{}, err
	}

	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()

	cat, err := s.store.GetCategoryByName(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return core.Category{}, fmt.Errorf("resolve category: %w", err)
	}

	created, err := s.store.CreateCategory(ctx, core.Capitalize(name))
	if errors.Is(err, store.ErrConflict) {
		// Lost a race against another writer; the row exists now.
		return s.store.GetCategoryByName(ctx, name)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Create adds a category with the name exactly as given.
func (s *CategoryService) Create(ctx context.Context, name string) (core.Category, error) {
	if err := (core.Category{Name: name}).Validate(); err != nil {
		return core.Category{}, err
	}

	s.resolveMu.Lock()
	defer s.resolveMu.Unlock()

	cat, err := s.store.CreateCategory(ctx, name)
	if errors.Is(err, store.ErrConflict) {
		return core.Category{}, core.Conflictf("Category '%s' already exists", name)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}
