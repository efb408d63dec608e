// Package memory provides an in-memory store for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"subtrack/internal/core"
	"subtrack/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	categories map[int64]core.Category
	subs       map[int64]core.Subscription
	budget     *core.Budget
	nextCatID  int64
	nextSubID  int64
}

// New creates an empty store seeded with the given category names.
func New(seedCategories ...string) *Store {
	s := &Store{
		categories: make(map[int64]core.Category),
		subs:       make(map[int64]core.Subscription),
	}
	for _, name := range seedCategories {
		s.nextCatID++
		s.categories[s.nextCatID] = core.Category{ID: s.nextCatID, Name: name}
	}
	return s
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetCategoryByName(_ context.Context, name string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.findCategoryLocked(name); ok {
		return c, nil
	}
	return core.Category{}, store.ErrNotFound
}

func (s *Store) CreateCategory(_ context.Context, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findCategoryLocked(name); ok {
		return core.Category{}, store.ErrConflict
	}
	s.nextCatID++
	c := core.Category{ID: s.nextCatID, Name: name}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) findCategoryLocked(name string) (core.Category, bool) {
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return core.Category{}, false
}

func (s *Store) ListSubscriptions(_ context.Context, categoryFilter string) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if categoryFilter != "" && !strings.EqualFold(sub.CategoryName, categoryFilter) {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListActiveSubscriptions(_ context.Context) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.Status == core.Active {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetSubscription(_ context.Context, id int64) (core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return core.Subscription{}, store.ErrNotFound
	}
	return sub, nil
}

func (s *Store) GetSubscriptionByName(_ context.Context, name string) (core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.Name == name {
			return sub, nil
		}
	}
	return core.Subscription{}, store.ErrNotFound
}

func (s *Store) CreateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subs {
		if existing.Name == sub.Name {
			return core.Subscription{}, store.ErrConflict
		}
	}
	cat, ok := s.categories[sub.CategoryID]
	if !ok {
		return core.Subscription{}, store.ErrNotFound
	}
	s.nextSubID++
	sub.ID = s.nextSubID
	sub.CategoryName = cat.Name
	s.subs[sub.ID] = sub
	return sub, nil
}

func (s *Store) UpdateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.ID]; !ok {
		return core.Subscription{}, store.ErrNotFound
	}
	for id, existing := range s.subs {
		if id != sub.ID && existing.Name == sub.Name {
			return core.Subscription{}, store.ErrConflict
		}
	}
	cat, ok := s.categories[sub.CategoryID]
	if !ok {
		return core.Subscription{}, store.ErrNotFound
	}
	sub.CategoryName = cat.Name
	s.subs[sub.ID] = sub
	return sub, nil
}

func (s *Store) DeleteSubscription(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *Store) GetBudget(_ context.Context) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.budget == nil {
		return core.Budget{}, store.ErrNotFound
	}
	return *s.budget, nil
}

func (s *Store) UpsertBudget(_ context.Context, limit core.Money) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.budget == nil {
		s.budget = &core.Budget{ID: 1, MonthlyLimit: limit}
	} else {
		s.budget.MonthlyLimit = limit
	}
	return *s.budget, nil
}
