package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu          sync.RWMutex
	plans       map[string]store.Plan
	suggestions map[string]cached
}

type cached struct {
	values    []string
	fetchedAt time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		plans:       make(map[string]store.Plan),
		suggestions: make(map[string]cached),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SavePlan inserts or replaces a plan, keyed by ID.
func (s *Store) SavePlan(ctx context.Context, p store.Plan) error {
	if p.ID == "" {
		return fmt.Errorf("save plan: empty id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = copyPlan(p)
	return nil
}

// GetPlan returns a plan by ID.
func (s *Store) GetPlan(ctx context.Context, id string) (store.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.plans[id]; ok {
		return copyPlan(p), nil
	}
	return store.Plan{}, fmt.Errorf("plan %q: %w", id, internalerr.ErrNotFound)
}

// ListPlans returns plans newest first, without bodies.
func (s *Store) ListPlans(ctx context.Context, limit int) ([]store.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	out := make([]store.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		p.Body = nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeletePlansBefore removes plans created before the cutoff.
func (s *Store) DeletePlansBefore(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.plans {
		if p.CreatedAt.Before(before) {
			delete(s.plans, id)
			n++
		}
	}
	return n, nil
}

// PutSuggestions caches suggestions for a seed.
func (s *Store) PutSuggestions(ctx context.Context, seed string, suggestions []string, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[seed] = cached{values: copyStrings(suggestions), fetchedAt: fetchedAt}
	return nil
}

// GetSuggestions returns cached suggestions younger than maxAge.
func (s *Store) GetSuggestions(ctx context.Context, seed string, maxAge time.Duration, now time.Time) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.suggestions[seed]
	if !ok || now.Sub(c.fetchedAt) > maxAge {
		return nil, false, nil
	}
	return copyStrings(c.values), true, nil
}

// DeleteSuggestionsBefore drops cache entries fetched before the cutoff.
func (s *Store) DeleteSuggestionsBefore(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for seed, c := range s.suggestions {
		if c.fetchedAt.Before(before) {
			delete(s.suggestions, seed)
			n++
		}
	}
	return n, nil
}

func copyPlan(p store.Plan) store.Plan {
	if p.Body != nil {
		body := make([]byte, len(p.Body))
		copy(body, p.Body)
		p.Body = body
	}
	return p
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
