package store

import (
	"context"
	"time"
)

// Store persists campaign plans and cached autocomplete suggestions.
type Store interface {
	Close() error

	// Plans
	SavePlan(ctx context.Context, p Plan) error
	GetPlan(ctx context.Context, id string) (Plan, error)
	ListPlans(ctx context.Context, limit int) ([]Plan, error)
	DeletePlansBefore(ctx context.Context, before time.Time) (int, error)

	// Suggestion cache
	PutSuggestions(ctx context.Context, seed string, suggestions []string, fetchedAt time.Time) error
	GetSuggestions(ctx context.Context, seed string, maxAge time.Duration, now time.Time) ([]string, bool, error)
	DeleteSuggestionsBefore(ctx context.Context, before time.Time) (int, error)
}

// Plan is a stored plan. Body holds the JSON-encoded plan; ListPlans leaves
// it empty.
type Plan struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Keywords  int
	Budget    float64
	Body      []byte
}

// DefaultListLimit is used when ListPlans is called with limit <= 0.
const DefaultListLimit = 20
