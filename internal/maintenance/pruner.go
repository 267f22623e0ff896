// Package maintenance keeps the plan store from growing without bound.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cognicore/semplan/pkg/semplan/store"
)

// Retention says how long each kind of record is kept. Zero keeps it forever.
type Retention struct {
	Plans       time.Duration
	Suggestions time.Duration
}

// Pruner deletes plans and cached suggestions older than a Retention.
type Pruner struct {
	Store store.Store
	Now   func() time.Time
}

// Result summarizes the pruning run.
type Result struct {
	Plans       int
	Suggestions int
}

// Prune deletes expired records. Suggestions are pruned even when deleting
// plans fails; the first error is returned with the counts so far.
func (p *Pruner) Prune(ctx context.Context, r Retention) (Result, error) {
	var res Result
	if p.Store == nil {
		return res, errors.New("pruner: invalid configuration")
	}
	if r.Plans < 0 || r.Suggestions < 0 {
		return res, fmt.Errorf("pruner: negative retention %+v", r)
	}
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	var errs []error
	if r.Plans > 0 {
		n, err := p.Store.DeletePlansBefore(ctx, now.Add(-r.Plans))
		if err != nil {
			errs = append(errs, fmt.Errorf("prune plans: %w", err))
		}
		res.Plans = n
	}
	if r.Suggestions > 0 {
		n, err := p.Store.DeleteSuggestionsBefore(ctx, now.Add(-r.Suggestions))
		if err != nil {
			errs = append(errs, fmt.Errorf("prune suggestions: %w", err))
		}
		res.Suggestions = n
	}
	return res, errors.Join(errs...)
}
