// Package semplan assembles search-advertising campaign plans from keyword
// candidates: normalize, aggregate, classify, score, bid and build.
package semplan

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/campaign"
	"github.com/cognicore/semplan/pkg/semplan/ingest"
	"github.com/cognicore/semplan/pkg/semplan/intent"
	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/rank"
	"github.com/cognicore/semplan/pkg/semplan/stoplist"
	"github.com/cognicore/semplan/pkg/semplan/store"
)

// Planner is the main planning facade
type Planner struct {
	aggregator *ingest.Aggregator
	classifier *intent.Classifier
	scorer     *rank.Scorer
	optimizer  *bid.Optimizer
	builder    *campaign.Builder
	store      store.Store
	now        func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// Options configures a Planner. Nil stages use their defaults; a nil Store
// disables persistence.
type Options struct {
	Aggregator *ingest.Aggregator
	Classifier *intent.Classifier
	Scorer     *rank.Scorer
	Optimizer  *bid.Optimizer
	Builder    *campaign.Builder
	Store      store.Store

	Now     func() time.Time
	Entropy io.Reader
}

// New creates a Planner with the given dependencies
func New(opts Options) *Planner {
	p := &Planner{
		aggregator: opts.Aggregator,
		classifier: opts.Classifier,
		scorer:     opts.Scorer,
		optimizer:  opts.Optimizer,
		builder:    opts.Builder,
		store:      opts.Store,
		now:        opts.Now,
		entropy:    opts.Entropy,
	}
	if p.aggregator == nil {
		p.aggregator = ingest.NewAggregator(nil, nil, ingest.DefaultHeuristics())
	}
	if p.classifier == nil {
		p.classifier = intent.NewClassifier(intent.DefaultRules())
	}
	if p.scorer == nil {
		p.scorer = rank.NewScorer(rank.DefaultWeights(), rank.DefaultVolumeCap, nil)
	}
	if p.optimizer == nil {
		p.optimizer = bid.NewOptimizer(bid.DefaultPolicy())
	}
	if p.builder == nil {
		p.builder = campaign.NewBuilder(campaign.DefaultPolicy(), p.classifier, stoplist.Default())
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.entropy == nil {
		p.entropy = ulid.Monotonic(rand.Reader, 0)
	}
	return p
}

// Close cleanly shuts down the planner's store
func (p *Planner) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// Request is one planning run
type Request struct {
	Name        string                    `json:"name"`
	Candidates  []keyword.Candidate       `json:"candidates"`
	Budget      campaign.BudgetAllocation `json:"budget"`
	Constraints bid.Constraints           `json:"constraints"`
}

// Plan is the result of a planning run
type Plan struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	Candidates  int                       `json:"candidates"`
	Budget      campaign.BudgetAllocation `json:"budget"`
	Constraints bid.Constraints           `json:"constraints"`
	Keywords    []*keyword.Record         `json:"keywords"`
	Bids        bid.Summary               `json:"bids"`

	Campaigns       []campaign.Campaign      `json:"campaigns"`
	Totals          campaign.Projection      `json:"totals"`
	Recommendations campaign.Recommendations `json:"recommendations"`
	Distribution    campaign.Distribution    `json:"distribution"`
}

// Campaign returns the campaign of type t, or nil.
func (pl *Plan) Campaign(t campaign.Type) *campaign.Campaign {
	for i := range pl.Campaigns {
		if pl.Campaigns[i].Type == t {
			return &pl.Campaigns[i]
		}
	}
	return nil
}

// Plan runs the pipeline. The budget is validated before any stage runs.
// Invalid constraints do not fail the run: every keyword is kept with a zero
// bid and flagged. The context is only used for persistence.
func (p *Planner) Plan(ctx context.Context, req Request) (*Plan, error) {
	if err := req.Budget.Validate(); err != nil {
		return nil, err
	}

	records, err := p.aggregator.Aggregate(req.Candidates)
	if err != nil {
		return nil, err
	}
	p.classifier.Apply(records)
	p.scorer.Apply(records)
	bids := p.optimizer.Apply(records, req.Constraints)

	res, err := p.builder.Build(records, req.Budget, req.Constraints)
	if err != nil {
		return nil, err
	}

	now := p.now()
	plan := &Plan{
		ID:              p.newID(now),
		Name:            req.Name,
		CreatedAt:       now,
		Candidates:      len(req.Candidates),
		Budget:          req.Budget,
		Constraints:     req.Constraints,
		Keywords:        records,
		Bids:            bids,
		Campaigns:       res.Campaigns,
		Totals:          res.Totals,
		Recommendations: res.Recommendations,
		Distribution:    res.Distribution,
	}

	if p.store != nil {
		if err := p.save(ctx, plan); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (p *Planner) newID(now time.Time) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), p.entropy).String()
}

func (p *Planner) save(ctx context.Context, plan *Plan) error {
	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan %s: %w", plan.ID, err)
	}
	err = p.store.SavePlan(ctx, store.Plan{
		ID:        plan.ID,
		Name:      plan.Name,
		CreatedAt: plan.CreatedAt,
		Keywords:  len(plan.Keywords),
		Budget:    plan.Budget.Total,
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("save plan %s: %w", plan.ID, err)
	}
	return nil
}

// Get loads a stored plan by ID.
func (p *Planner) Get(ctx context.Context, id string) (*Plan, error) {
	if p.store == nil {
		return nil, fmt.Errorf("plan %q: no store configured: %w", id, internalerr.ErrNotFound)
	}
	rec, err := p.store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	var plan Plan
	if err := json.Unmarshal(rec.Body, &plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return &plan, nil
}

// List returns stored plan summaries, newest first.
func (p *Planner) List(ctx context.Context, limit int) ([]store.Plan, error) {
	if p.store == nil {
		return []store.Plan{}, nil
	}
	return p.store.ListPlans(ctx, limit)
}
