package semplan

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/campaign"
	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/store/memstore"
)

var (
	fixedNow    = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	constraints = bid.Constraints{
		AverageOrderValue:    2000,
		ProfitMargin:         0.4,
		TargetConversionRate: 0.03,
		TargetROAS:           5.0,
	}
	scenarioBudget = campaign.BudgetAllocation{
		Total: 10000,
		Shares: map[campaign.Type]float64{
			campaign.TypeSearch:         5000,
			campaign.TypeShopping:       2000,
			campaign.TypePerformanceMax: 3000,
		},
	}
)

func newTestPlanner(opts Options) *Planner {
	opts.Now = func() time.Time { return fixedNow }
	opts.Entropy = ulid.Monotonic(rand.New(rand.NewSource(1)), 0)
	return New(opts)
}

func runningShoes() []keyword.Candidate {
	return []keyword.Candidate{
		{Text: "buy running shoes", Source: keyword.SourceAutocomplete},
		{Text: "Buy Running Shoes", Source: keyword.SourceWebsite},
		{Text: "running shoes reviews", Source: keyword.SourceWebsite},
	}
}

func TestPlanRunningShoesScenario(t *testing.T) {
	p := newTestPlanner(Options{})

	plan, err := p.Plan(context.Background(), Request{
		Name:        "shoes",
		Candidates:  runningShoes(),
		Budget:      scenarioBudget,
		Constraints: constraints,
	})
	require.NoError(t, err)

	require.Len(t, plan.Keywords, 2)
	first, second := plan.Keywords[0], plan.Keywords[1]
	assert.Equal(t, keyword.NewSourceSet(keyword.SourceAutocomplete, keyword.SourceWebsite), first.Sources)
	assert.Equal(t, keyword.IntentCommercial, first.Intent)
	assert.Equal(t, keyword.IntentInformational, second.Intent)

	assert.Equal(t, 5000.0, plan.Campaign(campaign.TypeSearch).Budget)
	assert.Equal(t, 2000.0, plan.Campaign(campaign.TypeShopping).Budget)
	assert.Equal(t, 3000.0, plan.Campaign(campaign.TypePerformanceMax).Budget)

	assert.Equal(t, 3, plan.Candidates)
	assert.Equal(t, fixedNow, plan.CreatedAt)
	assert.Len(t, plan.ID, 26)
}

func TestPlanInvariants(t *testing.T) {
	p := newTestPlanner(Options{})
	candidates := []keyword.Candidate{
		{Text: "crm", Source: keyword.SourceSeed},
		{Text: "best crm software", Source: keyword.SourceTemplate},
		{Text: "crm pricing", Source: keyword.SourceAutocomplete},
		{Text: "crm pricing", Source: keyword.SourceCompetitor},
		{Text: "how to choose a crm", Source: keyword.SourceAutocomplete},
		{Text: "crm consultant near me", Source: keyword.SourceAutocomplete},
		{Text: "acme crm login", Source: keyword.SourceWebsite},
		{Text: "crm product catalog", Source: keyword.SourceWebsite, Catalog: true},
		{Text: "salesforce alternative", Source: keyword.SourceCompetitor, Weight: 2},
	}

	plan, err := p.Plan(context.Background(), Request{
		Candidates:  candidates,
		Budget:      campaign.BudgetAllocation{Total: 7777.77},
		Constraints: constraints,
	})
	require.NoError(t, err)

	ceiling, err := constraints.Ceiling()
	require.NoError(t, err)

	for _, r := range plan.Keywords {
		assert.GreaterOrEqual(t, r.Score, 0)
		assert.LessOrEqual(t, r.Score, 100)
		assert.GreaterOrEqual(t, r.Bid, 0.0)
		assert.LessOrEqual(t, r.Bid, ceiling)
		assert.False(t, r.Sources.Empty())
	}

	total := 0.0
	seen := make(map[string]int)
	for _, c := range plan.Campaigns {
		total += c.Budget
		for _, g := range c.AdGroups {
			for _, m := range g.Keywords {
				seen[m.Text]++
			}
		}
	}
	assert.InDelta(t, 7777.77, total, 0.01)
	assert.Len(t, seen, len(plan.Keywords))
	for text, n := range seen {
		assert.Equal(t, 1, n, text)
	}
	assert.Equal(t, len(plan.Keywords), plan.Bids.Computed)
}

func TestPlanMalformedBudgetFailsFirst(t *testing.T) {
	p := newTestPlanner(Options{})

	_, err := p.Plan(context.Background(), Request{
		Budget: campaign.BudgetAllocation{Total: 100, Shares: map[campaign.Type]float64{campaign.TypeSearch: 50}},
	})
	assert.ErrorIs(t, err, internalerr.ErrMalformedBudgetAllocation)
}

func TestPlanEmptySourceSet(t *testing.T) {
	p := newTestPlanner(Options{})

	_, err := p.Plan(context.Background(), Request{
		Candidates:  []keyword.Candidate{{Text: "   ", Source: keyword.SourceSeed}},
		Budget:      campaign.BudgetAllocation{Total: 100},
		Constraints: constraints,
	})
	assert.ErrorIs(t, err, internalerr.ErrEmptySourceSet)
}

func TestPlanInvalidConstraintsFlagsKeywords(t *testing.T) {
	p := newTestPlanner(Options{})
	bad := constraints
	bad.TargetROAS = 0

	plan, err := p.Plan(context.Background(), Request{
		Candidates:  runningShoes(),
		Budget:      scenarioBudget,
		Constraints: bad,
	})
	require.NoError(t, err)

	require.Len(t, plan.Keywords, 2)
	for _, r := range plan.Keywords {
		assert.True(t, r.BidInvalid)
		assert.Equal(t, 0.0, r.Bid)
	}
	assert.Equal(t, 2, plan.Bids.Invalid)
	assert.Equal(t, []string{"buy running shoes", "running shoes reviews"}, plan.Recommendations.InvalidBids)
}

func TestPlanPersistence(t *testing.T) {
	ctx := context.Background()
	p := newTestPlanner(Options{Store: memstore.New()})
	defer p.Close()

	plan, err := p.Plan(ctx, Request{
		Name:        "stored",
		Candidates:  runningShoes(),
		Budget:      scenarioBudget,
		Constraints: constraints,
	})
	require.NoError(t, err)

	got, err := p.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, "stored", got.Name)
	require.Len(t, got.Keywords, 2)
	assert.Equal(t, plan.Keywords[0].Text, got.Keywords[0].Text)
	assert.Equal(t, plan.Keywords[0].Sources, got.Keywords[0].Sources)
	assert.Equal(t, plan.Keywords[0].Intent, got.Keywords[0].Intent)
	require.Len(t, got.Campaigns, 3)
	assert.Equal(t, plan.Campaigns[0].Budget, got.Campaigns[0].Budget)

	second, err := p.Plan(ctx, Request{Candidates: runningShoes(), Budget: scenarioBudget, Constraints: constraints})
	require.NoError(t, err)
	assert.NotEqual(t, plan.ID, second.ID)
	assert.Less(t, plan.ID, second.ID, "monotonic ids within one millisecond")

	list, err := p.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = p.Get(ctx, "nope")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestPlannerWithoutStore(t *testing.T) {
	p := newTestPlanner(Options{})

	_, err := p.Get(context.Background(), "x")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	list, err := p.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, p.Close())
}
