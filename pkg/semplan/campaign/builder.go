package campaign

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/stoplist"
)

// Builder turns scored and bid keywords into the campaign structure.
type Builder struct {
	policy       Policy
	themer       Themer
	stops        *stoplist.Manager
	modifiers    map[string]struct{}
	catalogTerms map[string]struct{}
}

// NewBuilder creates a builder. themer and stops may be nil.
func NewBuilder(p Policy, themer Themer, stops *stoplist.Manager) *Builder {
	return &Builder{
		policy:       p,
		themer:       themer,
		stops:        stops,
		modifiers:    toSet(p.Modifiers),
		catalogTerms: toSet(p.CatalogTerms),
	}
}

// Build groups records, assigns every group to one campaign, splits the
// budget and projects performance. All three campaign types are always
// present so their budgets sum to the total. A malformed allocation fails
// with internalerr.ErrMalformedBudgetAllocation before anything is built.
func (b *Builder) Build(records []*keyword.Record, alloc BudgetAllocation, c bid.Constraints) (*Result, error) {
	budgets, err := alloc.Split(b.policy.DefaultSplit)
	if err != nil {
		return nil, err
	}
	cvr := conversionRate(c.TargetConversionRate)

	members := make(map[Type][]*keyword.Record)
	groups := make(map[Type][]AdGroup)
	for _, g := range b.groupRecords(records) {
		t := b.assign(g)
		groups[t] = append(groups[t], b.adGroup(g, t))
		members[t] = append(members[t], g.members...)
	}

	res := &Result{
		Recommendations: b.recommend(records),
		Distribution:    distribution(records),
	}
	projections := make([]Projection, 0, len(Types()))
	for _, t := range Types() {
		camp := Campaign{
			Type:        t,
			Budget:      budgets[t],
			DailyBudget: roundCents(budgets[t] / float64(b.days())),
			AdGroups:    groups[t],
			Projection:  b.project(members[t], budgets[t], cvr),
		}
		if camp.AdGroups == nil {
			camp.AdGroups = []AdGroup{}
		}
		switch t {
		case TypeShopping:
			camp.ProductGroups = b.productGroups(members[t])
		case TypePerformanceMax:
			spreadBudget(camp.AdGroups, camp.Budget)
		}
		projections = append(projections, camp.Projection)
		res.Campaigns = append(res.Campaigns, camp)
	}
	res.Totals = sumProjections(projections)
	return res, nil
}

func (b *Builder) adGroup(g *group, t Type) AdGroup {
	ag := AdGroup{
		Name:       fmt.Sprintf("%s - %s", strings.ToLower(g.intent.String()), g.theme),
		Intent:     g.intent,
		Theme:      g.theme,
		Kind:       KindKeywords,
		Catalog:    b.catalog(g),
		Confidence: round2(g.meanConfidence()),
		Volume:     g.volume(),
		Keywords:   make([]Member, 0, len(g.members)),
	}
	switch t {
	case TypePerformanceMax:
		ag.Kind = KindAssetTheme
		ag.ThemeType = themeType(g.intent)
		ag.AudienceSignals = audienceSignals(ag.ThemeType)
		ag.OptimizationFocus = optimizationFocus(ag.ThemeType)
	case TypeSearch:
		ag.Ads = adSuggestions(g.intent, g.members)
	}
	for _, rec := range g.members {
		m := Member{Record: rec}
		if ag.Kind == KindKeywords {
			m.MatchTypes = matchTypes(rec.WordCount())
		}
		ag.Keywords = append(ag.Keywords, m)
	}
	return ag
}

// spreadBudget gives every asset theme an equal share of the campaign budget.
// The last theme absorbs the cent remainder.
func spreadBudget(groups []AdGroup, budget float64) {
	if len(groups) == 0 {
		return
	}
	each := math.Floor(budget/float64(len(groups))*100) / 100
	assigned := 0.0
	for i := range groups {
		if i == len(groups)-1 {
			groups[i].AllocatedBudget = roundCents(math.Max(0, budget-assigned))
			break
		}
		groups[i].AllocatedBudget = each
		assigned += each
	}
}

// productGroups suggests Shopping product groups: distinct topical tokens
// longer than three characters, in first-seen order.
func (b *Builder) productGroups(records []*keyword.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		for _, w := range rec.Words() {
			if len([]rune(w)) <= 3 || seen[w] || b.filler(w) {
				continue
			}
			if _, ok := b.catalogTerms[w]; ok {
				continue
			}
			seen[w] = true
			out = append(out, w)
			if b.policy.MaxProductGroups > 0 && len(out) == b.policy.MaxProductGroups {
				return out
			}
		}
	}
	return out
}

func (b *Builder) days() int {
	if b.policy.DaysPerMonth <= 0 {
		return 30
	}
	return b.policy.DaysPerMonth
}

func toSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}
