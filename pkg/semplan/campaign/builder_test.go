package campaign

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/stoplist"
)

// markers is a minimal Themer for tests.
type markers map[string]bool

func (m markers) IsMarker(tok string) bool { return m[tok] }

var testMarkers = markers{"buy": true, "near": true, "me": true, "how": true, "reviews": true, "login": true}

var constraints = bid.Constraints{
	AverageOrderValue:    2000,
	ProfitMargin:         0.4,
	TargetConversionRate: 0.03,
	TargetROAS:           5,
}

func newTestBuilder() *Builder {
	return NewBuilder(DefaultPolicy(), testMarkers, stoplist.Default())
}

func fixture() []*keyword.Record {
	return []*keyword.Record{
		{Text: "buy running shoes", Intent: keyword.IntentCommercial, Confidence: 1, Volume: 1500, Bid: 1.2, Score: 72, Competition: 0.4},
		{Text: "running shoes reviews", Intent: keyword.IntentInformational, Confidence: 1, Volume: 600, Bid: 0.8, Score: 35, Competition: 0.3},
		{Text: "trail shoes", Intent: keyword.IntentCommercial, Confidence: 0.9, Volume: 900, Bid: 1.0, Score: 60, Competition: 0.5},
		{Text: "shoe store near me", Intent: keyword.IntentLocal, Confidence: 1, Volume: 400, Bid: 0.9, Score: 55, Competition: 0.5},
		{Text: "acme login", Intent: keyword.IntentNavigational, Confidence: 0.3, Volume: 200, Bid: 0.5, Score: 40, Competition: 0.2},
		{Text: "how to lace running shoes", Intent: keyword.IntentInformational, Confidence: 1, Volume: 300, Bid: 0.4, Score: 30, Competition: 0.1},
		{Text: "marathon socks", Intent: keyword.IntentCommercial, Confidence: 0.5, Volume: 2000, Bid: 1.1, Score: 45, Competition: 0.6, Catalog: true},
		{Text: "enterprise crm software", Intent: keyword.IntentCommercial, Confidence: 1, Volume: 120, Bid: 5.5, Score: 80, Competition: 0.2},
	}
}

func TestBuildScenarioBudgets(t *testing.T) {
	b := newTestBuilder()
	alloc := BudgetAllocation{
		Total:  10000,
		Shares: map[Type]float64{TypeSearch: 5000, TypeShopping: 2000, TypePerformanceMax: 3000},
	}
	res, err := b.Build(fixture(), alloc, constraints)
	require.NoError(t, err)

	require.Len(t, res.Campaigns, 3)
	assert.Equal(t, 5000.0, res.Campaign(TypeSearch).Budget)
	assert.Equal(t, 2000.0, res.Campaign(TypeShopping).Budget)
	assert.Equal(t, 3000.0, res.Campaign(TypePerformanceMax).Budget)
	assert.InDelta(t, 166.67, res.Campaign(TypeSearch).DailyBudget, 1e-9)
}

func TestBuildNoDuplicateAssignment(t *testing.T) {
	records := fixture()
	res, err := newTestBuilder().Build(records, BudgetAllocation{Total: 5000}, constraints)
	require.NoError(t, err)

	seen := make(map[*keyword.Record]int)
	for _, c := range res.Campaigns {
		for _, g := range c.AdGroups {
			require.NotEmpty(t, g.Keywords, "ad group %q", g.Name)
			for _, m := range g.Keywords {
				seen[m.Record]++
			}
		}
	}
	require.Len(t, seen, len(records))
	for _, r := range records {
		assert.Equal(t, 1, seen[r], "%q", r.Text)
	}
}

func TestBuildAssignment(t *testing.T) {
	res, err := newTestBuilder().Build(fixture(), BudgetAllocation{Total: 5000}, constraints)
	require.NoError(t, err)

	where := make(map[string]Type)
	for _, c := range res.Campaigns {
		for _, g := range c.AdGroups {
			for _, m := range g.Keywords {
				where[m.Text] = c.Type
			}
		}
	}
	want := map[string]Type{
		"buy running shoes":         TypeSearch,
		"trail shoes":               TypeSearch,
		"enterprise crm software":   TypeSearch,
		"shoe store near me":        TypeSearch,
		"marathon socks":            TypeShopping, // catalog hint
		"acme login":                TypePerformanceMax,
		"running shoes reviews":     TypePerformanceMax,
		"how to lace running shoes": TypePerformanceMax,
	}
	if diff := cmp.Diff(want, where); diff != "" {
		t.Fatalf("assignment mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildGrouping(t *testing.T) {
	res, err := newTestBuilder().Build(fixture(), BudgetAllocation{Total: 5000}, constraints)
	require.NoError(t, err)

	search := res.Campaign(TypeSearch)
	var names []string
	for _, g := range search.AdGroups {
		names = append(names, g.Name)
	}
	// "buy running shoes" and "trail shoes" share the head term "shoes";
	// "enterprise crm software" keeps its own group
	assert.Equal(t, []string{"commercial - shoes", "commercial - crm", "local - store"}, names)
	assert.Len(t, search.AdGroups[0].Keywords, 2)
	assert.Equal(t, KindKeywords, search.AdGroups[0].Kind)

	pmax := res.Campaign(TypePerformanceMax)
	require.Len(t, pmax.AdGroups, 2)
	assert.Equal(t, "navigational - acme", pmax.AdGroups[0].Name)
	assert.Equal(t, ThemeBrand, pmax.AdGroups[0].ThemeType)
	assert.Equal(t, "informational - shoes", pmax.AdGroups[1].Name)
	assert.Equal(t, ThemeUseCase, pmax.AdGroups[1].ThemeType)
	for _, g := range pmax.AdGroups {
		assert.Equal(t, KindAssetTheme, g.Kind)
		for _, m := range g.Keywords {
			assert.Empty(t, m.MatchTypes)
		}
	}
}

func TestBuildAssetThemeDetails(t *testing.T) {
	res, err := newTestBuilder().Build(fixture(), BudgetAllocation{Total: 5000}, constraints)
	require.NoError(t, err)

	pmax := res.Campaign(TypePerformanceMax)
	require.Len(t, pmax.AdGroups, 2)

	brand := pmax.AdGroups[0]
	assert.Equal(t, 750.0, brand.AllocatedBudget)
	assert.Equal(t, []AudienceSignal{SignalWebsiteVisitors, SignalSimilarAudiences, SignalDemographic}, brand.AudienceSignals)
	assert.Equal(t, FocusBrandAwareness, brand.OptimizationFocus)
	assert.Empty(t, brand.Ads)

	useCase := pmax.AdGroups[1]
	assert.Equal(t, 750.0, useCase.AllocatedBudget)
	assert.Equal(t, []AudienceSignal{SignalInMarket, SignalContentEngagement, SignalCustomIntent}, useCase.AudienceSignals)
	assert.Equal(t, FocusConversionVolume, useCase.OptimizationFocus)

	for _, g := range res.Campaign(TypeSearch).AdGroups {
		assert.Zero(t, g.AllocatedBudget, g.Name)
		assert.Empty(t, g.AudienceSignals, g.Name)
		assert.Empty(t, g.OptimizationFocus, g.Name)
	}
}

func TestSpreadBudgetConserves(t *testing.T) {
	groups := make([]AdGroup, 3)
	spreadBudget(groups, 100)
	assert.Equal(t, []float64{33.33, 33.33, 33.34},
		[]float64{groups[0].AllocatedBudget, groups[1].AllocatedBudget, groups[2].AllocatedBudget})

	spreadBudget(nil, 100)
}

func TestThemeDetailsPerType(t *testing.T) {
	tests := []struct {
		theme   ThemeType
		signals []AudienceSignal
		focus   OptimizationFocus
	}{
		{ThemeProductCategory, []AudienceSignal{SignalProductSearchers, SignalWebsiteVisitors, SignalSimilarToConverters}, FocusConversionValue},
		{ThemeUseCase, []AudienceSignal{SignalInMarket, SignalContentEngagement, SignalCustomIntent}, FocusConversionVolume},
		{ThemeGeographic, []AudienceSignal{SignalLocalArea, SignalNearBusiness, SignalLocalServiceSearchers}, FocusLocalActions},
		{ThemeBrand, []AudienceSignal{SignalWebsiteVisitors, SignalSimilarAudiences, SignalDemographic}, FocusBrandAwareness},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.signals, audienceSignals(tt.theme), tt.theme)
		assert.Equal(t, tt.focus, optimizationFocus(tt.theme), tt.theme)
	}
}

func TestBuildSearchAds(t *testing.T) {
	res, err := newTestBuilder().Build(fixture(), BudgetAllocation{Total: 5000}, constraints)
	require.NoError(t, err)

	ads := make(map[string][]AdSuggestion)
	for _, g := range res.Campaign(TypeSearch).AdGroups {
		ads[g.Name] = g.Ads
	}
	want := map[string][]AdSuggestion{
		"commercial - shoes": {
			{Template: AdBestOf, Keyword: "buy running shoes"},
			{Template: AdProfessional, Keyword: "buy running shoes"},
		},
		"commercial - crm": {
			{Template: AdBestOf, Keyword: "enterprise crm software"},
			{Template: AdProfessional, Keyword: "enterprise crm software"},
		},
		"local - store": {
			{Template: AdLocal, Keyword: "shoe store near me"},
		},
	}
	if diff := cmp.Diff(want, ads); diff != "" {
		t.Fatalf("ads mismatch (-want +got):\n%s", diff)
	}
}

func TestAdSuggestionsTopScore(t *testing.T) {
	members := []*keyword.Record{
		{Text: "crm guide", Score: 40},
		{Text: "what is crm", Score: 65},
		{Text: "crm basics", Score: 65},
	}
	assert.Equal(t, []AdSuggestion{{Template: AdLearnAbout, Keyword: "what is crm"}},
		adSuggestions(keyword.IntentInformational, members))
	assert.Equal(t, []AdSuggestion{{Template: AdGeneric, Keyword: "what is crm"}},
		adSuggestions(keyword.IntentNavigational, members))
	assert.Nil(t, adSuggestions(keyword.IntentCommercial, nil))
}

func TestHeadTerm(t *testing.T) {
	b := newTestBuilder()
	tests := map[string]string{
		"buy running shoes":       "shoes",
		"running shoes reviews":   "shoes",
		"best crm software":       "crm",
		"near me":                 "me",
		"shoes for the beach":     "beach",
		"crm for small teams":     "teams",
		"enterprise tool":         "tool",
		"how to buy":              "buy",
		"running shoes near me":   "shoes",
		"professional services":   "services",
		"analytics platform demo": "demo",
	}
	for in, want := range tests {
		rec := &keyword.Record{Text: in}
		assert.Equal(t, want, b.headTerm(rec.Words()), in)
	}
}

func TestMatchTypes(t *testing.T) {
	assert.Equal(t, []MatchType{MatchPhrase, MatchBroad}, matchTypes(1))
	assert.Equal(t, []MatchType{MatchExact, MatchPhrase, MatchBroad}, matchTypes(2))
	assert.Equal(t, []MatchType{MatchExact, MatchPhrase}, matchTypes(5))
}

func TestBuildProductGroups(t *testing.T) {
	res, err := newTestBuilder().Build(fixture(), BudgetAllocation{Total: 5000}, constraints)
	require.NoError(t, err)
	assert.Equal(t, []string{"marathon", "socks"}, res.Campaign(TypeShopping).ProductGroups)
}

func TestBuildProjection(t *testing.T) {
	b := newTestBuilder()
	records := []*keyword.Record{
		{Text: "buy shoes", Intent: keyword.IntentCommercial, Confidence: 1, Volume: 1000, Bid: 2},
		{Text: "shoes price", Intent: keyword.IntentCommercial, Confidence: 1, Volume: 1000, Bid: 1},
	}
	res, err := b.Build(records, BudgetAllocation{Total: 1000}, constraints)
	require.NoError(t, err)

	search := res.Campaign(TypeSearch)
	// clicks = 2 × 1000 × 0.05 = 100; conversions = 3; spend = 2×50 + 1×50 = 150
	assert.InDelta(t, 100, search.Projection.Clicks, 1e-9)
	assert.InDelta(t, 3, search.Projection.Conversions, 1e-9)
	assert.InDelta(t, 150, search.Projection.Cost, 1e-9)
	require.NotNil(t, search.Projection.CPA)
	assert.InDelta(t, 50, *search.Projection.CPA, 1e-9)

	assert.InDelta(t, 100, res.Totals.Clicks, 1e-9)
	require.NotNil(t, res.Totals.CPA)
	assert.InDelta(t, 50, *res.Totals.CPA, 1e-9)
}

func TestBuildProjectionCostCappedAtBudget(t *testing.T) {
	records := []*keyword.Record{
		{Text: "buy shoes", Intent: keyword.IntentCommercial, Confidence: 1, Volume: 100000, Bid: 4},
	}
	res, err := newTestBuilder().Build(records, BudgetAllocation{Total: 1000}, constraints)
	require.NoError(t, err)
	assert.Equal(t, 500.0, res.Campaign(TypeSearch).Projection.Cost)
}

func TestBuildCPAUndefined(t *testing.T) {
	records := []*keyword.Record{
		{Text: "buy shoes", Intent: keyword.IntentCommercial, Confidence: 1, Volume: 20, Bid: 1},
	}
	res, err := newTestBuilder().Build(records, BudgetAllocation{Total: 1000}, constraints)
	require.NoError(t, err)

	// 20 × 0.05 × 0.03 = 0.03 conversions
	search := res.Campaign(TypeSearch)
	assert.Equal(t, 0.03, search.Projection.Conversions)
	assert.NotNil(t, search.Projection.CPA)

	empty := res.Campaign(TypeShopping)
	assert.Equal(t, 0.0, empty.Projection.Conversions)
	assert.Nil(t, empty.Projection.CPA)

	zeroCVR := constraints
	zeroCVR.TargetConversionRate = 0
	res, err = newTestBuilder().Build(records, BudgetAllocation{Total: 1000}, zeroCVR)
	require.NoError(t, err)
	assert.Nil(t, res.Campaign(TypeSearch).Projection.CPA)
	assert.Nil(t, res.Totals.CPA)
}

func TestBuildEmptyCampaignsStillBudgeted(t *testing.T) {
	records := []*keyword.Record{
		{Text: "how to run", Intent: keyword.IntentInformational, Confidence: 1, Volume: 100},
	}
	res, err := newTestBuilder().Build(records, BudgetAllocation{Total: 999.99}, constraints)
	require.NoError(t, err)

	total := 0.0
	for _, c := range res.Campaigns {
		total += c.Budget
		assert.NotNil(t, c.AdGroups)
	}
	assert.InDelta(t, 999.99, total, 0.01)
	assert.Empty(t, res.Campaign(TypeSearch).AdGroups)
}

func TestBuildMalformedBudget(t *testing.T) {
	alloc := BudgetAllocation{Total: 10000, Shares: map[Type]float64{TypeSearch: 9000}}
	_, err := newTestBuilder().Build(fixture(), alloc, constraints)
	assert.ErrorIs(t, err, internalerr.ErrMalformedBudgetAllocation)
}

func TestRecommendations(t *testing.T) {
	records := fixture()
	records[6].BidInvalid = true
	res, err := newTestBuilder().Build(records, BudgetAllocation{Total: 5000}, constraints)
	require.NoError(t, err)

	want := Recommendations{
		HighVolumeLowScore: []string{"marathon socks"},
		HighBid:            []string{"enterprise crm software"},
		Opportunities:      []string{"enterprise crm software"},
		InvalidBids:        []string{"marathon socks"},
	}
	if diff := cmp.Diff(want, res.Recommendations); diff != "" {
		t.Fatalf("recommendations mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Distribution{High: 2, Medium: 4, Low: 2}, res.Distribution)
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.DefaultSplit = map[Type]float64{TypeSearch: 0.6, TypeShopping: 0.6}
	assert.ErrorIs(t, p.Validate(), internalerr.ErrInvalidConfig)

	p = DefaultPolicy()
	p.DefaultSplit = map[Type]float64{"search": 0.5, "shopping": 0.2, "pmax": 0.3}
	assert.ErrorIs(t, p.Validate(), internalerr.ErrInvalidConfig)

	p = DefaultPolicy()
	p.CTR[keyword.IntentLocal] = 1.5
	assert.ErrorIs(t, p.Validate(), internalerr.ErrInvalidConfig)
}
