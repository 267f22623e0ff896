package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/semplan/internal/source"
	"github.com/cognicore/semplan/pkg/semplan"
	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/campaign"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveSource(t *testing.T) {
	m := New()
	m.ObserveSource(source.Report{Kind: keyword.SourceAutocomplete, Count: 12, Duration: 200 * time.Millisecond})
	m.ObserveSource(source.Report{Kind: keyword.SourceAutocomplete, Count: 3})
	m.ObserveSource(source.Report{Kind: keyword.SourceWebsite, Err: errors.New("timeout")})

	body := scrape(t, m)
	assert.Contains(t, body, `semplan_source_candidates_total{source="AUTOCOMPLETE"} 15`)
	assert.Contains(t, body, `semplan_source_errors_total{source="WEBSITE_CONTENT"} 1`)
	assert.Contains(t, body, `semplan_source_duration_seconds_count{source="AUTOCOMPLETE"} 2`)
	assert.NotContains(t, body, `semplan_source_candidates_total{source="WEBSITE_CONTENT"}`)
}

func TestObservePlan(t *testing.T) {
	m := New()
	plan := &semplan.Plan{
		Keywords: []*keyword.Record{{Text: "a"}, {Text: "b"}},
		Bids:     bid.Summary{Invalid: 2},
		Campaigns: []campaign.Campaign{
			{Type: campaign.TypeSearch, Budget: 5000},
			{Type: campaign.TypeShopping, Budget: 2000},
		},
	}
	m.ObservePlan(plan, nil)
	m.ObservePlan(nil, errors.New("no candidates"))

	body := scrape(t, m)
	assert.Contains(t, body, `semplan_plans_total{outcome="ok"} 1`)
	assert.Contains(t, body, `semplan_plans_total{outcome="error"} 1`)
	assert.Contains(t, body, `semplan_plan_keywords_sum 2`)
	assert.Contains(t, body, `semplan_invalid_bids_total 2`)
	assert.Contains(t, body, `semplan_last_campaign_budget{type="SEARCH"} 5000`)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObservePlan(nil, errors.New("x"))
	assert.NotContains(t, scrape(t, b), `semplan_plans_total{outcome="error"}`)
}
