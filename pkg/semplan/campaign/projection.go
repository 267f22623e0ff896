package campaign

import (
	"math"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// project estimates monthly performance for a set of keywords:
//
//	clicks      = Σ volume × ctr(intent)
//	conversions = clicks × conversion rate
//	cost        = min(Σ bid × volume × ctr(intent), budget)
//	cpa         = cost / conversions, undefined when conversions round to 0
func (b *Builder) project(records []*keyword.Record, budget, cvr float64) Projection {
	clicks, spend := 0.0, 0.0
	for _, rec := range records {
		c := float64(rec.Volume) * b.policy.CTR[rec.Intent]
		clicks += c
		spend += rec.Bid * c
	}
	return newProjection(clicks, clicks*cvr, math.Min(spend, budget))
}

func newProjection(clicks, conversions, cost float64) Projection {
	p := Projection{
		Clicks:      round2(clicks),
		Conversions: round2(conversions),
		Cost:        roundCents(cost),
	}
	if p.Conversions > 0 {
		cpa := roundCents(cost / conversions)
		p.CPA = &cpa
	}
	return p
}

// sumProjections aggregates campaign projections with the same CPA rule.
func sumProjections(ps []Projection) Projection {
	var clicks, conversions, cost float64
	for _, p := range ps {
		clicks += p.Clicks
		conversions += p.Conversions
		cost += p.Cost
	}
	return newProjection(clicks, conversions, cost)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// conversionRate sanitizes the target conversion rate into [0,1].
func conversionRate(cvr float64) float64 {
	if math.IsNaN(cvr) || cvr < 0 {
		return 0
	}
	return math.Min(cvr, 1)
}
