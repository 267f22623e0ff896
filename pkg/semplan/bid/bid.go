// Package bid turns business constraints and keyword scores into
// cost-per-click recommendations.
package bid

import (
	"fmt"
	"math"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Constraints are the advertiser's economics.
type Constraints struct {
	AverageOrderValue    float64 `json:"average_order_value" yaml:"average_order_value"`
	ProfitMargin         float64 `json:"profit_margin" yaml:"profit_margin"`
	TargetConversionRate float64 `json:"target_conversion_rate" yaml:"target_conversion_rate"`
	TargetROAS           float64 `json:"target_roas" yaml:"target_roas"` // ratio, 5.0 means 500%
}

// Ceiling returns the highest CPC that still meets the target ROAS:
//
//	AOV × margin × conversion rate / ROAS
//
// A ceiling that is not positive and finite is ErrInvalidConstraints.
func (c Constraints) Ceiling() (float64, error) {
	ceiling := c.AverageOrderValue * c.ProfitMargin * c.TargetConversionRate / c.TargetROAS
	if math.IsNaN(ceiling) || math.IsInf(ceiling, 0) || ceiling <= 0 {
		return 0, fmt.Errorf("ceiling bid %v from %+v: %w", ceiling, c, internalerr.ErrInvalidConstraints)
	}
	return ceiling, nil
}

// Validate reports whether the constraints yield a usable ceiling.
func (c Constraints) Validate() error {
	_, err := c.Ceiling()
	return err
}

// Policy shapes the recommended bid between the floor and the ceiling.
type Policy struct {
	Floor         float64 `yaml:"floor"`
	MinMultiplier float64 `yaml:"min_multiplier"` // applied at score 0
	MaxMultiplier float64 `yaml:"max_multiplier"` // applied at score 100
}

// DefaultPolicy returns no floor and a 0.6 to 1.4 multiplier range.
func DefaultPolicy() Policy {
	return Policy{Floor: 0, MinMultiplier: 0.6, MaxMultiplier: 1.4}
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if p.Floor < 0 || p.MinMultiplier < 0 || p.MaxMultiplier < p.MinMultiplier {
		return fmt.Errorf("bid policy %+v: %w", p, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Optimizer recommends bids.
type Optimizer struct {
	policy Policy
}

// NewOptimizer creates an optimizer for the given policy.
func NewOptimizer(p Policy) *Optimizer {
	return &Optimizer{policy: p}
}

// Recommend returns min(ceiling, max(floor, cpc × multiplier(score))) rounded
// down to whole cents. The result is never negative and never above the
// ceiling.
func (o *Optimizer) Recommend(rec *keyword.Record, c Constraints) (float64, error) {
	ceiling, err := c.Ceiling()
	if err != nil {
		return 0, err
	}
	return o.recommend(rec, ceiling), nil
}

func (o *Optimizer) recommend(rec *keyword.Record, ceiling float64) float64 {
	score := math.Max(0, math.Min(100, float64(rec.Score)))
	mult := o.policy.MinMultiplier + (o.policy.MaxMultiplier-o.policy.MinMultiplier)*score/100

	bid := math.Max(o.policy.Floor, math.Max(0, rec.CPC)*mult)
	bid = math.Min(ceiling, bid)
	return floorCents(bid)
}

// Summary counts the outcome of Apply.
type Summary struct {
	Ceiling    float64                     `json:"ceiling_bid"`
	Computed   int                         `json:"computed"`
	Invalid    int                         `json:"invalid"`
	Strategies map[keyword.BidStrategy]int `json:"strategies"`
}

// Apply sets Bid, BidInvalid and Strategy on every record. When the
// constraints are invalid every record is kept with Bid 0 and BidInvalid set.
func (o *Optimizer) Apply(records []*keyword.Record, c Constraints) Summary {
	sum := Summary{Strategies: make(map[keyword.BidStrategy]int)}

	ceiling, err := c.Ceiling()
	for _, rec := range records {
		rec.Strategy = Strategy(rec.Score, rec.Competition)
		sum.Strategies[rec.Strategy]++

		if err != nil {
			rec.Bid, rec.BidInvalid = 0, true
			sum.Invalid++
			continue
		}
		rec.Bid, rec.BidInvalid = o.recommend(rec, ceiling), false
		sum.Computed++
	}
	if err == nil {
		sum.Ceiling = floorCents(ceiling)
	}
	return sum
}

// Strategy labels a keyword by score and competition.
func Strategy(score int, competition float64) keyword.BidStrategy {
	switch {
	case score >= 80 && competition <= 0.4:
		return keyword.StrategyAggressive
	case score >= 70 && competition <= 0.6:
		return keyword.StrategyModerate
	case score >= 50:
		return keyword.StrategyConservative
	case competition >= 0.8:
		return keyword.StrategyCautious
	default:
		return keyword.StrategyLowPriority
	}
}

// floorCents truncates to whole cents, tolerating binary representation error
// without ever rounding above v.
func floorCents(v float64) float64 {
	c := math.Floor(v*100+1e-9) / 100
	if c > v {
		c = math.Floor(v*100) / 100
	}
	return math.Max(0, c)
}
