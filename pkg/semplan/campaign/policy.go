package campaign

import (
	"fmt"
	"math"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Policy holds the tunable constants of the builder.
type Policy struct {
	// DefaultSplit is used when a budget allocation carries no shares.
	// Fractions must be non-negative and sum to 1.
	DefaultSplit map[Type]float64

	// CTR is the assumed click-through rate per intent.
	CTR map[keyword.Intent]float64

	// MinSearchConfidence is the mean classifier confidence a
	// COMMERCIAL, LOCAL or NAVIGATIONAL group needs to go to SEARCH.
	MinSearchConfidence float64

	// CatalogTerms mark a group as product-catalog material. Words that
	// also signal local or transactional intent ("store", "shop") do not
	// belong here.
	CatalogTerms []string

	// Modifiers never become a head term or a product group.
	Modifiers []string

	HighVolumeThreshold    int64
	LowScoreThreshold      int
	HighBidThreshold       float64
	OpportunityCompetition float64
	OpportunityScore       int

	MaxProductGroups int
	DaysPerMonth     int
}

// DefaultPolicy returns the documented defaults: a 50/20/30 split.
func DefaultPolicy() Policy {
	return Policy{
		DefaultSplit: map[Type]float64{
			TypeSearch:         0.5,
			TypeShopping:       0.2,
			TypePerformanceMax: 0.3,
		},
		CTR: map[keyword.Intent]float64{
			keyword.IntentCommercial:    0.05,
			keyword.IntentLocal:         0.06,
			keyword.IntentNavigational:  0.08,
			keyword.IntentInformational: 0.02,
		},
		MinSearchConfidence: 0.4,
		CatalogTerms:        []string{"product", "products", "catalog"},
		Modifiers: []string{
			"best", "top", "free", "cheap", "affordable", "professional", "online",
			"software", "tool", "tools", "platform", "solution", "solutions",
			"enterprise", "service", "services", "pricing", "comparison",
		},
		HighVolumeThreshold:    1000,
		LowScoreThreshold:      50,
		HighBidThreshold:       5.0,
		OpportunityCompetition: 0.3,
		OpportunityScore:       70,
		MaxProductGroups:       10,
		DaysPerMonth:           30,
	}
}

// Validate checks the default split and rates.
func (p Policy) Validate() error {
	if err := validateSplit(p.DefaultSplit); err != nil {
		return fmt.Errorf("campaign policy: %w", err)
	}
	for in, ctr := range p.CTR {
		if ctr < 0 || ctr > 1 || math.IsNaN(ctr) {
			return fmt.Errorf("campaign policy: ctr for %s out of [0,1]: %w", in, internalerr.ErrInvalidConfig)
		}
	}
	if p.MinSearchConfidence < 0 || p.MinSearchConfidence > 1 {
		return fmt.Errorf("campaign policy: min search confidence out of [0,1]: %w", internalerr.ErrInvalidConfig)
	}
	if p.DaysPerMonth <= 0 {
		return fmt.Errorf("campaign policy: days per month must be positive: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

func validateSplit(split map[Type]float64) error {
	sum := 0.0
	for t, f := range split {
		if err := canonical(t); err != nil {
			return fmt.Errorf("default split: %v: %w", err, internalerr.ErrInvalidConfig)
		}
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("default split: %s share %v: %w", t, f, internalerr.ErrInvalidConfig)
		}
		sum += f
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("default split sums to %v, want 1: %w", sum, internalerr.ErrInvalidConfig)
	}
	return nil
}
