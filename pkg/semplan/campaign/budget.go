package campaign

import (
	"fmt"
	"math"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
)

// ShareTolerance is the largest accepted gap between the sum of shares and
// the total, in currency units.
const ShareTolerance = 0.01

// BudgetAllocation is a total budget plus optional per-campaign shares.
type BudgetAllocation struct {
	Total  float64          `json:"total"`
	Shares map[Type]float64 `json:"shares,omitempty"`
}

// Validate checks that the total is positive and that explicit shares are
// keyed by canonical campaign types, non-negative and sum to the total within
// ShareTolerance. Failures wrap internalerr.ErrMalformedBudgetAllocation.
func (a BudgetAllocation) Validate() error {
	if a.Total <= 0 || math.IsNaN(a.Total) || math.IsInf(a.Total, 0) {
		return fmt.Errorf("budget total %v must be positive: %w", a.Total, internalerr.ErrMalformedBudgetAllocation)
	}
	if len(a.Shares) == 0 {
		return nil
	}

	sum := 0.0
	for t, share := range a.Shares {
		if err := canonical(t); err != nil {
			return fmt.Errorf("budget share: %v: %w", err, internalerr.ErrMalformedBudgetAllocation)
		}
		if share < 0 || math.IsNaN(share) || math.IsInf(share, 0) {
			return fmt.Errorf("budget share %s = %v: %w", t, share, internalerr.ErrMalformedBudgetAllocation)
		}
		sum += share
	}
	if math.Abs(sum-a.Total) > ShareTolerance+1e-9 {
		return fmt.Errorf("budget shares sum to %.2f, total is %.2f: %w", sum, a.Total, internalerr.ErrMalformedBudgetAllocation)
	}
	return nil
}

// Split returns the budget of every campaign type. Without explicit shares
// the total is split by defaultSplit. Amounts are rounded to cents and the
// last type absorbs the rounding remainder, so the amounts sum to the total.
func (a BudgetAllocation) Split(defaultSplit map[Type]float64) (map[Type]float64, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	raw := make(map[Type]float64, len(Types()))
	if len(a.Shares) > 0 {
		for _, t := range Types() {
			raw[t] = a.Shares[t]
		}
	} else {
		if err := validateSplit(defaultSplit); err != nil {
			return nil, fmt.Errorf("%v: %w", err, internalerr.ErrMalformedBudgetAllocation)
		}
		for _, t := range Types() {
			raw[t] = a.Total * defaultSplit[t]
		}
	}

	types := Types()
	out := make(map[Type]float64, len(types))
	assigned := 0.0
	for i, t := range types {
		if i == len(types)-1 {
			out[t] = math.Max(0, roundCents(a.Total-assigned))
			break
		}
		out[t] = roundCents(raw[t])
		assigned += out[t]
	}
	return out, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// canonical rejects keys that are not exactly one of Types. Aliases such as
// "pmax" must be resolved with ParseType before they reach a map.
func canonical(t Type) error {
	parsed, err := ParseType(string(t))
	if err != nil {
		return err
	}
	if parsed != t {
		return fmt.Errorf("campaign type %q is not canonical, use %q", t, parsed)
	}
	return nil
}
