package ingest

import (
	"fmt"
	"math"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Heuristics holds the placeholder estimators used when no ad-platform
// metrics are available. Volume and CPC shrink geometrically with every
// extra word; competition rises with competitive terms and falls for long
// tails.
type Heuristics struct {
	BaseVolume  float64 `yaml:"base_volume"`
	LengthDecay float64 `yaml:"length_decay"` // (0,1]

	BaseCPC  float64 `yaml:"base_cpc"`
	CPCDecay float64 `yaml:"cpc_decay"` // (0,1]

	BaseCompetition  float64  `yaml:"base_competition"`
	CompetitiveBump  float64  `yaml:"competitive_bump"`
	LongTailDiscount float64  `yaml:"long_tail_discount"`
	CompetitiveTerms []string `yaml:"competitive_terms"`

	// SourceWeights is the default trust multiplier per source. A candidate
	// with an explicit Weight overrides it.
	SourceWeights map[keyword.Source]float64 `yaml:"-"`
}

const (
	minCompetition = 0.05
	maxCompetition = 0.95
)

// DefaultHeuristics returns the documented defaults.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		BaseVolume:       1000,
		LengthDecay:      0.6,
		BaseCPC:          1.50,
		CPCDecay:         0.85,
		BaseCompetition:  0.35,
		CompetitiveBump:  0.15,
		LongTailDiscount: 0.05,
		CompetitiveTerms: []string{
			"software", "platform", "tool", "solution",
			"best", "top", "compare",
		},
		SourceWeights: map[keyword.Source]float64{
			keyword.SourceAutocomplete: 1.5,
			keyword.SourceWebsite:      1.0,
			keyword.SourceCompetitor:   1.2,
			keyword.SourceTemplate:     0.8,
			keyword.SourceSeed:         1.3,
		},
	}
}

// Validate checks that the estimators stay monotone and in range.
func (h Heuristics) Validate() error {
	switch {
	case h.BaseVolume < 0 || h.BaseCPC < 0:
		return fmt.Errorf("heuristics: base volume and cpc must be non-negative: %w", internalerr.ErrInvalidConfig)
	case !inUnit(h.LengthDecay) || !inUnit(h.CPCDecay):
		return fmt.Errorf("heuristics: decays must be in (0,1]: %w", internalerr.ErrInvalidConfig)
	case h.BaseCompetition < 0 || h.BaseCompetition > 1:
		return fmt.Errorf("heuristics: base competition %.2f out of [0,1]: %w", h.BaseCompetition, internalerr.ErrInvalidConfig)
	case h.CompetitiveBump < 0 || h.LongTailDiscount < 0:
		return fmt.Errorf("heuristics: competition adjustments must be non-negative: %w", internalerr.ErrInvalidConfig)
	}
	for s, w := range h.SourceWeights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("heuristics: weight for %s must be positive: %w", s, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

func inUnit(v float64) bool { return v > 0 && v <= 1 }

// sourceWeight returns the trust multiplier for c.
func (h Heuristics) sourceWeight(c keyword.Candidate) float64 {
	if c.Weight > 0 {
		return c.Weight
	}
	if w, ok := h.SourceWeights[c.Source]; ok {
		return w
	}
	return 1
}

// estimate fills Volume, CPC and Competition from the record's text and trust.
func (h Heuristics) estimate(rec *keyword.Record) {
	words := rec.Words()
	extra := float64(len(words) - 1)

	rec.Volume = int64(math.Round(h.BaseVolume * rec.Trust * math.Pow(h.LengthDecay, extra)))
	rec.CPC = roundCents(h.BaseCPC * rec.Trust * math.Pow(h.CPCDecay, extra))

	competitive := 0
	for _, w := range words {
		for _, term := range h.CompetitiveTerms {
			if w == term {
				competitive++
				break
			}
		}
	}
	comp := h.BaseCompetition + h.CompetitiveBump*float64(competitive) - h.LongTailDiscount*extra
	rec.Competition = math.Max(minCompetition, math.Min(maxCompetition, comp))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
