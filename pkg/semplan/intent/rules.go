// Package intent assigns a searcher intent to each keyword record by voting
// over configurable marker families.
package intent

import (
	"fmt"
	"strings"

	"github.com/cognicore/semplan/pkg/semplan/ingest"
	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Family is a named group of marker phrases that vote for one intent.
type Family struct {
	Name    string         `yaml:"name"`
	Intent  keyword.Intent `yaml:"intent"`
	Weight  float64        `yaml:"weight"`
	Markers []string       `yaml:"markers"`
}

// Rules configure the classifier.
type Rules struct {
	Families []Family `yaml:"families"`

	// BrandTerms vote NAVIGATIONAL with the navigational family's weight.
	BrandTerms []string `yaml:"brand_terms"`

	// DefaultConfidence is reported when no marker matches.
	DefaultConfidence float64 `yaml:"default_confidence"`
}

// MaxDefaultConfidence bounds DefaultConfidence.
const MaxDefaultConfidence = 0.3

// DefaultRules returns the built-in marker families.
func DefaultRules() Rules {
	return Rules{
		Families: []Family{
			{
				Name:   "transactional",
				Intent: keyword.IntentCommercial,
				Weight: 1.0,
				Markers: []string{
					"buy", "purchase", "price", "pricing", "cost", "cheap", "discount",
					"deal", "deals", "sale", "order", "shop", "hire", "book", "vs", "versus",
					"compare", "comparison", "alternative", "alternatives", "best",
					"affordable", "coupon",
				},
			},
			{
				Name:    "local",
				Intent:  keyword.IntentLocal,
				Weight:  1.2,
				Markers: []string{"near me", "nearby", "local", "open now", "directions", "closest"},
			},
			{
				Name:    "navigational",
				Intent:  keyword.IntentNavigational,
				Weight:  1.0,
				Markers: []string{"login", "log in", "sign in", "official", "website", "app download"},
			},
			{
				Name:   "question",
				Intent: keyword.IntentInformational,
				Weight: 0.8,
				Markers: []string{
					"how", "what", "why", "when", "who", "which", "guide", "tutorial",
					"tips", "learn", "review", "reviews", "examples", "meaning", "ideas",
				},
			},
		},
		DefaultConfidence: 0.2,
	}
}

// Validate checks weights and the default confidence.
func (r Rules) Validate() error {
	if r.DefaultConfidence < 0 || r.DefaultConfidence > MaxDefaultConfidence {
		return fmt.Errorf("intent: default confidence %.2f out of [0,%.1f]: %w",
			r.DefaultConfidence, MaxDefaultConfidence, internalerr.ErrInvalidConfig)
	}
	for _, f := range r.Families {
		if f.Weight <= 0 {
			return fmt.Errorf("intent: family %q weight must be positive: %w", f.Name, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

// marker is a normalized marker phrase split into tokens.
type marker struct {
	tokens []string
	intent keyword.Intent
	weight float64
}

// compile normalizes every marker and brand term the same way keyword text
// is normalized, so "Acme." matches "acme". Phrases that normalize to nothing
// are dropped.
func compile(r Rules, norm *ingest.Normalizer) []marker {
	var out []marker
	seen := make(map[string]bool)
	add := func(phrase string, in keyword.Intent, w float64) {
		if in > keyword.IntentNavigational {
			return
		}
		text, err := norm.Normalize(phrase)
		if err != nil {
			return
		}
		key := in.String() + "|" + text
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, marker{tokens: strings.Fields(text), intent: in, weight: w})
	}

	navWeight := 1.0
	for _, f := range r.Families {
		if f.Intent == keyword.IntentNavigational {
			navWeight = f.Weight
		}
		for _, m := range f.Markers {
			add(m, f.Intent, f.Weight)
		}
	}
	for _, b := range r.BrandTerms {
		add(b, keyword.IntentNavigational, navWeight)
	}
	return out
}

// matches reports whether m occurs as a contiguous token run in words.
func (m marker) matches(words []string) bool {
	n := len(m.tokens)
	for i := 0; i+n <= len(words); i++ {
		ok := true
		for j, tok := range m.tokens {
			if words[i+j] != tok {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
