// Package keyword defines the records that flow through the planning pipeline.
package keyword

import (
	"fmt"
	"strings"
)

// Candidate is a raw keyword attributed to one discovery source.
type Candidate struct {
	Text    string  `json:"text"`
	Source  Source  `json:"source"`
	Weight  float64 `json:"source_weight,omitempty"` // source-trust multiplier, 0 means policy default
	Catalog bool    `json:"catalog,omitempty"`       // extractor saw it in a product listing
}

// Intent is the presumed searcher goal behind a keyword.
type Intent uint8

const (
	IntentInformational Intent = iota
	IntentCommercial
	IntentLocal
	IntentNavigational
)

var intentNames = map[Intent]string{
	IntentInformational: "INFORMATIONAL",
	IntentCommercial:    "COMMERCIAL",
	IntentLocal:         "LOCAL",
	IntentNavigational:  "NAVIGATIONAL",
}

// Intents lists intents in tie-break priority order, highest first.
func Intents() []Intent {
	return []Intent{IntentCommercial, IntentLocal, IntentNavigational, IntentInformational}
}

// Priority ranks intents for tie-breaking; higher wins.
// COMMERCIAL > LOCAL > NAVIGATIONAL > INFORMATIONAL
func (i Intent) Priority() int {
	switch i {
	case IntentCommercial:
		return 3
	case IntentLocal:
		return 2
	case IntentNavigational:
		return 1
	default:
		return 0
	}
}

func (i Intent) String() string {
	if n, ok := intentNames[i]; ok {
		return n
	}
	return fmt.Sprintf("Intent(%d)", uint8(i))
}

// ParseIntent converts an intent name (case-insensitive) to an Intent.
func ParseIntent(name string) (Intent, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range intentNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown intent %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (i Intent) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Intent) UnmarshalText(text []byte) error {
	parsed, err := ParseIntent(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// BidStrategy labels how aggressively a keyword should be bid.
type BidStrategy string

const (
	StrategyAggressive   BidStrategy = "AGGRESSIVE"
	StrategyModerate     BidStrategy = "MODERATE"
	StrategyConservative BidStrategy = "CONSERVATIVE"
	StrategyCautious     BidStrategy = "CAUTIOUS"
	StrategyLowPriority  BidStrategy = "LOW_PRIORITY"
)

// Record is the canonical keyword after aggregation. Each field group is
// written by exactly one pipeline stage:
//
//	aggregator: Text, Sources, Volume, CPC, Competition, Catalog, Trust
//	classifier: Intent, Confidence
//	scorer:     Score
//	optimizer:  Bid, BidInvalid, Strategy
type Record struct {
	Text        string    `json:"keyword"`
	Sources     SourceSet `json:"sources"`
	Volume      int64     `json:"estimated_volume"`
	CPC         float64   `json:"estimated_cpc"`
	Competition float64   `json:"competition"`
	Catalog     bool      `json:"catalog,omitempty"`
	Trust       float64   `json:"trust"`

	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"intent_confidence"`

	Score int `json:"performance_score"`

	Bid        float64     `json:"recommended_bid"`
	BidInvalid bool        `json:"bid_invalid,omitempty"`
	Strategy   BidStrategy `json:"bid_strategy,omitempty"`
}

// Words returns the whitespace-separated tokens of the normalized text.
func (r *Record) Words() []string {
	return strings.Fields(r.Text)
}

// WordCount returns the number of tokens in the normalized text.
func (r *Record) WordCount() int {
	return len(strings.Fields(r.Text))
}
