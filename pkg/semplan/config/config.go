package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/campaign"
	"github.com/cognicore/semplan/pkg/semplan/ingest"
	"github.com/cognicore/semplan/pkg/semplan/intent"
	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/lexicon"
	"github.com/cognicore/semplan/pkg/semplan/rank"
)

// Config represents a planning configuration file
type Config struct {
	Brand        Brand        `yaml:"brand"`
	Competitors  []Competitor `yaml:"competitors"`
	SeedKeywords []string     `yaml:"seed_keywords"`
	Budget       Budget       `yaml:"budget"`
	Business     Business     `yaml:"business"`
	Research     Research     `yaml:"research"`
	Policy       Policy       `yaml:"policy"`
	Intent       intent.Rules `yaml:"intent"`

	Lexicon  []lexicon.Group `yaml:"lexicon"`
	Stoplist []string        `yaml:"stoplist"` // added to the built-in stopwords

	// Templates maps an industry substring to keyword patterns. Nil keeps the
	// built-in patterns.
	Templates map[string][]string `yaml:"templates"`
}

// Brand describes the advertiser
type Brand struct {
	CompanyName string   `yaml:"company_name"`
	WebsiteURL  string   `yaml:"website_url"`
	Industry    string   `yaml:"industry"`
	BrandTerms  []string `yaml:"brand_terms"`
}

// Competitor is a rival site to mine for conquesting keywords
type Competitor struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Budget is the monthly budget. Shares are keyed by campaign type
// (search, shopping, performance_max); empty shares use the default split.
type Budget struct {
	Total  float64            `yaml:"total"`
	Shares map[string]float64 `yaml:"shares"`
}

// Allocation converts the budget into a campaign allocation.
func (b Budget) Allocation() (campaign.BudgetAllocation, error) {
	alloc := campaign.BudgetAllocation{Total: b.Total}
	if len(b.Shares) == 0 {
		return alloc, nil
	}
	shares, err := resolve("budget.shares", b.Shares, campaign.ParseType, func(t campaign.Type) string { return string(t) })
	if err != nil {
		return alloc, err
	}
	alloc.Shares = shares
	return alloc, nil
}

// ROAS is a target return on ad spend as a ratio. YAML accepts a number
// (5.0) or a percent string ("500%").
type ROAS float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *ROAS) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("target_roas: line %d: expected a number or percentage", value.Line)
	}
	s := strings.TrimSpace(value.Value)
	scale := 1.0
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		s = strings.TrimSpace(pct)
		scale = 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("target_roas %q: line %d: %w", value.Value, value.Line, err)
	}
	*r = ROAS(v / scale)
	return nil
}

// Business holds the advertiser's economics
type Business struct {
	AverageOrderValue    float64 `yaml:"average_order_value"`
	ProfitMargin         float64 `yaml:"profit_margin"`
	TargetConversionRate float64 `yaml:"target_conversion_rate"`
	TargetROAS           ROAS    `yaml:"target_roas"`
}

// Constraints converts the business section into bid constraints.
func (b Business) Constraints() bid.Constraints {
	return bid.Constraints{
		AverageOrderValue:    b.AverageOrderValue,
		ProfitMargin:         b.ProfitMargin,
		TargetConversionRate: b.TargetConversionRate,
		TargetROAS:           float64(b.TargetROAS),
	}
}

// Research configures the keyword sources
type Research struct {
	Autocomplete bool `yaml:"autocomplete"`
	Website      bool `yaml:"website"`
	Competitors  bool `yaml:"competitors"`
	Templates    bool `yaml:"templates"`
	Seeds        bool `yaml:"seeds"`

	Timeout         time.Duration `yaml:"timeout"`          // whole gathering step
	RequestInterval time.Duration `yaml:"request_interval"` // per source
	Concurrency     int           `yaml:"concurrency"`

	AutocompleteEndpoint string        `yaml:"autocomplete_endpoint"`
	MaxSuggestions       int           `yaml:"max_suggestions"`
	Variations           []string      `yaml:"variations"` // "%s" is replaced by the seed
	CacheTTL             time.Duration `yaml:"cache_ttl"`
	UserAgent            string        `yaml:"user_agent"`
}

// Policy groups the tunable constants of every stage
type Policy struct {
	Heuristics Heuristics `yaml:"heuristics"`
	Scoring    Scoring    `yaml:"scoring"`
	Bidding    bid.Policy `yaml:"bidding"`
	Structure  Structure  `yaml:"structure"`
}

// Heuristics are the volume, CPC and competition estimators.
type Heuristics struct {
	ingest.Heuristics `yaml:",inline"`

	// SourceWeights is keyed by source name (AUTOCOMPLETE, SEED, ...).
	SourceWeights map[string]float64 `yaml:"source_weights"`
}

// Scoring configures the performance scorer
type Scoring struct {
	Weights      rank.Weights       `yaml:"weights"`
	VolumeCap    float64            `yaml:"volume_cap"`
	IntentValues map[string]float64 `yaml:"intent_values"`
}

// Structure configures the campaign builder
type Structure struct {
	DefaultSplit        map[string]float64 `yaml:"default_split"`
	CTR                 map[string]float64 `yaml:"ctr"`
	MinSearchConfidence float64            `yaml:"min_search_confidence"`
	CatalogTerms        []string           `yaml:"catalog_terms"`
	Modifiers           []string           `yaml:"modifiers"`

	HighVolumeThreshold    int64   `yaml:"high_volume_threshold"`
	LowScoreThreshold      int     `yaml:"low_score_threshold"`
	HighBidThreshold       float64 `yaml:"high_bid_threshold"`
	OpportunityCompetition float64 `yaml:"opportunity_competition"`
	OpportunityScore       int     `yaml:"opportunity_score"`
	MaxProductGroups       int     `yaml:"max_product_groups"`
	DaysPerMonth           int     `yaml:"days_per_month"`
}

// Default returns a configuration with every default filled in. The budget
// total is left at zero and must be configured.
func Default() *Config {
	h := ingest.DefaultHeuristics()
	weights := make(map[string]float64, len(h.SourceWeights))
	for s, w := range h.SourceWeights {
		weights[s.String()] = w
	}

	intentValues := make(map[string]float64)
	for i, v := range rank.DefaultIntentValues() {
		intentValues[i.String()] = v
	}

	cp := campaign.DefaultPolicy()
	split := make(map[string]float64, len(cp.DefaultSplit))
	for t, v := range cp.DefaultSplit {
		split[string(t)] = v
	}
	ctr := make(map[string]float64, len(cp.CTR))
	for i, v := range cp.CTR {
		ctr[i.String()] = v
	}

	return &Config{
		Business: Business{
			AverageOrderValue:    100,
			ProfitMargin:         0.3,
			TargetConversionRate: 0.02,
			TargetROAS:           4.0,
		},
		Research: Research{
			Autocomplete:         true,
			Website:              true,
			Competitors:          true,
			Templates:            true,
			Seeds:                true,
			Timeout:              2 * time.Minute,
			RequestInterval:      500 * time.Millisecond,
			Concurrency:          4,
			AutocompleteEndpoint: "https://suggestqueries.google.com/complete/search?client=firefox&q=",
			MaxSuggestions:       15,
			Variations:           []string{"%s", "%s software", "%s tool", "best %s", "%s alternative", "free %s", "%s pricing"},
			CacheTTL:             24 * time.Hour,
			UserAgent:            "Mozilla/5.0 (compatible; semplan/1.0)",
		},
		Policy: Policy{
			Heuristics: Heuristics{Heuristics: h, SourceWeights: weights},
			Scoring: Scoring{
				Weights:      rank.DefaultWeights(),
				VolumeCap:    rank.DefaultVolumeCap,
				IntentValues: intentValues,
			},
			Bidding: bid.DefaultPolicy(),
			Structure: Structure{
				DefaultSplit:           split,
				CTR:                    ctr,
				MinSearchConfidence:    cp.MinSearchConfidence,
				CatalogTerms:           cp.CatalogTerms,
				Modifiers:              cp.Modifiers,
				HighVolumeThreshold:    cp.HighVolumeThreshold,
				LowScoreThreshold:      cp.LowScoreThreshold,
				HighBidThreshold:       cp.HighBidThreshold,
				OpportunityCompetition: cp.OpportunityCompetition,
				OpportunityScore:       cp.OpportunityScore,
				MaxProductGroups:       cp.MaxProductGroups,
				DaysPerMonth:           cp.DaysPerMonth,
			},
		},
		Intent: intent.DefaultRules(),
	}
}

// Load reads a configuration file, overlays it on the defaults and validates
// the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Maps are
// merged key by key; lists replace the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%v: %w", err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section. Business constraints are only checked for
// sign: a ceiling that is not positive flags keywords instead of failing.
func (c *Config) Validate() error {
	if c.Budget.Total <= 0 || math.IsNaN(c.Budget.Total) || math.IsInf(c.Budget.Total, 0) {
		return fmt.Errorf("budget.total %v must be positive: %w", c.Budget.Total, internalerr.ErrInvalidConfig)
	}
	if _, err := c.Budget.Allocation(); err != nil {
		return err
	}

	b := c.Business
	if b.AverageOrderValue < 0 || b.ProfitMargin < 0 || b.TargetConversionRate < 0 || b.TargetROAS < 0 {
		return fmt.Errorf("business values must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if b.ProfitMargin > 1 || b.TargetConversionRate > 1 {
		return fmt.Errorf("business: profit_margin and target_conversion_rate are fractions: %w", internalerr.ErrInvalidConfig)
	}

	r := c.Research
	if r.Concurrency < 1 {
		return fmt.Errorf("research.concurrency %d must be at least 1: %w", r.Concurrency, internalerr.ErrInvalidConfig)
	}
	if r.Timeout < 0 || r.RequestInterval < 0 || r.CacheTTL < 0 {
		return fmt.Errorf("research durations must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if r.MaxSuggestions < 0 {
		return fmt.Errorf("research.max_suggestions %d: %w", r.MaxSuggestions, internalerr.ErrInvalidConfig)
	}
	for _, comp := range c.Competitors {
		if comp.Name == "" || comp.URL == "" {
			return fmt.Errorf("competitor %+v needs a name and url: %w", comp, internalerr.ErrInvalidConfig)
		}
	}

	if _, err := c.heuristics(); err != nil {
		return err
	}
	if err := c.Policy.Scoring.Weights.Validate(); err != nil {
		return err
	}
	if _, err := c.intentValues(); err != nil {
		return err
	}
	if err := c.Policy.Bidding.Validate(); err != nil {
		return err
	}
	if _, err := c.structure(); err != nil {
		return err
	}
	return c.Intent.Validate()
}

func (c *Config) heuristics() (ingest.Heuristics, error) {
	h := c.Policy.Heuristics.Heuristics
	weights, err := resolve("heuristics.source_weights", c.Policy.Heuristics.SourceWeights, keyword.ParseSource, keyword.Source.String)
	if err != nil {
		return h, err
	}
	h.SourceWeights = weights
	return h, h.Validate()
}

func (c *Config) intentValues() (map[keyword.Intent]float64, error) {
	return intentMap("scoring.intent_values", c.Policy.Scoring.IntentValues)
}

func (c *Config) structure() (campaign.Policy, error) {
	s := c.Policy.Structure
	p := campaign.Policy{
		MinSearchConfidence:    s.MinSearchConfidence,
		CatalogTerms:           s.CatalogTerms,
		Modifiers:              s.Modifiers,
		HighVolumeThreshold:    s.HighVolumeThreshold,
		LowScoreThreshold:      s.LowScoreThreshold,
		HighBidThreshold:       s.HighBidThreshold,
		OpportunityCompetition: s.OpportunityCompetition,
		OpportunityScore:       s.OpportunityScore,
		MaxProductGroups:       s.MaxProductGroups,
		DaysPerMonth:           s.DaysPerMonth,
	}
	split, err := resolve("structure.default_split", s.DefaultSplit, campaign.ParseType, func(t campaign.Type) string { return string(t) })
	if err != nil {
		return p, err
	}
	p.DefaultSplit = split
	ctr, err := intentMap("structure.ctr", s.CTR)
	if err != nil {
		return p, err
	}
	p.CTR = ctr
	return p, p.Validate()
}

func intentMap(field string, in map[string]float64) (map[keyword.Intent]float64, error) {
	out, err := resolve(field, in, keyword.ParseIntent, keyword.Intent.String)
	if err != nil {
		return nil, err
	}
	for i, v := range out {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, fmt.Errorf("%s %s = %v out of [0,1]: %w", field, i, v, internalerr.ErrInvalidConfig)
		}
	}
	return out, nil
}

// resolve parses the keys of a YAML map. Defaults are stored under canonical
// names and YAML merges maps key by key, so a key spelled differently from
// its canonical form comes from the file and overrides the canonical entry.
// Two non-canonical spellings of the same key are rejected.
func resolve[K comparable](field string, in map[string]float64, parse func(string) (K, error), canonical func(K) string) (map[K]float64, error) {
	out := make(map[K]float64, len(in))
	overridden := make(map[K]string)
	for name, v := range in {
		k, err := parse(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", field, err, internalerr.ErrInvalidConfig)
		}
		if name == canonical(k) {
			if _, ok := overridden[k]; !ok {
				out[k] = v
			}
			continue
		}
		if prev, ok := overridden[k]; ok {
			return nil, fmt.Errorf("%s: %q and %q name the same key: %w", field, prev, name, internalerr.ErrInvalidConfig)
		}
		overridden[k] = name
		out[k] = v
	}
	return out, nil
}
