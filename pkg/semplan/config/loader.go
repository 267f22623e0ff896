package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/semplan/pkg/semplan"
	"github.com/cognicore/semplan/pkg/semplan/bid"
	"github.com/cognicore/semplan/pkg/semplan/campaign"
	"github.com/cognicore/semplan/pkg/semplan/ingest"
	"github.com/cognicore/semplan/pkg/semplan/intent"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/lexicon"
	"github.com/cognicore/semplan/pkg/semplan/rank"
	"github.com/cognicore/semplan/pkg/semplan/stoplist"
	"github.com/cognicore/semplan/pkg/semplan/store"
)

// Components holds the pipeline stages built from a configuration
type Components struct {
	Normalizer *ingest.Normalizer
	Lexicon    *lexicon.Lexicon
	Stoplist   *stoplist.Manager
	Aggregator *ingest.Aggregator
	Classifier *intent.Classifier
	Scorer     *rank.Scorer
	Optimizer  *bid.Optimizer
	Builder    *campaign.Builder
}

// Components constructs every pipeline stage from the configuration
func (c *Config) Components() (*Components, error) {
	h, err := c.heuristics()
	if err != nil {
		return nil, fmt.Errorf("heuristics: %w", err)
	}
	intentValues, err := c.intentValues()
	if err != nil {
		return nil, err
	}
	structure, err := c.structure()
	if err != nil {
		return nil, err
	}

	comp := &Components{
		Normalizer: ingest.NewNormalizer(),
		Stoplist:   stoplist.Default(),
	}
	for _, s := range c.Stoplist {
		comp.Stoplist.Add(s)
	}
	if len(c.Lexicon) > 0 {
		comp.Lexicon = lexicon.FromGroups(c.Lexicon)
	}

	rules := c.Intent
	rules.BrandTerms = append(append([]string(nil), rules.BrandTerms...), c.brandTerms()...)

	comp.Aggregator = ingest.NewAggregator(comp.Normalizer, comp.Lexicon, h)
	comp.Classifier = intent.NewClassifier(rules)
	comp.Scorer = rank.NewScorer(c.Policy.Scoring.Weights, c.Policy.Scoring.VolumeCap, intentValues)
	comp.Optimizer = bid.NewOptimizer(c.Policy.Bidding)
	comp.Builder = campaign.NewBuilder(structure, comp.Classifier, comp.Stoplist)
	return comp, nil
}

// brandTerms are the configured brand terms plus the company name. The
// classifier normalizes them along with its own markers.
func (c *Config) brandTerms() []string {
	raw := append([]string{c.Brand.CompanyName}, c.Brand.BrandTerms...)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

// Options returns planner options wired to the components and st.
func (comp *Components) Options(st store.Store) semplan.Options {
	return semplan.Options{
		Aggregator: comp.Aggregator,
		Classifier: comp.Classifier,
		Scorer:     comp.Scorer,
		Optimizer:  comp.Optimizer,
		Builder:    comp.Builder,
		Store:      st,
	}
}

// Request builds a planning request for the gathered candidates.
func (c *Config) Request(candidates []keyword.Candidate) (semplan.Request, error) {
	alloc, err := c.Budget.Allocation()
	if err != nil {
		return semplan.Request{}, err
	}
	return semplan.Request{
		Name:        c.Brand.CompanyName,
		Candidates:  candidates,
		Budget:      alloc,
		Constraints: c.Business.Constraints(),
	}, nil
}
