package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// DefaultTemplates are keyword patterns per industry. An industry matches
// when its description contains the key.
var DefaultTemplates = map[string][]string{
	"saas": {
		"software as a service", "cloud software", "saas platform", "subscription software",
		"cloud-based", "web application", "online software", "saas solution",
	},
	"analytics": {
		"data analytics", "business intelligence", "data visualization", "reporting tool",
		"dashboard", "metrics", "kpi tracking", "data insights", "analytics platform",
	},
	"marketing": {
		"marketing automation", "digital marketing", "marketing platform", "crm",
		"lead generation", "email marketing", "marketing software",
	},
}

var templateVariations = []string{
	"%s", "best %s", "%s software", "%s tool", "%s platform",
	"enterprise %s", "%s solution", "affordable %s", "%s pricing", "%s comparison",
}

// DefaultTemplateLimit caps the generated template keywords.
const DefaultTemplateLimit = 50

// Templates expands industry patterns with commercial modifiers.
type Templates struct {
	industry string
	patterns map[string][]string
	limit    int
}

// NewTemplates creates the template generator. Nil patterns use
// DefaultTemplates; a limit <= 0 uses DefaultTemplateLimit.
func NewTemplates(industry string, patterns map[string][]string, limit int) *Templates {
	if patterns == nil {
		patterns = DefaultTemplates
	}
	if limit <= 0 {
		limit = DefaultTemplateLimit
	}
	return &Templates{industry: strings.ToLower(industry), patterns: patterns, limit: limit}
}

func (t *Templates) Name() string         { return "templates" }
func (t *Templates) Kind() keyword.Source { return keyword.SourceTemplate }

// Fetch returns INDUSTRY_TEMPLATE candidates. Matching industries are
// expanded in key order.
func (t *Templates) Fetch(ctx context.Context) ([]keyword.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(t.patterns))
	for k := range t.patterns {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(t.industry, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []keyword.Candidate
	for _, k := range keys {
		for _, p := range t.lookup(k) {
			for _, v := range templateVariations {
				if len(out) == t.limit {
					return out, nil
				}
				out = append(out, keyword.Candidate{Text: fmt.Sprintf(v, p), Source: keyword.SourceTemplate})
			}
		}
	}
	return out, nil
}

func (t *Templates) lookup(key string) []string {
	for k, v := range t.patterns {
		if strings.ToLower(strings.TrimSpace(k)) == key {
			return v
		}
	}
	return nil
}

var seedPatterns = []string{
	// modifiers
	"%s", "best %s", "%s free", "%s online", "%s software", "%s tool",
	"%s platform", "%s service", "%s solution", "cheap %s", "affordable %s",
	"%s price", "%s cost", "%s review", "%s alternative",
	"%s tutorial", "%s guide",
	// questions
	"what is %s", "how does %s work", "why use %s", "when to use %s",
	"where to find %s", "who uses %s", "how much does %s cost", "is %s free",
	"is %s good", "should i use %s", "%s near me", "%s for beginners",
}

// Seeds expands the advertiser's seed keywords with modifier and question
// patterns.
type Seeds struct {
	seeds []string
}

// NewSeeds creates the seed generator.
func NewSeeds(seeds []string) *Seeds {
	return &Seeds{seeds: seeds}
}

func (s *Seeds) Name() string         { return "seeds" }
func (s *Seeds) Kind() keyword.Source { return keyword.SourceSeed }

// Fetch returns SEED candidates, each seed first followed by its expansions.
func (s *Seeds) Fetch(ctx context.Context) ([]keyword.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []keyword.Candidate
	for _, seed := range s.seeds {
		seed = strings.ToLower(strings.TrimSpace(seed))
		if seed == "" {
			continue
		}
		for _, p := range seedPatterns {
			out = append(out, keyword.Candidate{Text: fmt.Sprintf(p, seed), Source: keyword.SourceSeed})
		}
	}
	return out, nil
}
