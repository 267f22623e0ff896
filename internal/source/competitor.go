package source

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/stoplist"
)

// DefaultCompetitorLimit caps the base phrases taken from a competitor.
const DefaultCompetitorLimit = 20

// Competitor turns a rival's site phrases into conquesting keywords:
// "<phrase> alternative", "<phrase> vs <name>" and "better than <name>".
type Competitor struct {
	name string
	site *Website
}

// NewCompetitor creates a competitor adapter.
func NewCompetitor(name, siteURL string, h HTTP, stops *stoplist.Manager, logger *zap.Logger) *Competitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Competitor{
		name: strings.ToLower(strings.TrimSpace(name)),
		site: NewWebsite(siteURL, DefaultCompetitorLimit, h, stops, logger.With(zap.String("competitor", name))),
	}
}

func (c *Competitor) Name() string         { return "competitor:" + c.name }
func (c *Competitor) Kind() keyword.Source { return keyword.SourceCompetitor }

// Fetch extracts the competitor's phrases and expands them. A site with no
// usable phrases yields no candidates.
func (c *Competitor) Fetch(ctx context.Context) ([]keyword.Candidate, error) {
	phrases, err := c.site.Phrases(ctx)
	if err != nil {
		return nil, err
	}
	return c.expand(phrases), nil
}

func (c *Competitor) expand(phrases []Phrase) []keyword.Candidate {
	if len(phrases) == 0 {
		return nil
	}
	out := make([]keyword.Candidate, 0, 2*len(phrases)+1)
	add := func(text string) {
		out = append(out, keyword.Candidate{Text: text, Source: keyword.SourceCompetitor})
	}
	for _, p := range phrases {
		add(p.Text + " alternative")
		if p.Text != c.name {
			add(p.Text + " vs " + c.name)
		}
	}
	add("better than " + c.name)
	return out
}
