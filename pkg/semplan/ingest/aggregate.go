package ingest

import (
	"errors"
	"fmt"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
	"github.com/cognicore/semplan/pkg/semplan/lexicon"
)

// Aggregator merges candidates from every source into unique keyword records.
type Aggregator struct {
	norm       *Normalizer
	lex        *lexicon.Lexicon
	heuristics Heuristics
}

// NewAggregator creates an aggregator. A nil normalizer uses the default
// allow-set; a nil lexicon disables synonym merging.
func NewAggregator(norm *Normalizer, lex *lexicon.Lexicon, h Heuristics) *Aggregator {
	if norm == nil {
		norm = NewNormalizer()
	}
	return &Aggregator{norm: norm, lex: lex, heuristics: h}
}

// Aggregate normalizes and deduplicates candidates. Records keep the order in
// which their key first appeared. Candidates that normalize to nothing are
// dropped; if nothing survives, internalerr.ErrEmptySourceSet is returned.
func (a *Aggregator) Aggregate(candidates []keyword.Candidate) ([]*keyword.Record, error) {
	index := make(map[string]*keyword.Record, len(candidates))
	records := make([]*keyword.Record, 0, len(candidates))

	for _, c := range candidates {
		text, err := a.canonical(c.Text)
		if errors.Is(err, internalerr.ErrEmptyKeyword) {
			continue
		}
		if err != nil {
			return nil, err
		}

		weight := a.heuristics.sourceWeight(c)
		rec, ok := index[text]
		if !ok {
			rec = &keyword.Record{Text: text}
			index[text] = rec
			records = append(records, rec)
		}
		rec.Sources = rec.Sources.Add(c.Source)
		rec.Catalog = rec.Catalog || c.Catalog
		if weight > rec.Trust {
			rec.Trust = weight
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("aggregate %d candidates: %w", len(candidates), internalerr.ErrEmptySourceSet)
	}

	for _, rec := range records {
		a.heuristics.estimate(rec)
	}
	return records, nil
}

// canonical normalizes text and maps it through the lexicon. The result is
// normalized again because synonym canonicals come from configuration.
func (a *Aggregator) canonical(raw string) (string, error) {
	text, err := a.norm.Normalize(raw)
	if err != nil {
		return "", err
	}
	if a.lex == nil {
		return text, nil
	}
	return a.norm.Normalize(a.lex.Normalize(text))
}
