package intent

import (
	"github.com/cognicore/semplan/pkg/semplan/ingest"
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Classifier labels records with an intent and a confidence in [0,1].
type Classifier struct {
	markers           []marker
	vocabulary        map[string]struct{}
	defaultConfidence float64
}

// NewClassifier compiles rules into a classifier.
func NewClassifier(r Rules) *Classifier {
	markers := compile(r, ingest.NewNormalizer())
	vocab := make(map[string]struct{})
	for _, m := range markers {
		for _, tok := range m.tokens {
			vocab[tok] = struct{}{}
		}
	}
	return &Classifier{
		markers:           markers,
		vocabulary:        vocab,
		defaultConfidence: r.DefaultConfidence,
	}
}

// Classify returns the intent with the highest accumulated vote. Ties go to
// the intent with the higher Priority. Without any marker the record is
// INFORMATIONAL at the default confidence.
func (c *Classifier) Classify(rec *keyword.Record) (keyword.Intent, float64) {
	words := rec.Words()

	var votes [4]float64
	total := 0.0
	for _, m := range c.markers {
		if m.matches(words) {
			votes[m.intent] += m.weight
			total += m.weight
		}
	}
	if total == 0 {
		return keyword.IntentInformational, c.defaultConfidence
	}

	best := keyword.IntentInformational
	bestVote := -1.0
	for _, in := range keyword.Intents() {
		if votes[in] > bestVote {
			best, bestVote = in, votes[in]
		}
	}

	conf := bestVote / total
	if conf > 1 {
		conf = 1
	}
	return best, conf
}

// Apply classifies every record in place.
func (c *Classifier) Apply(records []*keyword.Record) {
	for _, rec := range records {
		rec.Intent, rec.Confidence = c.Classify(rec)
	}
}

// IsMarker reports whether token belongs to any marker phrase.
func (c *Classifier) IsMarker(token string) bool {
	_, ok := c.vocabulary[token]
	return ok
}
