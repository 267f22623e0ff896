package campaign

import (
	"github.com/cognicore/semplan/pkg/semplan/keyword"
)

// Themer reports tokens that carry intent rather than topic, such as
// "buy" or "near". The intent classifier implements it.
type Themer interface {
	IsMarker(token string) bool
}

// group is an ad group before campaign assignment.
type group struct {
	intent  keyword.Intent
	theme   string
	members []*keyword.Record
}

// groupRecords partitions records by intent (priority order) and then by head
// term. Groups keep the order in which their head term first appeared, and
// every record lands in exactly one group.
func (b *Builder) groupRecords(records []*keyword.Record) []*group {
	var out []*group
	for _, in := range keyword.Intents() {
		index := make(map[string]*group)
		for _, rec := range records {
			if rec.Intent != in {
				continue
			}
			theme := b.headTerm(rec.Words())
			g, ok := index[theme]
			if !ok {
				g = &group{intent: in, theme: theme}
				index[theme] = g
				out = append(out, g)
			}
			g.members = append(g.members, rec)
		}
	}
	return out
}

// headTerm is the last token that is not a marker, modifier or stopword.
// When every token is filler the last token is used.
func (b *Builder) headTerm(words []string) string {
	if len(words) == 0 {
		return ""
	}
	for i := len(words) - 1; i >= 0; i-- {
		if !b.filler(words[i]) {
			return words[i]
		}
	}
	return words[len(words)-1]
}

func (b *Builder) filler(tok string) bool {
	if _, ok := b.modifiers[tok]; ok {
		return true
	}
	if b.stops.IsStop(tok) {
		return true
	}
	return b.themer != nil && b.themer.IsMarker(tok)
}

func (g *group) meanConfidence() float64 {
	if len(g.members) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range g.members {
		sum += m.Confidence
	}
	return sum / float64(len(g.members))
}

func (g *group) volume() int64 {
	var v int64
	for _, m := range g.members {
		v += m.Volume
	}
	return v
}

// matchTypes picks match types by phrase length: short heads stay broad,
// long tails stay exact.
func matchTypes(words int) []MatchType {
	switch {
	case words <= 1:
		return []MatchType{MatchPhrase, MatchBroad}
	case words == 2:
		return []MatchType{MatchExact, MatchPhrase, MatchBroad}
	default:
		return []MatchType{MatchExact, MatchPhrase}
	}
}
