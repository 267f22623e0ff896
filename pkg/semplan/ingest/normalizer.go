package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/semplan/pkg/semplan/internalerr"
)

// Normalizer canonicalizes raw keyword strings into a comparable form.
type Normalizer struct {
	allow map[rune]struct{}
}

// NewNormalizer creates a normalizer. Letters, digits and whitespace are
// always kept; allow lists the extra runes to keep. With no arguments only
// the hyphen is allowed.
func NewNormalizer(allow ...rune) *Normalizer {
	if len(allow) == 0 {
		allow = []rune{'-'}
	}
	set := make(map[rune]struct{}, len(allow))
	for _, r := range allow {
		set[r] = struct{}{}
	}
	return &Normalizer{allow: set}
}

// Normalize lower-cases raw, drops runes outside the allow-set, collapses
// whitespace and strips punctuation from both ends of every token.
// Normalize(Normalize(x)) == Normalize(x). A blank result returns
// internalerr.ErrEmptyKeyword.
func (n *Normalizer) Normalize(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		r = unicode.ToLower(r)
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case n.allowed(r):
			b.WriteRune(r)
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, f := range fields {
		if tok := n.cleanToken(f); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return "", fmt.Errorf("normalize %q: %w", raw, internalerr.ErrEmptyKeyword)
	}
	return strings.Join(tokens, " "), nil
}

func (n *Normalizer) allowed(r rune) bool {
	_, ok := n.allow[r]
	return ok
}

// cleanToken strips leading/trailing punctuation and collapses runs of the
// same punctuation rune ("--" -> "-").
func (n *Normalizer) cleanToken(token string) string {
	token = strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	var prev rune
	for _, r := range token {
		if r == prev && n.allowed(r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
