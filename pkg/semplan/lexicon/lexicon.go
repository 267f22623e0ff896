package lexicon

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon stores keyword vocabulary mappings so that different phrasings of
// the same search merge into one keyword:
// - Synonyms: sneakers ↔ running shoes
// - Variants: plural/singular or spelling forms (colour ↔ color)
// - Acronyms: crm ↔ customer relationship management
//
// Phrases are matched whole first; otherwise single tokens are mapped.
type Lexicon struct {
	// canonical -> all variants (including canonical itself)
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// Group is one synonym group as it appears in configuration.
type Group struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// FromGroups builds a lexicon from configured synonym groups.
func FromGroups(groups []Group) *Lexicon {
	lex := New()
	for _, g := range groups {
		if clean(g.Canonical) == "" {
			continue
		}
		lex.AddSynonymGroup(g.Canonical, g.Variants)
	}
	return lex
}

// LoadFromYAML loads synonym mappings from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: running shoes
//	    variants: [sneakers, trainers, running trainers]
//	  - canonical: crm
//	    variants: [customer relationship management]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Synonyms []Group `yaml:"synonyms"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return FromGroups(config.Synonyms), nil
}

// AddSynonymGroup adds a synonym group with a canonical form and its variants.
// The canonical form is always the first entry of the variants list.
// If the group already exists, old reverse index entries are cleaned up first.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = clean(canonical)

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			delete(l.reverseIndex, oldV)
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)
	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = clean(v)
		if v != "" && !seen[v] {
			normalized = append(normalized, v)
			seen[v] = true
		}
	}

	l.synonyms[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical form of a phrase. A whole-phrase match
// wins; otherwise each token is mapped on its own.
//
// Examples:
//   - Normalize("sneakers") -> "running shoes"
//   - Normalize("cheap sneakers") -> "cheap running shoes"
//   - Normalize("unknown phrase") -> "unknown phrase"
func (l *Lexicon) Normalize(phrase string) string {
	phrase = clean(phrase)
	if l == nil || len(l.reverseIndex) == 0 {
		return phrase
	}
	if canonical, ok := l.reverseIndex[phrase]; ok {
		return canonical
	}

	tokens := strings.Fields(phrase)
	for i, tok := range tokens {
		if canonical, ok := l.reverseIndex[tok]; ok {
			tokens[i] = canonical
		}
	}
	return strings.Join(tokens, " ")
}

// Variants returns all known variants of a phrase (including the canonical form).
// If the phrase is not in the lexicon, returns a slice containing only the phrase.
func (l *Lexicon) Variants(phrase string) []string {
	phrase = clean(phrase)

	if variants, ok := l.synonyms[phrase]; ok {
		return variants
	}
	if canonical, ok := l.reverseIndex[phrase]; ok {
		if variants, ok := l.synonyms[canonical]; ok {
			return variants
		}
	}
	return []string{phrase}
}

// HasSynonyms returns true if the phrase has synonyms/variants in the lexicon.
func (l *Lexicon) HasSynonyms(phrase string) bool {
	_, exists := l.reverseIndex[clean(phrase)]
	return exists
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, variants := range l.synonyms {
		total += len(variants)
	}
	return Stats{
		SynonymGroups: len(l.synonyms),
		TotalVariants: total,
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	SynonymGroups int // Number of canonical forms
	TotalVariants int // Total number of variants across all groups
}

func clean(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
