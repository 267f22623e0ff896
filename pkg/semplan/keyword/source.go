package keyword

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Source identifies the discovery channel that produced a candidate.
type Source uint8

const (
	SourceAutocomplete Source = iota
	SourceWebsite
	SourceCompetitor
	SourceTemplate
	SourceSeed

	numSources
)

var sourceNames = [numSources]string{
	SourceAutocomplete: "AUTOCOMPLETE",
	SourceWebsite:      "WEBSITE_CONTENT",
	SourceCompetitor:   "COMPETITOR",
	SourceTemplate:     "INDUSTRY_TEMPLATE",
	SourceSeed:         "SEED",
}

// AllSources lists every known source in enum order.
func AllSources() []Source {
	out := make([]Source, 0, numSources)
	for s := Source(0); s < numSources; s++ {
		out = append(out, s)
	}
	return out
}

func (s Source) String() string {
	if s < numSources {
		return sourceNames[s]
	}
	return fmt.Sprintf("Source(%d)", uint8(s))
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool { return s < numSources }

// ParseSource converts a source name (case-insensitive) to a Source.
func ParseSource(name string) (Source, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range sourceNames {
		if n == name {
			return Source(i), nil
		}
	}
	return 0, fmt.Errorf("unknown source %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown source %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SourceSet is the set of sources that independently produced a keyword.
type SourceSet uint8

// NewSourceSet builds a set from the given sources.
func NewSourceSet(sources ...Source) SourceSet {
	var set SourceSet
	for _, s := range sources {
		set = set.Add(s)
	}
	return set
}

// Add returns the set with s included.
func (set SourceSet) Add(s Source) SourceSet {
	if !s.Valid() {
		return set
	}
	return set | 1<<s
}

// Has reports whether s is in the set.
func (set SourceSet) Has(s Source) bool {
	return s.Valid() && set&(1<<s) != 0
}

// Union returns the union of both sets.
func (set SourceSet) Union(other SourceSet) SourceSet { return set | other }

// Len returns the number of sources in the set.
func (set SourceSet) Len() int {
	n := 0
	for s := Source(0); s < numSources; s++ {
		if set.Has(s) {
			n++
		}
	}
	return n
}

// Empty reports whether no source is present.
func (set SourceSet) Empty() bool { return set == 0 }

// Sources returns the members in enum order.
func (set SourceSet) Sources() []Source {
	out := make([]Source, 0, numSources)
	for s := Source(0); s < numSources; s++ {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func (set SourceSet) String() string {
	names := make([]string, 0, numSources)
	for _, s := range set.Sources() {
		names = append(names, s.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// MarshalJSON encodes the set as a list of source names.
func (set SourceSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(set.Sources())
}

// UnmarshalJSON decodes a list of source names.
func (set *SourceSet) UnmarshalJSON(data []byte) error {
	var sources []Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return err
	}
	*set = NewSourceSet(sources...)
	return nil
}
