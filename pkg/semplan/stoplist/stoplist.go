package stoplist

import "strings"

// DefaultTerms are the function words dropped from extracted page text.
var DefaultTerms = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "can", "for", "from",
	"in", "is", "it", "of", "on", "or", "our", "that", "the", "this", "to",
	"we", "with", "you", "your",
}

// Manager holds the stopword set used by extractors and theme detection.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			stops[s] = struct{}{}
		}
	}
	return &Manager{stops: stops}
}

// Default returns a manager seeded with DefaultTerms.
func Default() *Manager {
	return NewManager(DefaultTerms)
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	m.stops[strings.ToLower(token)] = struct{}{}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// All returns all stopwords
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	return result
}

// OnlyStops reports whether every token of phrase is a stopword.
// An empty phrase counts as stopwords only.
func (m *Manager) OnlyStops(phrase string) bool {
	for _, tok := range strings.Fields(phrase) {
		if !m.IsStop(tok) {
			return false
		}
	}
	return true
}
