package stoplist

import (
	"sort"
	"strings"
)

// Manager holds a case-insensitive stopword set.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a manager seeded with the given terms.
func NewManager(initialStops ...[]string) *Manager {
	m := &Manager{stops: make(map[string]struct{})}
	for _, list := range initialStops {
		for _, s := range list {
			m.Add(s)
		}
	}
	return m
}

// Default returns a manager with the English and web-noise stopwords.
func Default() *Manager {
	return NewManager(English, WebNoise)
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.stops[token] = struct{}{}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}

// All returns all stopwords, sorted.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Clone returns an independent copy, so per-run additions (brand names)
// never leak into the shared base list.
func (m *Manager) Clone() *Manager {
	out := &Manager{stops: make(map[string]struct{}, len(m.stops))}
	for s := range m.stops {
		out.stops[s] = struct{}{}
	}
	return out
}

// English is the standard English stopword list.
var English = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're", "you've", "you'll", "you'd",
	"your", "yours", "yourself", "yourselves", "he", "him", "his", "himself", "she", "she's", "her", "hers",
	"herself", "it", "it's", "its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are", "was", "were", "be", "been",
	"being", "have", "has", "had", "having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if",
	"or", "because", "as", "until", "while", "of", "at", "by", "for", "with", "about", "against", "between",
	"into", "through", "during", "before", "after", "above", "below", "to", "from", "up", "down", "in", "out",
	"on", "off", "over", "under", "again", "further", "then", "once", "here", "there", "when", "where", "why",
	"how", "all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no", "nor", "not",
	"only", "own", "same", "so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "don't",
	"should", "should've", "now", "d", "ll", "m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn",
	"couldn't", "didn", "didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven", "haven't",
	"isn", "isn't", "ma", "mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan", "shan't",
	"shouldn", "shouldn't", "wasn", "wasn't", "weren", "weren't", "won", "won't", "wouldn", "wouldn't",
}

// WebNoise covers URL fragments and social-media boilerplate.
var WebNoise = []string{
	"com", "www", "http", "https", "co", "uk", "amp", "rt", "via", "status", "twitter",
}

// Business covers generic corporate terms that dominate brand coverage
// without saying anything about it.
var Business = []string{
	"bank", "plc", "ltd", "group", "holdings", "customer", "customers", "today", "year",
}
