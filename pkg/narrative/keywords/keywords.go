// Package keywords ranks the most frequent words and two-word phrases in a
// corpus of mention text.
package keywords

import (
	"sort"
	"strings"

	"github.com/cognicore/narrative/pkg/narrative/stoplist"
)

const (
	// DefaultLimit is the number of keywords returned.
	DefaultLimit = 10

	// MinBigramCount drops phrases seen fewer times than this.
	MinBigramCount = 2
)

// Keyword is a ranked word or phrase.
type Keyword struct {
	Phrase string `json:"phrase"`
	Count  int64  `json:"count"`
}

// Extractor ranks keywords against a base stoplist. The base list is never
// mutated; brand names are added to a per-call copy.
type Extractor struct {
	base      *stoplist.Manager
	limit     int
	minBigram int64
}

// NewExtractor creates an extractor. A nil base uses the English, web-noise
// and generic business stopwords.
func NewExtractor(base *stoplist.Manager) *Extractor {
	if base == nil {
		base = stoplist.NewManager(stoplist.English, stoplist.WebNoise, stoplist.Business)
	}
	return &Extractor{base: base.Clone(), limit: DefaultLimit, minBigram: MinBigramCount}
}

// Extract returns the top keywords, highest count first. Ties keep the
// order in which entries were first counted: single words before phrases,
// each in order of first appearance.
func (e *Extractor) Extract(corpus, brand string, competitors []string) []Keyword {
	stops := e.base.Clone()
	excluded := make(map[string]struct{}, len(competitors)+1)
	for _, name := range append([]string{brand}, competitors...) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		stops.Add(name)
		excluded[name] = struct{}{}
	}

	var filtered []string
	for _, tok := range Tokenize(corpus) {
		if !isCandidate(tok) || stops.IsStop(tok) {
			continue
		}
		filtered = append(filtered, tok)
	}

	combined := newCounter()
	for _, tok := range filtered {
		combined.add(tok, 1)
	}

	bigrams := newCounter()
	for i := 0; i+1 < len(filtered); i++ {
		bigrams.add(filtered[i]+" "+filtered[i+1], 1)
	}
	for _, kw := range bigrams.entries {
		if kw.Count < e.minBigram {
			continue
		}
		if _, ok := excluded[kw.Phrase]; ok {
			continue
		}
		combined.add(kw.Phrase, kw.Count)
	}

	ranked := combined.entries
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > e.limit {
		ranked = ranked[:e.limit]
	}
	return ranked
}

var defaultExtractor = NewExtractor(nil)

// Extract ranks keywords with the default stoplist.
func Extract(corpus, brand string, competitors []string) []Keyword {
	return defaultExtractor.Extract(corpus, brand, competitors)
}

// Corpus joins mention texts with single spaces.
func Corpus(texts []string) string {
	return strings.Join(texts, " ")
}

// counter is an insertion-ordered frequency table.
type counter struct {
	index   map[string]int
	entries []Keyword
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(phrase string, n int64) {
	if i, ok := c.index[phrase]; ok {
		c.entries[i].Count += n
		return
	}
	c.index[phrase] = len(c.entries)
	c.entries = append(c.entries, Keyword{Phrase: phrase, Count: n})
}
