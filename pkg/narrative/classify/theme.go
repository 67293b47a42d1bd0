package classify

import (
	"strings"

	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// ThemeClassifier buckets text into themes by plain substring containment.
// Unlike sentiment, theme keywords are not word-bounded ("card" matches
// inside "discard").
type ThemeClassifier struct {
	rules    []ThemeRule
	fallback mention.Theme
}

// NewThemeClassifier copies the lexicon's theme rules in order.
func NewThemeClassifier(lex Lexicon) *ThemeClassifier {
	rules := make([]ThemeRule, 0, len(lex.Themes))
	for _, r := range lex.Themes {
		rules = append(rules, ThemeRule{
			Label:    r.Label,
			Keywords: normalizeKeywords(r.Keywords),
		})
	}
	return &ThemeClassifier{rules: rules, fallback: mention.ThemeGeneral}
}

// Classify returns the label of the first rule with a keyword contained in
// text, or General News.
func (c *ThemeClassifier) Classify(text string) mention.Theme {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Label
			}
		}
	}
	return c.fallback
}

var (
	defaultSentiment = NewSentimentClassifier(DefaultLexicon())
	defaultTheme     = NewThemeClassifier(DefaultLexicon())
)

// Sentiment classifies text with the built-in lexicon.
func Sentiment(text string) mention.Sentiment {
	return defaultSentiment.Classify(text)
}

// Theme classifies text with the built-in lexicon.
func Theme(text string) mention.Theme {
	return defaultTheme.Classify(text)
}
