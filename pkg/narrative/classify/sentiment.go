// Package classify assigns sentiment and theme labels to free text using
// ordered keyword rules. Classifiers are immutable after construction and
// safe for concurrent use.
package classify

import (
	"regexp"
	"strings"

	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// Signals records which keyword sets matched a text.
type Signals struct {
	Positive     bool
	Appreciation bool
	Negative     bool
	Anger        bool
	Mixed        bool
}

// Rule assigns Label when When holds. Rules are evaluated in order.
type Rule struct {
	Label mention.Sentiment
	When  func(Signals) bool
}

// SentimentRules returns the default precedence:
// anger > mixed > negative > positive > appreciation. Neutral is the fallback.
func SentimentRules() []Rule {
	return []Rule{
		{Label: mention.Anger, When: func(s Signals) bool { return s.Anger }},
		{Label: mention.Mixed, When: func(s Signals) bool {
			return (s.Positive && s.Negative) || (s.Mixed && (s.Positive || s.Negative))
		}},
		{Label: mention.Negative, When: func(s Signals) bool { return s.Negative }},
		{Label: mention.Positive, When: func(s Signals) bool { return s.Positive }},
		{Label: mention.Appreciation, When: func(s Signals) bool { return s.Appreciation }},
	}
}

// SentimentClassifier labels text by whole-word keyword matches.
type SentimentClassifier struct {
	positive     *wordSet
	appreciation *wordSet
	negative     *wordSet
	anger        *wordSet
	mixed        *wordSet
	rules        []Rule
	fallback     mention.Sentiment
}

// NewSentimentClassifier compiles the lexicon's sentiment sets.
func NewSentimentClassifier(lex Lexicon) *SentimentClassifier {
	return &SentimentClassifier{
		positive:     newWordSet(lex.Positive),
		appreciation: newWordSet(lex.Appreciation),
		negative:     newWordSet(lex.Negative),
		anger:        newWordSet(lex.Anger),
		mixed:        newWordSet(lex.Mixed),
		rules:        SentimentRules(),
		fallback:     mention.Neutral,
	}
}

// Signals reports which keyword sets occur in text as whole words.
func (c *SentimentClassifier) Signals(text string) Signals {
	lower := strings.ToLower(text)
	return Signals{
		Positive:     c.positive.match(lower),
		Appreciation: c.appreciation.match(lower),
		Negative:     c.negative.match(lower),
		Anger:        c.anger.match(lower),
		Mixed:        c.mixed.match(lower),
	}
}

// Classify returns the first rule label whose predicate holds, or neutral.
// Empty text is neutral without scanning.
func (c *SentimentClassifier) Classify(text string) mention.Sentiment {
	if text == "" {
		return c.fallback
	}
	sig := c.Signals(text)
	for _, r := range c.rules {
		if r.When(sig) {
			return r.Label
		}
	}
	return c.fallback
}

// wordSet matches any of its keywords bounded by word boundaries.
type wordSet struct {
	re *regexp.Regexp
}

// Unicode-aware stand-ins for \b, which treats every non-ASCII letter as a
// boundary.
const (
	wordStart = `(?:^|[^\p{L}\p{M}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{M}\p{N}_])`
)

func newWordSet(keywords []string) *wordSet {
	keywords = normalizeKeywords(keywords)
	if len(keywords) == 0 {
		return &wordSet{}
	}
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return &wordSet{re: regexp.MustCompile(wordStart + `(?:` + strings.Join(quoted, "|") + `)` + wordEnd)}
}

func (w *wordSet) match(lower string) bool {
	if w.re == nil {
		return false
	}
	return w.re.MatchString(lower)
}
