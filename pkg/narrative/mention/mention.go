// Package mention defines the Mention record that flows from retrieval
// through classification and KPI aggregation.
//
// Fields that upstream sources may omit are modelled explicitly: Opt for
// labels and brand lists, Count for numeric counters, and Date for raw or
// structured timestamps. The zero value of each means "absent".
package mention

import "strings"

// Sentiment is the tone label attached to a mention.
type Sentiment string

const (
	Positive     Sentiment = "positive"
	Negative     Sentiment = "negative"
	Neutral      Sentiment = "neutral"
	Mixed        Sentiment = "mixed"
	Anger        Sentiment = "anger"
	Appreciation Sentiment = "appreciation"
)

// Sentiments lists every known sentiment label.
var Sentiments = []Sentiment{Positive, Negative, Neutral, Mixed, Anger, Appreciation}

// ParseSentiment maps free-form text (e.g. model output) onto a known label.
func ParseSentiment(s string) (Sentiment, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, known := range Sentiments {
		if s == string(known) {
			return known, true
		}
	}
	return "", false
}

// Favorable reports whether the label counts toward media impact.
func (s Sentiment) Favorable() bool {
	return s == Positive || s == Appreciation
}

// Theme is the coarse topical bucket of a mention.
type Theme string

const (
	ThemeCSR         Theme = "CSR/ESG"
	ThemeCorporate   Theme = "Corporate"
	ThemePartnership Theme = "Partnership/Sponsorship"
	ThemeProduct     Theme = "Product/Service"
	ThemeLegal       Theme = "Legal/Risk"
	ThemeGeneral     Theme = "General News"
)

// Mention is one observed occurrence of brand-relevant content.
type Mention struct {
	Text   string
	Source string
	Date   Date
	Link   string

	Authority Count
	Reach     Count
	Likes     Count
	Comments  Count

	Sentiment       Opt[Sentiment]
	Theme           Opt[Theme]
	MentionedBrands Opt[[]string]
}

// SentimentLabel returns the sentiment when it is set and non-empty.
// An empty label is treated the same as an unset one.
func (m *Mention) SentimentLabel() (Sentiment, bool) {
	s, ok := m.Sentiment.Get()
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ThemeLabel returns the theme when it is set and non-empty.
func (m *Mention) ThemeLabel() (Theme, bool) {
	t, ok := m.Theme.Get()
	if !ok || t == "" {
		return "", false
	}
	return t, true
}

// Brands returns the mentioned brands and whether the field is present.
// A present but empty list is distinct from an absent one.
func (m *Mention) Brands() ([]string, bool) {
	return m.MentionedBrands.Get()
}

// Clone returns a copy that shares no mutable state with m.
func (m *Mention) Clone() *Mention {
	out := *m
	if brands, ok := m.MentionedBrands.Get(); ok {
		out.MentionedBrands = Some(append([]string(nil), brands...))
	}
	return &out
}

// CloneAll clones every non-nil mention in list.
func CloneAll(list []*Mention) []*Mention {
	out := make([]*Mention, 0, len(list))
	for _, m := range list {
		if m != nil {
			out = append(out, m.Clone())
		}
	}
	return out
}
