package kpi

import (
	"strings"

	"github.com/cognicore/narrative/pkg/narrative/brands"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// DefaultAuthority is the credibility weight of a mention without one.
const DefaultAuthority = 5

// record is a fully-populated view of one mention. Everything downstream of
// normalize works on records and never re-inspects optional fields.
type record struct {
	sentiment mention.Sentiment
	theme     mention.Theme
	brands    []string
	textLower string
	source    string
	authority int64
	reach     int64

	engagement int64
	engageOK   bool
}

// normalize backfills sentiment, theme and mentioned brands on m when they
// are absent, then derives the typed record. Present labels are never
// overwritten.
func (e *Engine) normalize(m *mention.Mention, det *brands.Detector) record {
	sentiment, ok := m.SentimentLabel()
	if !ok {
		sentiment = e.sentiment.Classify(m.Text)
		m.Sentiment = mention.Some(sentiment)
	}

	theme, ok := m.ThemeLabel()
	if !ok {
		theme = e.theme.Classify(m.Text)
		m.Theme = mention.Some(theme)
	}

	found, ok := m.Brands()
	if !ok {
		found = det.Detect(m.Text)
		m.MentionedBrands = mention.Some(found)
	}

	likes, likesOK := m.Likes.Int()
	comments, commentsOK := m.Comments.Int()

	return record{
		sentiment:  sentiment,
		theme:      theme,
		brands:     uniqueNames(found),
		textLower:  strings.ToLower(m.Text),
		source:     strings.ToLower(m.Source),
		authority:  m.Authority.Or(DefaultAuthority),
		reach:      m.Reach.Or(0),
		engagement: likes + comments,
		engageOK:   likesOK && commentsOK,
	}
}

// uniqueNames drops blanks and repeats so each brand counts once per mention.
func uniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
