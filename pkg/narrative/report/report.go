// Package report assembles the reputation brief of one analysis run and
// renders it for people and machines.
package report

import (
	"crypto/rand"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/narrative/pkg/narrative/alert"
	"github.com/cognicore/narrative/pkg/narrative/keywords"
	"github.com/cognicore/narrative/pkg/narrative/kpi"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// Mode records where a run's mentions came from.
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

const (
	// MaxHeadlines is the number of mention rows copied into a brief.
	MaxHeadlines = 5
	// HeadlineRunes is the preview length of a headline row.
	HeadlineRunes = 100
)

// Headline is a short preview of one analyzed mention.
type Headline struct {
	Text      string            `json:"text"`
	Sentiment mention.Sentiment `json:"sentiment"`
	Source    string            `json:"source,omitempty"`
	Link      string            `json:"link,omitempty"`
}

// Brief is the persisted outcome of one run. KPI.Analyzed is not kept;
// MentionCount records its length.
type Brief struct {
	ID           string             `json:"id"`
	Brand        string             `json:"brand"`
	Competitors  []string           `json:"competitors,omitempty"`
	Hours        int                `json:"hours"`
	Mode         Mode               `json:"mode"`
	CreatedAt    time.Time          `json:"created_at"`
	MentionCount int                `json:"mention_count"`
	KPI          kpi.Result         `json:"kpi"`
	Keywords     []keywords.Keyword `json:"keywords"`
	Headlines    []Headline         `json:"headlines"`
	Alerts       []alert.Alert      `json:"alerts,omitempty"`
	Summary      string             `json:"summary,omitempty"`
}

// Input carries everything a brief is built from.
type Input struct {
	Brand       string
	Competitors []string
	Hours       int
	Mode        Mode
	Result      kpi.Result
	Keywords    []keywords.Keyword
	Alerts      []alert.Alert
	Summary     string
	// Now stamps the brief; zero means the current time.
	Now time.Time
}

// Builder constructs briefs with sortable unique ids.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a new brief builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Build creates a brief. The KPI result is copied without its mention list.
func (b *Builder) Build(in Input) Brief {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	b.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	res := in.Result
	analyzed := res.Analyzed
	res.Analyzed = nil

	kws := in.Keywords
	if kws == nil {
		kws = []keywords.Keyword{}
	}

	return Brief{
		ID:           id,
		Brand:        in.Brand,
		Competitors:  in.Competitors,
		Hours:        in.Hours,
		Mode:         in.Mode,
		CreatedAt:    now,
		MentionCount: len(analyzed),
		KPI:          res,
		Keywords:     kws,
		Headlines:    Headlines(analyzed, MaxHeadlines),
		Alerts:       in.Alerts,
		Summary:      in.Summary,
	}
}

// Headlines previews the first n mentions.
func Headlines(mentions []*mention.Mention, n int) []Headline {
	out := make([]Headline, 0, n)
	for _, m := range mentions {
		if len(out) == n {
			break
		}
		if m == nil {
			continue
		}
		s, _ := m.SentimentLabel()
		out = append(out, Headline{
			Text:      Preview(m.Text, HeadlineRunes),
			Sentiment: s,
			Source:    m.Source,
			Link:      m.Link,
		})
	}
	return out
}

// Preview cuts s to n runes, marking the cut with an ellipsis.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Share is one labelled percentage.
type Share struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// SentimentShares lists the sentiment ratio in the canonical label order,
// skipping labels with no mentions.
func (b Brief) SentimentShares() []Share {
	var out []Share
	for _, s := range mention.Sentiments {
		if v, ok := b.KPI.SentimentRatio[s]; ok {
			out = append(out, Share{Label: string(s), Percent: v})
		}
	}
	return out
}

// ThemeShares lists the theme ratio, largest first.
func (b Brief) ThemeShares() []Share {
	out := make([]Share, 0, len(b.KPI.ThemeRatio))
	for t, v := range b.KPI.ThemeRatio {
		out = append(out, Share{Label: string(t), Percent: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// VoiceShares pairs every tracked brand with its share of voice.
func (b Brief) VoiceShares() []Share {
	out := make([]Share, 0, len(b.KPI.AllBrands))
	for i, name := range b.KPI.AllBrands {
		var v float64
		if i < len(b.KPI.SOV) {
			v = b.KPI.SOV[i]
		}
		out = append(out, Share{Label: name, Percent: v})
	}
	return out
}

// NegativeShare is the combined negative and anger percentage.
func (b Brief) NegativeShare() float64 {
	return b.KPI.SentimentRatio[mention.Negative] + b.KPI.SentimentRatio[mention.Anger]
}

// SummaryInput is the compact view of a brief handed to the summarizer.
type SummaryInput struct {
	Brand          string             `json:"brand"`
	Hours          int                `json:"hours"`
	MentionCount   int                `json:"mention_count"`
	Sentiment      []Share            `json:"sentiment"`
	Themes         []Share            `json:"themes"`
	ShareOfVoice   []Share            `json:"share_of_voice"`
	MIS            float64            `json:"mis"`
	MPI            float64            `json:"mpi"`
	EngagementRate float64            `json:"engagement_rate"`
	Reach          int64              `json:"reach"`
	Keywords       []keywords.Keyword `json:"keywords"`
	Headlines      []Headline         `json:"headlines"`
}

// SummaryInput derives the summarizer input.
func (b Brief) SummaryInput() SummaryInput {
	return SummaryInput{
		Brand:          b.Brand,
		Hours:          b.Hours,
		MentionCount:   b.MentionCount,
		Sentiment:      b.SentimentShares(),
		Themes:         b.ThemeShares(),
		ShareOfVoice:   b.VoiceShares(),
		MIS:            b.KPI.MIS,
		MPI:            b.KPI.MPI,
		EngagementRate: b.KPI.EngagementRate,
		Reach:          b.KPI.Reach,
		Keywords:       b.Keywords,
		Headlines:      b.Headlines,
	}
}
