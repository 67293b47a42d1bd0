// Package kpi turns a list of mentions into reputation metrics: sentiment
// and theme distribution, share of voice, media impact, message penetration,
// engagement and reach.
//
// Compute backfills missing labels on the mentions it is given. The caller
// must not share a mention list across concurrent computations.
package kpi

import (
	"sort"
	"strings"
	"time"

	"github.com/cognicore/narrative/pkg/narrative/brands"
	"github.com/cognicore/narrative/pkg/narrative/classify"
	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/window"
)

// Config describes one analysis run.
type Config struct {
	Brand            string
	Competitors      []string
	CampaignMessages []string
	// Industry is accepted for the retrieval layer; it does not change any metric.
	Industry string
	// Hours is the lookback window; 0 disables time filtering.
	Hours int
}

// Result is the aggregate of one run.
type Result struct {
	SentimentRatio map[mention.Sentiment]float64 `json:"sentiment_ratio"`
	ThemeRatio     map[mention.Theme]float64     `json:"theme_ratio,omitempty"`
	AllBrands      []string                      `json:"all_brands"`
	SOV            []float64                     `json:"sov"`
	MIS            float64                       `json:"mis"`
	MPI            float64                       `json:"mpi"`
	EngagementRate float64                       `json:"engagement_rate"`
	Reach          int64                         `json:"reach"`
	Analyzed       []*mention.Mention            `json:"analyzed_data,omitempty"`
}

// ShareOfVoice returns the SOV entry for name, if tracked.
func (r Result) ShareOfVoice(name string) (float64, bool) {
	for i, b := range r.AllBrands {
		if b == name {
			return r.SOV[i], true
		}
	}
	return 0, false
}

// SocialSources are the source tokens whose mentions carry engagement data.
// A mention qualifies when its lower-cased source contains any of them.
func SocialSources() []string {
	return []string{"reddit", "fb", "facebook", "ig", "instagram", "threads", "twitter", "x", "linkedin"}
}

// Engine computes KPIs with a fixed pair of classifiers.
type Engine struct {
	sentiment *classify.SentimentClassifier
	theme     *classify.ThemeClassifier
	social    []string
}

// NewEngine builds an engine from a lexicon.
func NewEngine(lex classify.Lexicon) *Engine {
	return New(classify.NewSentimentClassifier(lex), classify.NewThemeClassifier(lex))
}

// New builds an engine from prepared classifiers.
func New(sentiment *classify.SentimentClassifier, theme *classify.ThemeClassifier) *Engine {
	return &Engine{sentiment: sentiment, theme: theme, social: SocialSources()}
}

// Compute runs the analysis relative to the current time.
func (e *Engine) Compute(mentions []*mention.Mention, cfg Config) Result {
	return e.ComputeAt(mentions, cfg, time.Now().UTC())
}

// ComputeAt runs the analysis with now as the window reference.
func (e *Engine) ComputeAt(mentions []*mention.Mention, cfg Config, now time.Time) Result {
	if cfg.Hours > 0 {
		mentions = window.FilterAt(mentions, cfg.Hours, now)
	} else {
		mentions = compact(mentions)
	}
	if len(mentions) == 0 {
		return emptyResult(cfg.Brand)
	}

	det := brands.NewDetector(brands.Candidates(cfg.Brand, cfg.Competitors))
	records := make([]record, len(mentions))
	sentimentCounts := make(map[mention.Sentiment]int)
	themeCounts := make(map[mention.Theme]int)
	brandCounts := make(map[string]int)

	for i, m := range mentions {
		rec := e.normalize(m, det)
		records[i] = rec
		sentimentCounts[rec.sentiment]++
		themeCounts[rec.theme]++
		for _, b := range rec.brands {
			brandCounts[b]++
		}
	}

	total := float64(len(records))
	res := Result{
		SentimentRatio: make(map[mention.Sentiment]float64, len(sentimentCounts)),
		ThemeRatio:     make(map[mention.Theme]float64, len(themeCounts)),
		Analyzed:       mentions,
	}
	for label, n := range sentimentCounts {
		res.SentimentRatio[label] = float64(n) / total * 100
	}
	for label, n := range themeCounts {
		res.ThemeRatio[label] = float64(n) / total * 100
	}

	res.AllBrands = brandUniverse(cfg.Brand, cfg.Competitors, brandCounts)
	res.SOV = shareOfVoice(res.AllBrands, brandCounts)
	res.MIS = mediaImpact(records)
	res.MPI = messagePenetration(records, cfg.CampaignMessages)
	res.EngagementRate = e.engagementRate(records)
	res.Reach = totalReach(records)
	return res
}

func emptyResult(brand string) Result {
	return Result{
		SentimentRatio: map[mention.Sentiment]float64{},
		AllBrands:      []string{brand},
		SOV:            []float64{},
	}
}

func compact(mentions []*mention.Mention) []*mention.Mention {
	for _, m := range mentions {
		if m == nil {
			out := make([]*mention.Mention, 0, len(mentions))
			for _, m := range mentions {
				if m != nil {
					out = append(out, m)
				}
			}
			return out
		}
	}
	return mentions
}

// brandUniverse unions configured and observed brand names. The tracked
// brand sorts first; the rest are case-insensitive alphabetical.
func brandUniverse(brand string, competitors []string, counts map[string]int) []string {
	set := make(map[string]struct{}, len(competitors)+len(counts)+1)
	for _, b := range brands.Candidates(brand, competitors) {
		set[b] = struct{}{}
	}
	for b := range counts {
		set[b] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := strings.EqualFold(out[i], brand), strings.EqualFold(out[j], brand)
		if ti != tj {
			return ti
		}
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}

func shareOfVoice(universe []string, counts map[string]int) []float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	sov := make([]float64, len(universe))
	if total == 0 {
		return sov
	}
	for i, b := range universe {
		sov[i] = float64(counts[b]) / float64(total) * 100
	}
	return sov
}

func mediaImpact(records []record) float64 {
	var mis float64
	for _, r := range records {
		if r.sentiment.Favorable() {
			mis += float64(r.authority)
		}
	}
	return mis
}

// messagePenetration matches campaign messages as plain case-insensitive
// substrings of the mention text.
func messagePenetration(records []record, messages []string) float64 {
	lowered := make([]string, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(msg))
	}
	if len(lowered) == 0 || len(records) == 0 {
		return 0
	}
	matches := 0
	for _, r := range records {
		for _, msg := range lowered {
			if strings.Contains(r.textLower, msg) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(records)) * 100
}

// engagementRate averages likes+comments over social mentions. Mentions
// with non-numeric counters are left out of both sum and count.
func (e *Engine) engagementRate(records []record) float64 {
	var sum int64
	n := 0
	for _, r := range records {
		if !e.isSocial(r.source) || !r.engageOK {
			continue
		}
		sum += r.engagement
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func (e *Engine) isSocial(source string) bool {
	for _, tok := range e.social {
		if strings.Contains(source, tok) {
			return true
		}
	}
	return false
}

func totalReach(records []record) int64 {
	var reach int64
	for _, r := range records {
		reach += r.reach
	}
	return reach
}

var defaultEngine = NewEngine(classify.DefaultLexicon())

// Compute runs the analysis with the built-in lexicon.
func Compute(mentions []*mention.Mention, cfg Config) Result {
	return defaultEngine.Compute(mentions, cfg)
}
