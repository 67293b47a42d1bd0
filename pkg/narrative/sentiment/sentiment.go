// Package sentiment runs an optional model-based labeling pass over mentions
// before KPI computation. Mentions the model labels keep that label; the
// KPI engine's keyword classifier only fills the rest.
package sentiment

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/narrative/pkg/narrative/mention"
)

const (
	DefaultBatchSize   = 30
	DefaultMaxChars    = 300
	DefaultParallelism = 2
)

// Item is one mention submitted for labeling. ID is the mention's position
// in the list given to Batches.
type Item struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Labeler assigns sentiment labels to a batch. The result may omit ids.
type Labeler interface {
	LabelSentiments(ctx context.Context, items []Item) (map[int]mention.Sentiment, error)
}

// LabelerFunc adapts a function to Labeler.
type LabelerFunc func(ctx context.Context, items []Item) (map[int]mention.Sentiment, error)

func (f LabelerFunc) LabelSentiments(ctx context.Context, items []Item) (map[int]mention.Sentiment, error) {
	return f(ctx, items)
}

// Batches splits the unlabeled mentions into batches of at most size items,
// each text cut to maxChars runes. Non-positive arguments use the defaults.
func Batches(mentions []*mention.Mention, size, maxChars int) [][]Item {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var batches [][]Item
	var current []Item
	for i, m := range mentions {
		if m == nil {
			continue
		}
		if _, ok := m.SentimentLabel(); ok {
			continue
		}
		current = append(current, Item{ID: i, Text: Truncate(m.Text, maxChars)})
		if len(current) == size {
			batches = append(batches, current)
			current = nil
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// Truncate returns at most n runes of s with surrounding space removed.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Stats summarizes a pre-pass.
type Stats struct {
	Batches int
	Failed  int
	Labeled int
	Ignored int
}

// Prepass labels mentions with a Labeler.
type Prepass struct {
	Labeler     Labeler
	BatchSize   int
	MaxChars    int
	Parallelism int
	Logger      *log.Logger
}

// Run labels every unlabeled mention it can. A failing batch is logged and
// counted; its mentions stay unlabeled. Only context cancellation is
// returned as an error. Mentions are written after all batches finish.
func (p *Prepass) Run(ctx context.Context, mentions []*mention.Mention) (Stats, error) {
	batches := Batches(mentions, p.BatchSize, p.MaxChars)
	stats := Stats{Batches: len(batches)}
	if p.Labeler == nil || len(batches) == 0 {
		return stats, nil
	}

	parallelism := p.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	results := make([]map[int]mention.Sentiment, len(batches))
	failed := make([]bool, len(batches))

	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, batch := range batches {
		g.Go(func() error {
			if ctx.Err() != nil {
				failed[i] = true
				return nil
			}
			labels, err := p.Labeler.LabelSentiments(ctx, batch)
			if err != nil {
				failed[i] = true
				if p.Logger != nil {
					p.Logger.Warn("sentiment batch failed", "batch", i, "size", len(batch), "err", err)
				}
				return nil
			}
			results[i] = labels
			return nil
		})
	}
	_ = g.Wait()

	for i, batch := range batches {
		if failed[i] {
			stats.Failed++
			continue
		}
		for _, item := range batch {
			label, ok := results[i][item.ID]
			if !ok {
				continue
			}
			parsed, ok := mention.ParseSentiment(string(label))
			if !ok {
				stats.Ignored++
				continue
			}
			mentions[item.ID].Sentiment = mention.Some(parsed)
			stats.Labeled++
		}
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}
