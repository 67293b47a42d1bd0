package sentiment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cognicore/narrative/pkg/narrative/mention"
)

func mentions(texts ...string) []*mention.Mention {
	out := make([]*mention.Mention, len(texts))
	for i, t := range texts {
		out[i] = &mention.Mention{Text: t}
	}
	return out
}

func TestBatches(t *testing.T) {
	ms := mentions("a", "b", "c", "d", "e")
	ms[1].Sentiment = mention.Some(mention.Positive)

	batches := Batches(ms, 2, 10)
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	var ids []int
	for _, b := range batches {
		for _, it := range b {
			ids = append(ids, it.ID)
		}
	}
	want := []int{0, 2, 3, 4}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids = %v, want %v", ids, want)
			break
		}
	}
}

func TestBatchesTruncate(t *testing.T) {
	long := strings.Repeat("é", 400)
	batches := Batches(mentions(long), 0, 0)
	if got := []rune(batches[0][0].Text); len(got) != DefaultMaxChars {
		t.Errorf("text length = %d runes, want %d", len(got), DefaultMaxChars)
	}
}

func TestPrepassAppliesLabels(t *testing.T) {
	ms := mentions("love it", "hate it", "meh", "???")
	labeler := LabelerFunc(func(_ context.Context, items []Item) (map[int]mention.Sentiment, error) {
		out := make(map[int]mention.Sentiment)
		for _, it := range items {
			switch it.Text {
			case "love it":
				out[it.ID] = "Positive"
			case "hate it":
				out[it.ID] = mention.Anger
			case "meh":
				out[it.ID] = "bored"
			}
		}
		out[99] = mention.Negative
		return out, nil
	})

	p := Prepass{Labeler: labeler, BatchSize: 2}
	stats, err := p.Run(context.Background(), ms)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Batches != 2 || stats.Labeled != 2 || stats.Ignored != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if s, _ := ms[0].SentimentLabel(); s != mention.Positive {
		t.Errorf("mention 0 = %q", s)
	}
	if s, _ := ms[1].SentimentLabel(); s != mention.Anger {
		t.Errorf("mention 1 = %q", s)
	}
	if ms[2].Sentiment.IsSet() || ms[3].Sentiment.IsSet() {
		t.Error("unknown labels and misses should leave sentiment unset")
	}
}

func TestPrepassBatchFailureIsNotFatal(t *testing.T) {
	ms := mentions("one", "two", "three")
	var mu sync.Mutex
	calls := 0
	labeler := LabelerFunc(func(_ context.Context, items []Item) (map[int]mention.Sentiment, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		if items[0].ID == 0 {
			return nil, errors.New("rate limited")
		}
		return map[int]mention.Sentiment{items[0].ID: mention.Neutral}, nil
	})

	p := Prepass{Labeler: labeler, BatchSize: 1, Parallelism: 3}
	stats, err := p.Run(context.Background(), ms)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 3 || stats.Failed != 1 || stats.Labeled != 2 {
		t.Errorf("calls=%d stats=%+v", calls, stats)
	}
	if ms[0].Sentiment.IsSet() {
		t.Error("failed batch should leave its mention unlabeled")
	}
}

func TestPrepassCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Prepass{Labeler: LabelerFunc(func(context.Context, []Item) (map[int]mention.Sentiment, error) {
		t.Error("labeler should not run after cancellation")
		return nil, nil
	})}
	if _, err := p.Run(ctx, mentions("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPrepassWithoutLabeler(t *testing.T) {
	var p Prepass
	stats, err := p.Run(context.Background(), mentions("x"))
	if err != nil || stats.Labeled != 0 {
		t.Errorf("stats=%+v err=%v", stats, err)
	}
}
