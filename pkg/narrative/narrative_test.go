package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/pkg/narrative/alert"
	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/report"
	"github.com/cognicore/narrative/pkg/narrative/sentiment"
	"github.com/cognicore/narrative/pkg/narrative/store/memstore"
)

var now = time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

func liveMentions() []*mention.Mention {
	return []*mention.Mention{
		{Text: "Acme customers are furious about fraud", Source: "twitter", Date: mention.DateTime(now.Add(-time.Hour))},
		{Text: "Acme app is terrible and slow", Source: "punch", Date: mention.DateTime(now.Add(-2 * time.Hour))},
		{Text: "Zenith opens branch", Source: "vanguard", Date: mention.DateTime(now.Add(-3 * time.Hour))},
		{Text: "Acme old story", Source: "punch", Date: mention.DateTime(now.Add(-72 * time.Hour))},
	}
}

func demoMentions(context.Context) ([]*mention.Mention, error) {
	return []*mention.Mention{
		{Text: "Acme launches great savings product", Source: "blog"},
	}, nil
}

type recordingNotifier struct{ got []alert.Alert }

func (r *recordingNotifier) Notify(_ context.Context, a alert.Alert) error {
	r.got = append(r.got, a)
	return nil
}

type stubSummarizer struct {
	text string
	err  error
	in   report.SummaryInput
}

func (s *stubSummarizer) Summarize(_ context.Context, in report.SummaryInput) (string, error) {
	s.in = in
	return s.text, s.err
}

func TestRunLive(t *testing.T) {
	st := memstore.New()
	notifier := &recordingNotifier{}
	summarizer := &stubSummarizer{text: "Reputation is under pressure."}
	labeled := 0

	n := New(Options{
		Retriever: RetrieverFunc(func(context.Context, Request) ([]*mention.Mention, error) {
			return liveMentions(), nil
		}),
		Fallback: demoMentions,
		Labeler: sentiment.LabelerFunc(func(_ context.Context, items []sentiment.Item) (map[int]mention.Sentiment, error) {
			labeled += len(items)
			return map[int]mention.Sentiment{0: mention.Anger}, nil
		}),
		Summarizer: summarizer,
		Notifier:   notifier,
		Store:      st,
		Logger:     logging.Discard(),
		Now:        func() time.Time { return now },
	})
	defer n.Close()

	out, err := n.Run(context.Background(), Request{Brand: "Acme", Competitors: []string{"Zenith"}, Hours: 24, Summarize: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	b := out.Brief
	if b.Mode != report.ModeLive || b.MentionCount != 3 {
		t.Errorf("mode=%s count=%d", b.Mode, b.MentionCount)
	}
	if labeled != 3 || out.Prepass.Labeled != 1 {
		t.Errorf("labeled=%d stats=%+v", labeled, out.Prepass)
	}
	// anger (labeled) + negative (keyword) = 2 of 3
	if got := b.NegativeShare(); got < 66 || got > 67 {
		t.Errorf("negative share = %v", got)
	}
	if len(b.Alerts) != 1 || len(notifier.got) != 1 {
		t.Errorf("alerts=%v delivered=%v", b.Alerts, notifier.got)
	}
	if b.Summary != "Reputation is under pressure." || summarizer.in.Brand != "Acme" {
		t.Errorf("summary = %q", b.Summary)
	}
	if len(b.Keywords) == 0 {
		t.Error("expected keywords")
	}

	saved, err := st.GetBrief(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("brief not stored: %v", err)
	}
	if saved.Summary != b.Summary {
		t.Error("stored brief differs")
	}
	hist, err := n.History(context.Background(), "acme", 0)
	if err != nil || len(hist) != 1 {
		t.Errorf("history = %v, %v", hist, err)
	}
}

func TestRunFallsBackToDemo(t *testing.T) {
	tests := []struct {
		name      string
		retriever Retriever
	}{
		{"no retriever", nil},
		{"retrieval error", RetrieverFunc(func(context.Context, Request) ([]*mention.Mention, error) {
			return nil, internalerr.ErrSourceFailed
		})},
		{"empty retrieval", RetrieverFunc(func(context.Context, Request) ([]*mention.Mention, error) {
			return nil, nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			n := New(Options{
				Retriever: tt.retriever,
				Fallback:  demoMentions,
				Labeler: sentiment.LabelerFunc(func(context.Context, []sentiment.Item) (map[int]mention.Sentiment, error) {
					t.Error("labeler must not run in demo mode")
					return nil, nil
				}),
				Notifier:   notifier,
				Thresholds: alert.Thresholds{NegativeShare: -1},
				Logger:     logging.Discard(),
				Now:        func() time.Time { return now },
			})

			out, err := n.Run(context.Background(), Request{Brand: "Acme", Hours: 24})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if out.Brief.Mode != report.ModeDemo || out.Brief.MentionCount != 1 {
				t.Errorf("mode=%s count=%d", out.Brief.Mode, out.Brief.MentionCount)
			}
			if len(out.Brief.Alerts) != 1 {
				t.Errorf("alerts should still be evaluated, got %v", out.Brief.Alerts)
			}
			if len(notifier.got) != 0 {
				t.Error("demo runs must not deliver alerts")
			}
		})
	}
}

func TestRunNoData(t *testing.T) {
	failing := RetrieverFunc(func(context.Context, Request) ([]*mention.Mention, error) {
		return nil, errors.New("offline")
	})
	cases := []Options{
		{Retriever: failing},
		{Retriever: failing, Fallback: func(context.Context) ([]*mention.Mention, error) { return nil, errors.New("missing csv") }},
		{Fallback: func(context.Context) ([]*mention.Mention, error) { return nil, nil }},
	}
	for i, opts := range cases {
		opts.Logger = logging.Discard()
		_, err := New(opts).Run(context.Background(), Request{Brand: "Acme"})
		if !errors.Is(err, internalerr.ErrNoData) {
			t.Errorf("case %d: err = %v, want ErrNoData", i, err)
		}
	}
}

func TestRunCancelledRetrieval(t *testing.T) {
	n := New(Options{
		Retriever: RetrieverFunc(func(ctx context.Context, _ Request) ([]*mention.Mention, error) {
			return nil, context.Canceled
		}),
		Fallback: demoMentions,
		Logger:   logging.Discard(),
	})
	if _, err := n.Run(context.Background(), Request{Brand: "Acme"}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunSummaryFailure(t *testing.T) {
	n := New(Options{
		Fallback:   demoMentions,
		Summarizer: &stubSummarizer{err: errors.New("quota")},
		Logger:     logging.Discard(),
	})
	out, err := n.Run(context.Background(), Request{Brand: "Acme", Summarize: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Brief.Summary != SummaryUnavailable {
		t.Errorf("summary = %q", out.Brief.Summary)
	}
}

func TestRunRequiresBrand(t *testing.T) {
	_, err := New(Options{Fallback: demoMentions}).Run(context.Background(), Request{})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	if _, err := New(Options{}).History(context.Background(), "Acme", 5); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("err = %v", err)
	}
}
