// Package narrative runs a brand reputation analysis end to end: it gathers
// mentions, labels and aggregates them, raises alerts and records a brief.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/pkg/narrative/alert"
	"github.com/cognicore/narrative/pkg/narrative/classify"
	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/keywords"
	"github.com/cognicore/narrative/pkg/narrative/kpi"
	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/report"
	"github.com/cognicore/narrative/pkg/narrative/sentiment"
	"github.com/cognicore/narrative/pkg/narrative/store"
	"github.com/cognicore/narrative/pkg/narrative/window"
)

// SummaryUnavailable replaces the executive summary when it could not be
// generated.
const SummaryUnavailable = "Executive summary unavailable for this run."

// Request describes one analysis run.
type Request struct {
	Brand            string
	Competitors      []string
	CampaignMessages []string
	Industry         string
	Hours            int

	// Summarize asks for an executive summary when a Summarizer is set.
	Summarize bool
}

// Retriever fetches live mentions.
type Retriever interface {
	Retrieve(ctx context.Context, req Request) ([]*mention.Mention, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, req Request) ([]*mention.Mention, error)

func (f RetrieverFunc) Retrieve(ctx context.Context, req Request) ([]*mention.Mention, error) {
	return f(ctx, req)
}

// Summarizer writes an executive summary.
type Summarizer interface {
	Summarize(ctx context.Context, in report.SummaryInput) (string, error)
}

// Options configures a Narrative instance. Only Fallback or Retriever is
// strictly needed; everything else is optional.
type Options struct {
	Engine    *kpi.Engine
	Extractor *keywords.Extractor

	Retriever Retriever
	// Fallback loads the offline dataset used when live retrieval fails.
	Fallback func(ctx context.Context) ([]*mention.Mention, error)

	Labeler     sentiment.Labeler
	BatchSize   int
	MaxChars    int
	Parallelism int

	Summarizer Summarizer
	Notifier   alert.Notifier
	// Thresholds left at the zero value use alert.DefaultThresholds.
	Thresholds alert.Thresholds

	Store   store.Store
	Builder *report.Builder

	Logger *log.Logger
	Now    func() time.Time
}

// Narrative is the analysis facade.
type Narrative struct {
	opts   Options
	logger *log.Logger
}

// New creates a Narrative with the given collaborators.
func New(opts Options) *Narrative {
	if opts.Engine == nil {
		opts.Engine = kpi.NewEngine(classify.DefaultLexicon())
	}
	if opts.Extractor == nil {
		opts.Extractor = keywords.NewExtractor(nil)
	}
	if opts.Builder == nil {
		opts.Builder = report.New()
	}
	if opts.Thresholds == (alert.Thresholds{}) {
		opts.Thresholds = alert.DefaultThresholds()
	}
	return &Narrative{opts: opts, logger: logging.OrDefault(opts.Logger)}
}

// Close releases the store, if any.
func (n *Narrative) Close() error {
	if n.opts.Store == nil {
		return nil
	}
	return n.opts.Store.Close()
}

// Outcome is the result of a run.
type Outcome struct {
	Brief   report.Brief
	Result  kpi.Result
	Prepass sentiment.Stats
}

// Run executes one analysis. Live retrieval is tried first; when it fails or
// finds nothing the fallback dataset is analyzed instead and the brief is
// marked as demo. Only live runs use the sentiment labeler and deliver
// alerts.
func (n *Narrative) Run(ctx context.Context, req Request) (Outcome, error) {
	if req.Brand == "" {
		return Outcome{}, fmt.Errorf("brand required: %w", internalerr.ErrInvalidInput)
	}
	now := n.now()

	mentions, mode, err := n.gather(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if mode == report.ModeLive && n.opts.Labeler != nil {
		pre := sentiment.Prepass{
			Labeler:     n.opts.Labeler,
			BatchSize:   n.opts.BatchSize,
			MaxChars:    n.opts.MaxChars,
			Parallelism: n.opts.Parallelism,
			Logger:      n.logger,
		}
		stats, err := pre.Run(ctx, window.FilterAt(mentions, req.Hours, now))
		if err != nil {
			return Outcome{}, err
		}
		out.Prepass = stats
	}

	cfg := kpi.Config{
		Brand:            req.Brand,
		Competitors:      req.Competitors,
		CampaignMessages: req.CampaignMessages,
		Industry:         req.Industry,
		Hours:            req.Hours,
	}
	res := n.opts.Engine.ComputeAt(mentions, cfg, now)
	out.Result = res

	texts := make([]string, len(res.Analyzed))
	for i, m := range res.Analyzed {
		texts[i] = m.Text
	}
	kws := n.opts.Extractor.Extract(keywords.Corpus(texts), req.Brand, req.Competitors)

	alerts := alert.Evaluate(req.Brand, res, n.opts.Thresholds)
	if mode == report.ModeLive && n.opts.Notifier != nil {
		if err := alert.NotifyAll(ctx, n.opts.Notifier, alerts); err != nil {
			n.logger.Warn("alert delivery failed", "err", err)
		}
	}

	brief := n.opts.Builder.Build(report.Input{
		Brand:       req.Brand,
		Competitors: req.Competitors,
		Hours:       req.Hours,
		Mode:        mode,
		Result:      res,
		Keywords:    kws,
		Alerts:      alerts,
		Now:         now,
	})

	if req.Summarize && n.opts.Summarizer != nil {
		summary, err := n.opts.Summarizer.Summarize(ctx, brief.SummaryInput())
		if err != nil {
			n.logger.Warn("summary failed", "err", err)
			summary = SummaryUnavailable
		}
		brief.Summary = summary
	}

	if n.opts.Store != nil {
		if err := n.opts.Store.SaveBrief(ctx, brief); err != nil {
			n.logger.Warn("brief not saved", "id", brief.ID, "err", err)
		}
	}

	out.Brief = brief
	return out, nil
}

// gather returns live mentions, or the fallback dataset when live retrieval
// is unavailable, fails or comes back empty.
func (n *Narrative) gather(ctx context.Context, req Request) ([]*mention.Mention, report.Mode, error) {
	if n.opts.Retriever != nil {
		ms, err := n.opts.Retriever.Retrieve(ctx, req)
		switch {
		case err == nil && len(ms) > 0:
			return ms, report.ModeLive, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, "", err
		case err != nil:
			n.logger.Warn("live retrieval failed, using offline data", "err", err)
		default:
			n.logger.Warn("live retrieval found nothing, using offline data")
		}
	}

	if n.opts.Fallback == nil {
		return nil, "", fmt.Errorf("no live data and no fallback dataset: %w", internalerr.ErrNoData)
	}
	ms, err := n.opts.Fallback(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load fallback dataset: %w: %w", internalerr.ErrNoData, err)
	}
	if len(ms) == 0 {
		return nil, "", fmt.Errorf("fallback dataset is empty: %w", internalerr.ErrNoData)
	}
	return ms, report.ModeDemo, nil
}

// History lists stored briefs for a brand, newest first.
func (n *Narrative) History(ctx context.Context, brand string, limit int) ([]report.Brief, error) {
	if n.opts.Store == nil {
		return nil, fmt.Errorf("no store configured: %w", internalerr.ErrStoreUnavailable)
	}
	return n.opts.Store.ListBriefs(ctx, brand, limit)
}

func (n *Narrative) now() time.Time {
	if n.opts.Now != nil {
		return n.opts.Now().UTC()
	}
	return time.Now().UTC()
}
