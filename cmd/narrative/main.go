package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/cognicore/narrative/internal/llm"
	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/internal/retrieval"
	"github.com/cognicore/narrative/pkg/narrative"
	"github.com/cognicore/narrative/pkg/narrative/alert"
	"github.com/cognicore/narrative/pkg/narrative/config"
	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/report"
	"github.com/cognicore/narrative/pkg/narrative/store"
	"github.com/cognicore/narrative/pkg/narrative/store/memstore"
	"github.com/cognicore/narrative/pkg/narrative/store/sqlite"
)

type flags struct {
	configPath   string
	lexiconPath  string
	stoplistPath string
	inputPath    string
	csvPath      string
	dbPath       string
	outPath      string
	format       string
	live         bool
	summary      bool
	debug        bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("narrative", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Run config YAML (brand, competitors, thresholds)")
	fs.StringVar(&f.lexiconPath, "lexicon", "", "Lexicon YAML overriding keyword sets (optional)")
	fs.StringVar(&f.stoplistPath, "stoplist", "", "Extra stop-words YAML (optional)")
	fs.StringVar(&f.inputPath, "input", "", "Offline mentions JSONL, used instead of the fallback CSV")
	fs.StringVar(&f.csvPath, "csv", "", "Fallback CSV dataset (overrides fallback_csv)")
	fs.StringVar(&f.dbPath, "db", "", "SQLite database for cache and brief history (overrides store.path)")
	fs.StringVar(&f.outPath, "out", "", "Write the brief here instead of stdout")
	fs.StringVar(&f.format, "format", "markdown", "Output format: markdown or json")
	fs.BoolVar(&f.live, "live", false, "Retrieve live mentions before falling back to offline data")
	fs.BoolVar(&f.summary, "summary", false, "Ask the LLM for an executive summary")
	fs.BoolVar(&f.debug, "debug", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if f.format != "markdown" && f.format != "json" {
		return flags{}, fmt.Errorf("unknown format %q", f.format)
	}
	return f, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	level := "info"
	if f.debug {
		level = "debug"
	}
	logger := logging.New(logging.Options{Level: level, Prefix: "narrative"})

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("Failed to load .env", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, req, cleanup, err := buildEngine(ctx, f, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", "err", err)
	}
	defer cleanup()

	out, err := engine.Run(ctx, req)
	if err != nil {
		logger.Fatal("Analysis failed", "err", err)
	}
	logger.Info("Brief ready", "id", out.Brief.ID, "mode", out.Brief.Mode, "mentions", out.Brief.MentionCount, "alerts", len(out.Brief.Alerts))

	var w io.Writer = os.Stdout
	if f.outPath != "" {
		file, err := os.Create(f.outPath)
		if err != nil {
			logger.Fatal("Failed to create output", "err", err)
		}
		defer file.Close()
		w = file
	}
	if err := render(w, f.format, out.Brief); err != nil {
		logger.Fatal("Failed to write brief", "err", err)
	}
}

func render(w io.Writer, format string, b report.Brief) error {
	if format == "json" {
		return report.RenderJSON(w, b)
	}
	return report.RenderMarkdown(w, b)
}

// buildEngine wires configuration, storage, retrieval and the optional LLM
// into a Narrative instance. cleanup closes the store.
func buildEngine(ctx context.Context, f flags, logger *log.Logger) (*narrative.Narrative, narrative.Request, func(), error) {
	loader := config.Loader{
		RunPath:      f.configPath,
		LexiconPath:  f.lexiconPath,
		StoplistPath: f.stoplistPath,
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, narrative.Request{}, nil, fmt.Errorf("load configuration: %w", err)
	}
	run := comp.Run

	st, err := openStore(ctx, firstNonEmpty(f.dbPath, run.Store.Path))
	if err != nil {
		return nil, narrative.Request{}, nil, err
	}

	opts := narrative.Options{
		Engine:      comp.Engine,
		Extractor:   comp.Extractor,
		Fallback:    fallback(f.inputPath, firstNonEmpty(f.csvPath, run.FallbackCSV), logger),
		BatchSize:   run.LLM.BatchSize,
		MaxChars:    run.LLM.MaxChars,
		Parallelism: run.LLM.Parallelism,
		Notifier:    alertNotifier(run.Alerts, logger),
		Thresholds:  alert.Thresholds{NegativeShare: run.Alerts.NegativeShare},
		Store:       st,
		Logger:      logger,
	}

	if f.live {
		agg := retrieval.NewAggregator(st, logger)
		agg.CacheTTL = run.Store.CacheTTL
		opts.Retriever = narrative.RetrieverFunc(func(ctx context.Context, req narrative.Request) ([]*mention.Mention, error) {
			return agg.Fetch(ctx, retrieval.Query{
				Brand:       req.Brand,
				Competitors: req.Competitors,
				Industry:    req.Industry,
				Hours:       req.Hours,
			})
		})
	}

	if run.LLM.Enabled() {
		client, err := llm.New(llm.Options{
			APIKey:  run.LLM.APIKey,
			BaseURL: run.LLM.BaseURL,
			Model:   run.LLM.Model,
			Logger:  logger,
		})
		if err != nil {
			st.Close()
			return nil, narrative.Request{}, nil, fmt.Errorf("create llm client: %w", err)
		}
		opts.Labeler = client
		opts.Summarizer = client
	} else if f.summary {
		logger.Warn("No LLM API key configured, skipping executive summary", "env", config.EnvLLMAPIKey)
	}

	req := narrative.Request{
		Brand:            run.Brand,
		Competitors:      run.Competitors,
		CampaignMessages: run.CampaignMessages,
		Industry:         run.Industry,
		Hours:            run.Hours,
		Summarize:        f.summary,
	}

	n := narrative.New(opts)
	cleanup := func() {
		if err := n.Close(); err != nil {
			logger.Warn("Failed to close store", "err", err)
		}
	}
	return n, req, cleanup, nil
}

// alertNotifier always logs alerts and also posts them to the configured
// webhook, if any.
func alertNotifier(cfg config.Alerts, logger *log.Logger) alert.Notifier {
	logged := alert.LogNotifier{Logger: logger}
	if cfg.WebhookURL == "" {
		return logged
	}
	return alert.MultiNotifier{logged, alert.WebhookNotifier{URL: cfg.WebhookURL}}
}

func openStore(ctx context.Context, path string) (store.Store, error) {
	if path == "" {
		return memstore.New(), nil
	}
	st, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// fallback prefers the JSONL input over the CSV dataset. It returns nil
// when neither is configured.
func fallback(jsonlPath, csvPath string, logger *log.Logger) func(context.Context) ([]*mention.Mention, error) {
	switch {
	case jsonlPath != "":
		return func(context.Context) ([]*mention.Mention, error) {
			return retrieval.LoadJSONL(jsonlPath, logger)
		}
	case csvPath != "":
		return func(context.Context) ([]*mention.Mention, error) {
			return retrieval.LoadCSV(csvPath)
		}
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
