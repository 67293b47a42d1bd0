package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/internal/retrieval"
	"github.com/cognicore/narrative/pkg/narrative/config"
	"github.com/cognicore/narrative/pkg/narrative/store"
	"github.com/cognicore/narrative/pkg/narrative/store/sqlite"
)

type flags struct {
	brand       string
	competitors []string
	industry    string
	hours       int
	outPath     string
	dbPath      string
	debug       bool
}

func parseFlags(args []string) (flags, error) {
	var (
		f     flags
		comps string
	)
	fs := flag.NewFlagSet("fetch-mentions", flag.ContinueOnError)
	fs.StringVar(&f.brand, "brand", os.Getenv(config.EnvBrand), "Brand to search for (required)")
	fs.StringVar(&comps, "competitors", "", "Comma-separated competitor names")
	fs.StringVar(&f.industry, "industry", "default", "Feed catalog: nigeria, tech, finance or default")
	fs.IntVar(&f.hours, "hours", 24, "Look-back window in hours")
	fs.StringVar(&f.outPath, "out", "", "Output JSONL file (default stdout)")
	fs.StringVar(&f.dbPath, "db", os.Getenv(config.EnvDB), "SQLite database used as retrieval cache (optional)")
	fs.BoolVar(&f.debug, "debug", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if strings.TrimSpace(f.brand) == "" {
		return flags{}, errors.New("--brand required")
	}
	if f.hours < 0 {
		return flags{}, errors.New("--hours must not be negative")
	}
	f.competitors = splitList(comps)
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := "info"
	if f.debug {
		level = "debug"
	}
	logger := logging.New(logging.Options{Level: level, Prefix: "fetch-mentions"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if f.dbPath != "" {
		st, err = sqlite.Open(ctx, f.dbPath)
		if err != nil {
			logger.Fatal("Failed to open database", "err", err)
		}
		defer st.Close()
	}

	var w io.Writer = os.Stdout
	if f.outPath != "" {
		file, err := os.Create(f.outPath)
		if err != nil {
			logger.Fatal("Failed to create output", "err", err)
		}
		defer file.Close()
		w = file
	}

	n, err := fetch(ctx, retrieval.NewAggregator(st, logger), f, w)
	if err != nil {
		logger.Fatal("Retrieval failed", "err", err)
	}
	logger.Info("Done", "mentions", n, "out", f.outPath)
}

// fetch runs one retrieval and writes the mentions as JSONL.
func fetch(ctx context.Context, agg *retrieval.Aggregator, f flags, w io.Writer) (int, error) {
	ms, err := agg.Fetch(ctx, retrieval.Query{
		Brand:       f.brand,
		Competitors: f.competitors,
		Industry:    f.industry,
		Hours:       f.hours,
	})
	if err != nil {
		return 0, err
	}
	if err := retrieval.WriteJSONL(w, ms); err != nil {
		return 0, err
	}
	return len(ms), nil
}
