package config

import (
	"fmt"

	"github.com/cognicore/narrative/pkg/narrative/classify"
	"github.com/cognicore/narrative/pkg/narrative/keywords"
	"github.com/cognicore/narrative/pkg/narrative/kpi"
	"github.com/cognicore/narrative/pkg/narrative/stoplist"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	RunPath      string
	LexiconPath  string
	StoplistPath string

	// Env resolves environment overrides; nil uses os.LookupEnv.
	Env LookupFunc
}

// Components holds all loaded configuration components. They are built
// once and shared read-only for the life of the process.
type Components struct {
	Run       *Run
	Lexicon   classify.Lexicon
	Stoplist  *stoplist.Manager
	Engine    *kpi.Engine
	Extractor *keywords.Extractor
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load run config
	run := DefaultRun()
	if l.RunPath != "" {
		loaded, err := LoadRun(l.RunPath)
		if err != nil {
			return nil, fmt.Errorf("load run config: %w", err)
		}
		run = loaded
	}
	if err := ApplyEnv(run, l.Env); err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	comp.Run = run

	// Load lexicon
	comp.Lexicon = classify.DefaultLexicon()
	if l.LexiconPath != "" {
		lex, err := LoadLexicon(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	}

	// Load stoplist
	comp.Stoplist = stoplist.NewManager(stoplist.English, stoplist.WebNoise, stoplist.Business)
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		for _, term := range sl.Terms {
			comp.Stoplist.Add(term)
		}
	}

	comp.Engine = kpi.NewEngine(comp.Lexicon)
	comp.Extractor = keywords.NewExtractor(comp.Stoplist)

	return comp, nil
}

// KPIConfig projects the run config onto a KPI computation.
func (r *Run) KPIConfig() kpi.Config {
	return kpi.Config{
		Brand:            r.Brand,
		Competitors:      r.Competitors,
		CampaignMessages: r.CampaignMessages,
		Industry:         r.Industry,
		Hours:            r.Hours,
	}
}
