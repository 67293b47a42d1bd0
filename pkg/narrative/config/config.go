package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/narrative/pkg/narrative/classify"
	"github.com/cognicore/narrative/pkg/narrative/internalerr"
)

// Run is the per-deployment analysis configuration.
type Run struct {
	Brand            string      `yaml:"brand" validate:"required"`
	Competitors      []string    `yaml:"competitors"`
	CampaignMessages []string    `yaml:"campaign_messages"`
	Industry         string      `yaml:"industry"`
	Hours            int         `yaml:"hours" validate:"gte=0"`
	Alerts           Alerts      `yaml:"alerts"`
	LLM              LLM         `yaml:"llm"`
	Store            StoreConfig `yaml:"store"`
	FallbackCSV      string      `yaml:"fallback_csv"`
}

// Alerts holds alerting thresholds, in percent, and an optional webhook
// that receives each raised alert as JSON.
type Alerts struct {
	NegativeShare float64 `yaml:"negative_share" validate:"gte=0,lte=100"`
	WebhookURL    string  `yaml:"webhook_url" validate:"omitempty,url"`
}

// LLM configures the optional sentiment and summary model.
type LLM struct {
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"-"`
	BatchSize   int    `yaml:"batch_size" validate:"gte=1,lte=100"`
	MaxChars    int    `yaml:"max_chars" validate:"gte=1"`
	Parallelism int    `yaml:"parallelism" validate:"gte=1"`
}

// Enabled reports whether an API key is configured.
func (l LLM) Enabled() bool { return l.APIKey != "" }

// StoreConfig locates the SQLite database and sets the retrieval cache TTL.
type StoreConfig struct {
	Path     string        `yaml:"path"`
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

// DefaultRun returns a run config with every optional field defaulted.
// Brand is left empty and must be provided. Hours defaults to 0, which
// keeps every mention regardless of date.
func DefaultRun() *Run {
	return &Run{
		Industry: "default",
		Alerts:   Alerts{NegativeShare: 30},
		LLM: LLM{
			Model:       "gpt-4o-mini",
			BatchSize:   30,
			MaxChars:    300,
			Parallelism: 2,
		},
		Store: StoreConfig{CacheTTL: 15 * time.Minute},
	}
}

// LoadRun reads a run config from YAML on top of DefaultRun.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	run := DefaultRun()
	if err := yaml.Unmarshal(data, run); err != nil {
		return nil, err
	}

	return run, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (r *Run) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// LoadLexicon reads keyword overrides from YAML and merges them onto the
// built-in lexicon. Sets left out of the file keep their defaults.
func LoadLexicon(path string) (classify.Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return classify.Lexicon{}, err
	}

	var lex classify.Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return classify.Lexicon{}, err
	}

	return classify.DefaultLexicon().Merge(lex), nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
