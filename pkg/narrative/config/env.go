package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cognicore/narrative/pkg/narrative/internalerr"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvBrand      = "NARRATIVE_BRAND"
	EnvHours      = "NARRATIVE_HOURS"
	EnvLLMAPIKey  = "NARRATIVE_LLM_API_KEY"
	EnvLLMBaseURL = "NARRATIVE_LLM_BASE_URL"
	EnvLLMModel   = "NARRATIVE_LLM_MODEL"
	EnvDB         = "NARRATIVE_DB"
	EnvWebhookURL = "NARRATIVE_ALERT_WEBHOOK"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment. Missing files are not an error; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides run fields from the environment.
func ApplyEnv(r *Run, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := nonEmpty(lookup, EnvBrand); ok {
		r.Brand = v
	}
	if v, ok := nonEmpty(lookup, EnvHours); ok {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", internalerr.ErrInvalidConfig, EnvHours, v)
		}
		r.Hours = hours
	}
	if v, ok := nonEmpty(lookup, EnvLLMAPIKey); ok {
		r.LLM.APIKey = v
	}
	if v, ok := nonEmpty(lookup, EnvLLMBaseURL); ok {
		r.LLM.BaseURL = v
	}
	if v, ok := nonEmpty(lookup, EnvLLMModel); ok {
		r.LLM.Model = v
	}
	if v, ok := nonEmpty(lookup, EnvDB); ok {
		r.Store.Path = v
	}
	if v, ok := nonEmpty(lookup, EnvWebhookURL); ok {
		r.Alerts.WebhookURL = v
	}
	return nil
}

func nonEmpty(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
