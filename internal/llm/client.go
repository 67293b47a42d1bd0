// Package llm talks to an OpenAI-compatible Responses endpoint to label
// mention sentiment in batches and to write executive summaries.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gpt-4o-mini"

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string

	HTTPClient *http.Client
	Logger     *log.Logger

	// RateLimitWaits and ServerErrorWaits are the pauses before each retry;
	// their length sets the number of retries. Nil uses the defaults.
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

// Client calls the Responses API.
type Client struct {
	api    openai.Client
	model  string
	logger *log.Logger

	rateLimitWaits   []time.Duration
	serverErrorWaits []time.Duration
}

// New creates a client. An API key is required.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("llm: API key required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	} else {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}))
	}

	c := &Client{
		api:              openai.NewClient(reqOpts...),
		model:            opts.Model,
		logger:           opts.Logger,
		rateLimitWaits:   opts.RateLimitWaits,
		serverErrorWaits: opts.ServerErrorWaits,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.rateLimitWaits == nil {
		c.rateLimitWaits = []time.Duration{20 * time.Second, 60 * time.Second}
	}
	if c.serverErrorWaits == nil {
		c.serverErrorWaits = []time.Duration{5 * time.Second, 30 * time.Second}
	}
	return c, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// callWithRetry retries rate-limit and server errors after the configured
// waits. Any other error returns immediately.
func (c *Client) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	rateLimited, serverFailed := 0, 0
	for {
		resp, err := c.api.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}

		var wait time.Duration
		switch {
		case isRateLimitError(err) && rateLimited < len(c.rateLimitWaits):
			wait = c.rateLimitWaits[rateLimited]
			rateLimited++
		case isServerError(err) && serverFailed < len(c.serverErrorWaits):
			wait = c.serverErrorWaits[serverFailed]
			serverFailed++
		default:
			return nil, err
		}

		if c.logger != nil {
			c.logger.Warn("llm request failed, retrying", "wait", wait, "err", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if statusCode(err) == http.StatusTooManyRequests {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	if code := statusCode(err); code >= 500 {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

func userMessage(text string) responses.ResponseNewParamsInputUnion {
	return responses.ResponseNewParamsInputUnion{
		OfInputItemList: []responses.ResponseInputItemUnionParam{
			responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
		},
	}
}

func requireOutput(resp *responses.Response) (string, error) {
	out := strings.TrimSpace(resp.OutputText())
	if out == "" {
		return "", fmt.Errorf("llm: empty response")
	}
	return out, nil
}
