package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"

	"github.com/cognicore/narrative/pkg/narrative/report"
)

const summaryInstructions = `You are a corporate communications analyst writing for executives.
Using ONLY the metrics provided, write a Markdown brief of at most 300 words with:
1. A short overview of the brand's reputation in the period.
2. The key drivers behind the sentiment, citing themes, keywords or headlines.
3. Exactly one concrete recommendation.
Do not invent numbers.`

// Summarize writes an executive summary for a brief.
func (c *Client) Summarize(ctx context.Context, in report.SummaryInput) (string, error) {
	params := responses.ResponseNewParams{
		Model:           c.model,
		Instructions:    openai.String(summaryInstructions),
		MaxOutputTokens: openai.Int(800),
		Input:           userMessage(formatPrompt(in)),
	}

	resp, err := c.callWithRetry(ctx, params)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return requireOutput(resp)
}

func formatPrompt(in report.SummaryInput) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Brand: %s\n", in.Brand)
	if in.Hours > 0 {
		fmt.Fprintf(&buf, "Window: last %d hours\n", in.Hours)
	}
	fmt.Fprintf(&buf, "Mentions analyzed: %d\n", in.MentionCount)
	data, err := json.MarshalIndent(in, "", "  ")
	if err == nil {
		fmt.Fprintf(&buf, "Metrics:\n%s\n", data)
	}
	return buf.String()
}
