// Package retrieval collects live brand mentions from news search, social
// search results and RSS feeds, and loads mention datasets from disk.
package retrieval

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// Query describes one retrieval request.
type Query struct {
	Brand       string
	Competitors []string
	Industry    string
	Hours       int
}

// Terms returns the brand followed by the non-blank competitors.
func (q Query) Terms() []string {
	terms := make([]string, 0, 1+len(q.Competitors))
	for _, t := range append([]string{q.Brand}, q.Competitors...) {
		if strings.TrimSpace(t) != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Source produces mentions for a query.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]*mention.Mention, error)
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
}

var defaultClient = &http.Client{Timeout: 10 * time.Second}

func clientOr(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return defaultClient
}

// errRateLimited marks a 429 answer. Search sources treat it as an empty page.
var errRateLimited = fmt.Errorf("rate limited: %w", internalerr.ErrSourceFailed)

// get fetches url and returns the body decoded to UTF-8.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])

	resp, err := clientOr(client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d: %w", url, resp.StatusCode, internalerr.ErrSourceFailed)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return toUTF8(data, resp.Header.Get("Content-Type")), nil
}

func toUTF8(data []byte, contentType string) []byte {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil && utf8.Valid(data) {
		return data
	}
	if err != nil {
		return bytes.ToValidUTF8(data, nil)
	}
	return decoded
}

// CleanDomain reduces a URL to its host without a leading "www.".
// It returns "web" when nothing is left.
func CleanDomain(url string) string {
	s := url
	if i := strings.LastIndex(s, "//"); i >= 0 {
		s = s[i+2:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	s = strings.Replace(s, "www.", "", 1)
	if s == "" {
		return "web"
	}
	return s
}

// stripHTML returns the text content of an HTML fragment.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
