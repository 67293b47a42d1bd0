package retrieval

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

const (
	feedAuthority = 6
	feedReach     = 20000

	// HomeRegion is always queried in addition to the industry feeds.
	HomeRegion = "nigeria"
)

// DefaultFeeds is the feed catalog by industry.
var DefaultFeeds = map[string][]string{
	HomeRegion: {
		"https://punchng.com/feed/",
		"https://www.vanguardngr.com/feed/",
		"https://www.thecable.ng/feed",
		"https://dailypost.ng/feed/",
		"https://saharareporters.com/feeds/news",
		"https://businessday.ng/feed/",
		"https://nairametrics.com/feed/",
	},
	"tech": {
		"http://feeds.feedburner.com/TechCrunch/",
		"https://techcabal.com/feed/",
		"https://techpoint.africa/feed/",
		"https://www.theverge.com/rss/index.xml",
	},
	"finance": {
		"https://www.bloomberg.com/feed/podcast/etf.xml",
		"https://nairametrics.com/feed/",
		"https://www.cnbc.com/id/100003114/device/rss/rss.html",
	},
	"default": {
		"http://rss.cnn.com/rss/edition.rss",
		"http://feeds.reuters.com/reuters/topNews",
		"https://www.aljazeera.com/xml/rss/all.xml",
	},
}

// RSSSource reads the industry feeds plus the home-region feeds and keeps
// recent entries that name the brand or a competitor.
type RSSSource struct {
	// Feeds overrides DefaultFeeds.
	Feeds map[string][]string
	// Parallelism bounds concurrent feed downloads. Zero means 4.
	Parallelism int

	Client *http.Client
	Now    func() time.Time
	Logger *log.Logger
}

func (s *RSSSource) Name() string { return "rss" }

// FeedURLs lists the feeds read for an industry, without duplicates.
func (s *RSSSource) FeedURLs(industry string) []string {
	catalog := s.Feeds
	if catalog == nil {
		catalog = DefaultFeeds
	}
	seen := make(map[string]bool)
	var urls []string
	for _, u := range append(append([]string(nil), catalog[industry]...), catalog[HomeRegion]...) {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// Fetch reads every feed. Unreachable or malformed feeds are logged and
// skipped. Results keep feed order.
func (s *RSSSource) Fetch(ctx context.Context, q Query) ([]*mention.Mention, error) {
	now := nowOr(s.Now)
	var cutoff time.Time
	if q.Hours > 0 {
		cutoff = now.Add(-time.Duration(q.Hours) * time.Hour)
	}
	terms := make([]string, 0, 1+len(q.Competitors))
	for _, t := range q.Terms() {
		terms = append(terms, strings.ToLower(t))
	}

	urls := s.FeedURLs(q.Industry)
	results := make([][]*mention.Mention, len(urls))

	limit := s.Parallelism
	if limit <= 0 {
		limit = 4
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			feed, err := s.parse(ctx, u)
			if err != nil {
				logging.OrDefault(s.Logger).Warn("feed skipped", "url", u, "err", err)
				return nil
			}
			results[i] = matchEntries(feed, u, terms, cutoff, now)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*mention.Mention
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (s *RSSSource) parse(ctx context.Context, url string) (*gofeed.Feed, error) {
	body, err := get(ctx, s.Client, url)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// matchEntries converts the entries published at or after cutoff whose
// title or summary contains one of terms. Undated entries count as new.
func matchEntries(feed *gofeed.Feed, feedURL string, terms []string, cutoff, now time.Time) []*mention.Mention {
	var out []*mention.Mention
	for _, entry := range feed.Items {
		published := now
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}
		if published.Before(cutoff) {
			continue
		}

		text := strings.TrimSpace(entry.Title + " " + stripHTML(entry.Description))
		if !containsAny(strings.ToLower(text), terms) {
			continue
		}

		link := entry.Link
		if link == "" {
			link = feedURL
		}
		out = append(out, &mention.Mention{
			Text:      text,
			Source:    CleanDomain(link),
			Date:      mention.DateTime(published),
			Link:      entry.Link,
			Authority: mention.CountOf(feedAuthority),
			Reach:     mention.CountOf(feedReach),
		})
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
