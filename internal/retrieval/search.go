package retrieval

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/charmbracelet/log"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// DefaultSearchURL is the search endpoint queried by SearchSource and SocialSource.
const DefaultSearchURL = "https://www.google.com/search"

const (
	newsAuthority   = 7
	newsReach       = 50000
	socialAuthority = 5
	socialReach     = 10000
)

// News result cards. Markup changes over time; the first selector that
// matches anything wins.
var cardSelectors = []string{"div.SoaBEf", "div.dbsr", "div.Gx5Zad"}

// SearchSource scrapes the news tab of a web search.
type SearchSource struct {
	Label string
	// Geo is the country code passed as gl, e.g. "ng" or "us".
	Geo string
	// Terms builds the search terms for a query.
	Terms func(Query) string

	BaseURL string
	Client  *http.Client
	Now     func() time.Time
	Logger  *log.Logger
}

// NewLocalNews searches for the brand or any competitor in one country.
func NewLocalNews(geo string) *SearchSource {
	return &SearchSource{
		Label: "news-" + geo,
		Geo:   geo,
		Terms: func(q Query) string { return strings.Join(q.Terms(), " OR ") },
	}
}

// NewGlobalNews searches for brand news worldwide.
func NewGlobalNews() *SearchSource {
	return &SearchSource{
		Label: "news-global",
		Geo:   "us",
		Terms: func(q Query) string { return q.Brand + " news" },
	}
}

func (s *SearchSource) Name() string { return s.Label }

// URL returns the search URL for q.
func (s *SearchSource) URL(q Query) string {
	base := s.BaseURL
	if base == "" {
		base = DefaultSearchURL
	}
	v := url.Values{}
	v.Set("q", s.Terms(q))
	v.Set("gl", s.Geo)
	v.Set("hl", "en")
	v.Set("tbm", "nws")
	if tbs := timeRange(q.Hours); tbs != "" {
		v.Set("tbs", tbs)
	}
	return base + "?" + v.Encode()
}

// timeRange maps a window to the qdr search filter: none without a window,
// hourly for one hour, otherwise whole days rounded down with a minimum of one.
func timeRange(hours int) string {
	if hours <= 0 {
		return ""
	}
	if hours == 1 {
		return "qdr:h"
	}
	return "qdr:d" + strconv.Itoa(max(1, hours/24))
}

func (s *SearchSource) Fetch(ctx context.Context, q Query) ([]*mention.Mention, error) {
	body, err := get(ctx, s.Client, s.URL(q))
	if errors.Is(err, errRateLimited) {
		logging.OrDefault(s.Logger).Warn("search rate limited, skipping", "source", s.Label)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseNewsCards(body, nowOr(s.Now))
}

func parseNewsCards(body []byte, now time.Time) ([]*mention.Mention, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var cards *goquery.Selection
	for _, sel := range cardSelectors {
		if cards = doc.Find(sel); cards.Length() > 0 {
			break
		}
	}

	var out []*mention.Mention
	cards.Each(func(_ int, card *goquery.Selection) {
		a := card.Find("a").First()
		link, ok := a.Attr("href")
		if !ok {
			return
		}

		title := card.Find(`div[role="heading"]`).First()
		if title.Length() == 0 {
			title = a
		}
		snippet := card.Find("div.GI74Re").First()
		if snippet.Length() == 0 {
			snippet = card.Find("div.n0jPhd").First()
		}

		published := now
		timeEl := card.Find("div.OSrXXb").First()
		if timeEl.Length() == 0 {
			timeEl = card.Find("span.WG9SPL").First()
		}
		if timeEl.Length() > 0 {
			if t, ok := parseCardTime(timeEl.Text(), now); ok {
				published = t
			}
		}

		out = append(out, &mention.Mention{
			Text:      strings.TrimSpace(strings.TrimSpace(title.Text()) + " " + strings.TrimSpace(snippet.Text())),
			Source:    CleanDomain(link),
			Date:      mention.DateTime(published),
			Link:      link,
			Authority: mention.CountOf(newsAuthority),
			Reach:     mention.CountOf(newsReach),
		})
	})
	return out, nil
}

var relativeTime = regexp.MustCompile(`(?i)^(\d+)\s*(min|mins|minute|minutes|hour|hours|day|days|week|weeks)\s+ago$`)

// parseCardTime reads a result timestamp, either relative ("3 hours ago")
// or absolute ("Mar 1, 2024").
func parseCardTime(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if m := relativeTime.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		unit := time.Minute
		switch strings.ToLower(m[2])[0] {
		case 'h':
			unit = time.Hour
		case 'd':
			unit = 24 * time.Hour
		case 'w':
			unit = 7 * 24 * time.Hour
		}
		return now.Add(-time.Duration(n) * unit), true
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Site is one community searched by SocialSource.
type Site struct {
	// Tag becomes the mention source.
	Tag string
	// Scope is the site: filter, e.g. "reddit.com".
	Scope string
}

// DefaultSites are the communities searched for public posts.
var DefaultSites = []Site{
	{Tag: "nairaland", Scope: "nairaland.com"},
	{Tag: "reddit", Scope: "reddit.com"},
	{Tag: "linkedin", Scope: "linkedin.com/posts"},
}

// SocialSource finds public posts on community sites through site-scoped
// web search over the last week. Post dates are not available, so every
// result is dated at fetch time.
type SocialSource struct {
	Sites []Site

	BaseURL string
	Client  *http.Client
	Now     func() time.Time
	Logger  *log.Logger
}

func (s *SocialSource) Name() string { return "social" }

func (s *SocialSource) sites() []Site {
	if s.Sites != nil {
		return s.Sites
	}
	return DefaultSites
}

func (s *SocialSource) url(site Site, brand string) string {
	base := s.BaseURL
	if base == "" {
		base = DefaultSearchURL
	}
	v := url.Values{}
	v.Set("q", fmt.Sprintf("site:%s %q", site.Scope, brand))
	v.Set("tbs", "qdr:w")
	return base + "?" + v.Encode()
}

// Fetch searches each site in turn. A failing site is logged and skipped;
// the error is returned only when every site fails.
func (s *SocialSource) Fetch(ctx context.Context, q Query) ([]*mention.Mention, error) {
	now := nowOr(s.Now)
	sites := s.sites()

	var out []*mention.Mention
	var errs []error
	for _, site := range sites {
		body, err := get(ctx, s.Client, s.url(site, q.Brand))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.OrDefault(s.Logger).Warn("social search failed", "site", site.Tag, "err", err)
			errs = append(errs, err)
			continue
		}
		found, err := parseResults(body, site.Tag, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, found...)
	}
	if len(sites) > 0 && len(errs) == len(sites) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func parseResults(body []byte, tag string, now time.Time) ([]*mention.Mention, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var out []*mention.Mention
	doc.Find("div.g").Each(func(_ int, res *goquery.Selection) {
		h3 := res.Find("h3").First()
		if h3.Length() == 0 {
			return
		}
		link, _ := res.Find("a").First().Attr("href")
		snippet := res.Find("div.VwiC3b").First().Text()

		out = append(out, &mention.Mention{
			Text:      strings.TrimSpace(h3.Text() + " " + snippet),
			Source:    tag,
			Date:      mention.DateTime(now),
			Link:      link,
			Authority: mention.CountOf(socialAuthority),
			Reach:     mention.CountOf(socialReach),
		})
	})
	return out, nil
}
