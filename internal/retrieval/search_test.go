package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/narrative/internal/logging"
)

var fixedNow = time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

const newsPage = `<html><body>
<div class="SoaBEf"><a href="https://www.punchng.com/acme-profit">
  <div role="heading">Acme posts record profit</div>
  <div class="GI74Re">Shares rose sharply.</div>
  <div class="OSrXXb">3 hours ago</div>
</a></div>
<div class="SoaBEf"><span>sponsored</span></div>
<div class="SoaBEf"><a href="https://guardian.ng/zenith">Zenith expands</a>
  <span class="WG9SPL">Mar 1, 2024</span>
</div>
</body></html>`

func TestTimeRange(t *testing.T) {
	tests := []struct {
		hours int
		want  string
	}{
		{0, ""},
		{1, "qdr:h"},
		{2, "qdr:d1"},
		{24, "qdr:d1"},
		{47, "qdr:d1"},
		{72, "qdr:d3"},
	}
	for _, tt := range tests {
		if got := timeRange(tt.hours); got != tt.want {
			t.Errorf("timeRange(%d) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestSearchURL(t *testing.T) {
	s := NewLocalNews("ng")
	raw := s.URL(Query{Brand: "Acme", Competitors: []string{"Zenith", " "}, Hours: 48})
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("q") != "Acme OR Zenith" || q.Get("gl") != "ng" || q.Get("tbm") != "nws" || q.Get("tbs") != "qdr:d2" {
		t.Errorf("unexpected query %v", q)
	}
	if !strings.HasPrefix(raw, DefaultSearchURL) {
		t.Errorf("url = %s", raw)
	}
	if unbounded := s.URL(Query{Brand: "Acme"}); strings.Contains(unbounded, "tbs=") {
		t.Errorf("no window should omit the time filter: %s", unbounded)
	}

	if got := NewGlobalNews().Terms(Query{Brand: "Acme"}); got != "Acme news" {
		t.Errorf("global terms = %q", got)
	}
}

func TestSearchSourceParsesCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(newsPage))
	}))
	defer srv.Close()

	s := NewLocalNews("ng")
	s.BaseURL = srv.URL
	s.Now = clock

	ms, err := s.Fetch(context.Background(), Query{Brand: "Acme", Hours: 24})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d mentions, want 2", len(ms))
	}

	first := ms[0]
	if first.Text != "Acme posts record profit Shares rose sharply." {
		t.Errorf("text = %q", first.Text)
	}
	if first.Source != "punchng.com" {
		t.Errorf("source = %q", first.Source)
	}
	if at, _ := first.Date.Time(); !at.Equal(fixedNow.Add(-3 * time.Hour)) {
		t.Errorf("date = %v", at)
	}
	if first.Authority.Or(0) != 7 || first.Reach.Or(0) != 50000 {
		t.Errorf("authority/reach = %d/%d", first.Authority.Or(0), first.Reach.Or(0))
	}

	if at, _ := ms[1].Date.Time(); !at.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("absolute date = %v", at)
	}
	if ms[1].Text != "Zenith expands" {
		t.Errorf("title fallback = %q", ms[1].Text)
	}
}

func TestSearchSourceRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewGlobalNews()
	s.BaseURL = srv.URL
	s.Logger = logging.Discard()

	ms, err := s.Fetch(context.Background(), Query{Brand: "Acme"})
	if err != nil || len(ms) != 0 {
		t.Errorf("rate limit should yield no results and no error, got %d, %v", len(ms), err)
	}
}

func TestSearchSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewGlobalNews()
	s.BaseURL = srv.URL
	if _, err := s.Fetch(context.Background(), Query{Brand: "Acme"}); err == nil {
		t.Error("expected error on 502")
	}
}

func TestParseCardTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"5 mins ago", fixedNow.Add(-5 * time.Minute), true},
		{"1 hour ago", fixedNow.Add(-time.Hour), true},
		{"2 days ago", fixedNow.Add(-48 * time.Hour), true},
		{"1 week ago", fixedNow.Add(-7 * 24 * time.Hour), true},
		{"2024-02-28T09:30:00Z", time.Date(2024, 2, 28, 9, 30, 0, 0, time.UTC), true},
		{"yesterday-ish", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := parseCardTime(tt.in, fixedNow)
		if ok != tt.ok || (ok && !got.Equal(tt.want)) {
			t.Errorf("parseCardTime(%q) = %v,%v; want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func socialPage(title, link string) string {
	return `<html><body><div class="g"><a href="` + link + `"><h3>` + title + `</h3></a>
<div class="VwiC3b">Anyone else?</div></div>
<div class="g"><a href="/no-title">no heading here</a></div></body></html>`
}

func TestSocialSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if r.URL.Query().Get("tbs") != "qdr:w" {
			t.Errorf("tbs = %q", r.URL.Query().Get("tbs"))
		}
		switch {
		case strings.HasPrefix(q, "site:nairaland.com"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.HasPrefix(q, "site:reddit.com"):
			w.Write([]byte(socialPage("Acme app down again", "https://reddit.com/r/acme/1")))
		case strings.HasPrefix(q, `site:linkedin.com/posts "Acme"`):
			w.Write([]byte(socialPage("Proud of the Acme team", "https://linkedin.com/posts/2")))
		default:
			t.Errorf("unexpected query %q", q)
		}
	}))
	defer srv.Close()

	s := &SocialSource{BaseURL: srv.URL, Now: clock, Logger: logging.Discard()}
	ms, err := s.Fetch(context.Background(), Query{Brand: "Acme"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("got %d mentions, want 2", len(ms))
	}
	if ms[0].Source != "reddit" || ms[1].Source != "linkedin" {
		t.Errorf("sources = %q, %q", ms[0].Source, ms[1].Source)
	}
	if ms[0].Text != "Acme app down again Anyone else?" {
		t.Errorf("text = %q", ms[0].Text)
	}
	if at, _ := ms[0].Date.Time(); !at.Equal(fixedNow) {
		t.Errorf("date = %v, want fetch time", at)
	}
	if ms[0].Authority.Or(0) != 5 || ms[0].Reach.Or(0) != 10000 {
		t.Error("social authority/reach wrong")
	}
}

func TestSocialSourceAllSitesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := &SocialSource{BaseURL: srv.URL, Logger: logging.Discard()}
	if _, err := s.Fetch(context.Background(), Query{Brand: "Acme"}); err == nil {
		t.Error("expected error when every site fails")
	}
}

func TestCleanDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://www.punchng.com/a/b", "punchng.com"},
		{"http://techcabal.com", "techcabal.com"},
		{"guardian.ng/news", "guardian.ng"},
		{"", "web"},
		{"https://", "web"},
	}
	for _, tt := range tests {
		if got := CleanDomain(tt.in); got != tt.want {
			t.Errorf("CleanDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML(`<p>Acme <b>wins</b> award &amp; more</p>`)
	if got != "Acme wins award & more" {
		t.Errorf("stripHTML = %q", got)
	}
	if got := stripHTML("  plain text "); got != "plain text" {
		t.Errorf("plain = %q", got)
	}
}
