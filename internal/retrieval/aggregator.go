package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cognicore/narrative/internal/logging"
	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/store"
)

// DefaultCacheTTL is how long a cached retrieval result is reused.
const DefaultCacheTTL = 15 * time.Minute

// signatureRunes is the text prefix length used to spot duplicates.
const signatureRunes = 50

// Aggregator runs every source for a query, merges and deduplicates their
// mentions and tags each with the brands it names.
type Aggregator struct {
	Sources []Source

	// Store caches results by query. Nil disables caching.
	Store    store.Store
	CacheTTL time.Duration

	Now    func() time.Time
	Logger *log.Logger

	group singleflight.Group
}

// DefaultSources returns the live sources: local and global news search,
// social search and RSS feeds.
func DefaultSources(logger *log.Logger) []Source {
	local := NewLocalNews("ng")
	local.Logger = logger
	global := NewGlobalNews()
	global.Logger = logger
	return []Source{
		local,
		global,
		&SocialSource{Logger: logger},
		&RSSSource{Logger: logger},
	}
}

// NewAggregator creates an aggregator over the default sources.
func NewAggregator(st store.Store, logger *log.Logger) *Aggregator {
	return &Aggregator{
		Sources:  DefaultSources(logger),
		Store:    st,
		CacheTTL: DefaultCacheTTL,
		Logger:   logger,
	}
}

// Fetch returns the mentions for q. Concurrent calls for the same query
// share one retrieval. Each caller gets its own copies.
func (a *Aggregator) Fetch(ctx context.Context, q Query) ([]*mention.Mention, error) {
	key := store.CacheKey(q.Brand, q.Hours, q.Competitors)
	v, err, _ := a.group.Do(key, func() (any, error) {
		return a.fetch(ctx, q, key)
	})
	if err != nil {
		return nil, err
	}
	return mention.CloneAll(v.([]*mention.Mention)), nil
}

func (a *Aggregator) fetch(ctx context.Context, q Query, key string) ([]*mention.Mention, error) {
	logger := logging.OrDefault(a.Logger)
	now := nowOr(a.Now)
	ttl := a.CacheTTL

	if a.Store != nil {
		cached, ok, err := a.Store.GetCachedMentions(ctx, key, ttl, now)
		switch {
		case err != nil:
			logger.Warn("cache read failed", "key", key, "err", err)
		case ok:
			logger.Debug("returning cached mentions", "key", key, "count", len(cached))
			return cached, nil
		}
	}

	results := make([][]*mention.Mention, len(a.Sources))
	errs := make([]error, len(a.Sources))
	var failed atomic.Int32

	var g errgroup.Group
	for i, src := range a.Sources {
		g.Go(func() error {
			ms, err := src.Fetch(ctx, q)
			if err != nil {
				failed.Add(1)
				errs[i] = fmt.Errorf("%s: %w", src.Name(), err)
				logger.Warn("source failed", "source", src.Name(), "err", err)
				return nil
			}
			logger.Info("source fetched", "source", src.Name(), "count", len(ms))
			results[i] = ms
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n := int(failed.Load()); n > 0 && n == len(a.Sources) {
		return nil, fmt.Errorf("all sources failed: %w", errors.Join(append(errs, internalerr.ErrSourceFailed)...))
	}

	var all []*mention.Mention
	for _, r := range results {
		all = append(all, r...)
	}
	unique := Dedupe(all)
	TagBrands(unique, q.Terms())
	logger.Info("retrieval finished", "mentions", len(unique))

	if a.Store != nil && len(unique) > 0 {
		if err := a.Store.PutCachedMentions(ctx, key, unique, now); err != nil {
			logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return unique, nil
}

// Dedupe keeps the first mention for each signature: the lower-cased first
// fifty characters of the text followed by the source.
func Dedupe(ms []*mention.Mention) []*mention.Mention {
	seen := make(map[string]bool, len(ms))
	out := make([]*mention.Mention, 0, len(ms))
	for _, m := range ms {
		if m == nil {
			continue
		}
		sig := signature(m)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, m)
	}
	return out
}

func signature(m *mention.Mention) string {
	text := []rune(m.Text)
	if len(text) > signatureRunes {
		text = text[:signatureRunes]
	}
	return strings.ToLower(string(text) + m.Source)
}

// TagBrands sets each mention's brand list to the names its text contains,
// compared case-insensitively as substrings. Names keep their given order.
func TagBrands(ms []*mention.Mention, names []string) {
	for _, m := range ms {
		text := strings.ToLower(m.Text)
		tags := []string{}
		for _, name := range names {
			if strings.Contains(text, strings.ToLower(name)) {
				tags = append(tags, name)
			}
		}
		m.MentionedBrands = mention.Some(tags)
	}
}
