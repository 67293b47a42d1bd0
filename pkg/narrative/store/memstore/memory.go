package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/narrative/pkg/narrative/internalerr"
	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/report"
	"github.com/cognicore/narrative/pkg/narrative/store"
)

type cacheEntry struct {
	at       time.Time
	mentions []*mention.Mention
}

// Store is an in-memory implementation of store.Store for tests and
// one-shot runs without a database.
type Store struct {
	mu     sync.RWMutex
	cache  map[string]cacheEntry
	briefs map[string]report.Brief
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		cache:  make(map[string]cacheEntry),
		briefs: make(map[string]report.Brief),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// GetCachedMentions returns a copy of the cached mentions for key if they
// are younger than maxAge.
func (s *Store) GetCachedMentions(ctx context.Context, key string, maxAge time.Duration, now time.Time) ([]*mention.Mention, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache[key]
	if !ok || !store.Fresh(entry.at, now, maxAge) {
		return nil, false, nil
	}
	return mention.CloneAll(entry.mentions), true, nil
}

// PutCachedMentions stores a copy of mentions under key.
func (s *Store) PutCachedMentions(ctx context.Context, key string, mentions []*mention.Mention, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = cacheEntry{at: at, mentions: mention.CloneAll(mentions)}
	return nil
}

// SaveBrief inserts or replaces a brief by id.
func (s *Store) SaveBrief(ctx context.Context, b report.Brief) error {
	if b.ID == "" {
		return fmt.Errorf("save brief: %w: empty id", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.briefs[b.ID] = b
	return nil
}

// GetBrief returns a brief by id.
func (s *Store) GetBrief(ctx context.Context, id string) (report.Brief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.briefs[id]
	if !ok {
		return report.Brief{}, fmt.Errorf("brief %s: %w", id, internalerr.ErrNotFound)
	}
	return b, nil
}

// ListBriefs returns the newest briefs for brand (any brand when empty).
func (s *Store) ListBriefs(ctx context.Context, brand string, limit int) ([]report.Brief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []report.Brief
	for _, b := range s.briefs {
		if brand != "" && !strings.EqualFold(b.Brand, brand) {
			continue
		}
		results = append(results, b)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
