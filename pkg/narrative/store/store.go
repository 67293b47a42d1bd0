package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/narrative/pkg/narrative/mention"
	"github.com/cognicore/narrative/pkg/narrative/report"
)

// Store persists retrieval results and briefs between runs
type Store interface {
	Close() error

	// Retrieval cache
	GetCachedMentions(ctx context.Context, key string, maxAge time.Duration, now time.Time) ([]*mention.Mention, bool, error)
	PutCachedMentions(ctx context.Context, key string, mentions []*mention.Mention, at time.Time) error

	// Briefs
	SaveBrief(ctx context.Context, b report.Brief) error
	GetBrief(ctx context.Context, id string) (report.Brief, error)
	ListBriefs(ctx context.Context, brand string, limit int) ([]report.Brief, error)
}

// CacheKey identifies a retrieval request. Competitor order and brand case
// do not change the key.
func CacheKey(brand string, hours int, competitors []string) string {
	comps := append([]string(nil), competitors...)
	sort.Strings(comps)
	return strings.ToLower(brand) + "|" + strconv.Itoa(hours) + "|" + strings.Join(comps, ",")
}

// Fresh reports whether an entry stored at stored is still valid at now.
// A non-positive maxAge never expires.
func Fresh(stored, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}
	return now.Sub(stored) < maxAge
}
