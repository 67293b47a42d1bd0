// Package window retains mentions published within a trailing time window.
package window

import (
	"time"

	"github.com/cognicore/narrative/pkg/narrative/mention"
)

// Filter keeps mentions dated within the last hours, measured from now.
// hours <= 0 disables filtering and returns the input unchanged.
func Filter(mentions []*mention.Mention, hours int) []*mention.Mention {
	return FilterAt(mentions, hours, time.Now().UTC())
}

// FilterAt is Filter with an explicit reference time. Mentions whose date
// is missing or unparseable are kept.
func FilterAt(mentions []*mention.Mention, hours int, now time.Time) []*mention.Mention {
	if hours <= 0 {
		return mentions
	}
	cutoff := Cutoff(now, hours)
	filtered := make([]*mention.Mention, 0, len(mentions))
	for _, m := range mentions {
		if m == nil {
			continue
		}
		at, ok := m.Date.Time()
		if !ok || !at.Before(cutoff) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// Cutoff returns now minus hours.
func Cutoff(now time.Time, hours int) time.Time {
	return now.Add(-time.Duration(hours) * time.Hour)
}
