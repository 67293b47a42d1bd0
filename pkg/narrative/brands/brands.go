// Package brands detects which tracked brand names appear in a text.
package brands

import (
	"regexp"
	"strings"
)

// Word boundaries are spelled out because regexp's \b only knows ASCII
// word characters, which would reject names like "Nestlé" or "Ørsted".
const (
	wordStart = `(?:^|[^\p{L}\p{M}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{M}\p{N}_])`
)

// Detector matches a fixed, ordered candidate list. It is immutable and safe
// for concurrent use.
type Detector struct {
	names    []string
	patterns []*regexp.Regexp
}

// NewDetector compiles whole-word, case-insensitive patterns for each
// candidate. Blank names are skipped and repeated names (compared
// case-insensitively) keep only their first occurrence.
func NewDetector(candidates []string) *Detector {
	d := &Detector{}
	seen := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		d.names = append(d.names, name)
		d.patterns = append(d.patterns, regexp.MustCompile(wordStart+regexp.QuoteMeta(key)+wordEnd))
	}
	return d
}

// Names returns the candidate names in match order.
func (d *Detector) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Detect returns the candidates present in text, in candidate order.
// Multi-word names must appear as a contiguous phrase.
func (d *Detector) Detect(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0, len(d.names))
	for i, re := range d.patterns {
		if re.MatchString(lower) {
			found = append(found, d.names[i])
		}
	}
	return found
}

// Detect is a one-shot helper for callers without a prepared Detector.
func Detect(text string, candidates []string) []string {
	return NewDetector(candidates).Detect(text)
}

// Candidates returns the tracked brand followed by competitors.
func Candidates(brand string, competitors []string) []string {
	out := make([]string, 0, len(competitors)+1)
	out = append(out, brand)
	return append(out, competitors...)
}
