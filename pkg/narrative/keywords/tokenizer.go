package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenRunes is the shortest token kept; shorter ones carry no signal.
const minTokenRunes = 3

// Tokenize splits text into lower-cased word tokens. Hyphens, apostrophes
// and underscores stay inside a token so that compounds like "top-tier"
// remain one (non-alphabetic) token rather than two fragments.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if tok := strings.Trim(current.String(), "'-_"); tok != "" {
			tokens = append(tokens, tok)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' || r == '_' {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// isCandidate reports whether a token is long enough and purely alphabetic.
func isCandidate(tok string) bool {
	if utf8.RuneCountInString(tok) < minTokenRunes {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
