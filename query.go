package coverpick

import (
	"strings"
	"unicode/utf8"
)

// minWordRunes is the minimum rune count for a word to be kept in a stock query.
const minWordRunes = 3

// maxQueryWords is the maximum number of meaningful words in a stock query.
const maxQueryWords = 5

// stopWords are common English words that only dilute stock keyword search.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "are": true, "was": true, "were": true,
	"into": true, "onto": true, "over": true, "about": true, "its": true,
	"our": true, "your": true, "their": true, "has": true, "have": true,
	"will": true, "new": true, "how": true, "why": true, "what": true,
	"photo": true, "image": true, "picture": true,
}

// BuildStockQuery reduces a free-form query to at most 5 meaningful keywords.
// Stock photo APIs match keywords, so long phrases only narrow results.
func BuildStockQuery(query string) string {
	var meaningful []string
	for _, w := range strings.Fields(query) {
		w = strings.Trim(w, ".,;:!?\"'()[]{}«»—–-")
		if w == "" {
			continue
		}
		if stopWords[strings.ToLower(w)] {
			continue
		}
		if utf8.RuneCountInString(w) < minWordRunes {
			continue
		}
		meaningful = append(meaningful, w)
	}

	if len(meaningful) > maxQueryWords {
		meaningful = meaningful[:maxQueryWords]
	}
	return strings.Join(meaningful, " ")
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
