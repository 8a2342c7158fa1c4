package knowledge

import (
	"regexp"
	"strings"
)

var tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

// stopWords are excluded from both indexing and queries.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"you": {}, "your": {}, "are": {}, "from": {}, "have": {}, "has": {},
	"how": {}, "what": {}, "when": {}, "where": {}, "who": {}, "why": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "into": {},
	"about": {}, "also": {}, "not": {}, "but": {}, "all": {}, "any": {},
	"our": {}, "their": {},
}

// Tokenize lowercases text, extracts alphanumeric runs, and drops tokens
// of length <= 2 and stop words.
func Tokenize(text string) []string {
	matches := tokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, token := range matches {
		if len(token) <= 2 {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
