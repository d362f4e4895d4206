package knowledge

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minKeywordRunes = 3

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"can": {}, "her": {}, "was": {}, "one": {}, "our": {}, "had": {}, "use": {}, "how": {},
	"may": {}, "say": {}, "she": {}, "his": {}, "has": {}, "its": {},
}

// Extract returns the significant terms of text as an ordered set: each
// term appears once, in order of first occurrence.
func Extract(text string) []string {
	if text == "" {
		return []string{}
	}

	words := strings.Fields(strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return ' '
	}, text))

	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) < minKeywordRunes {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

func keywordSet(text string) map[string]struct{} {
	terms := Extract(text)
	out := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		out[term] = struct{}{}
	}
	return out
}
