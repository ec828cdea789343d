package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeToken folds a token for equality comparison. The result is NFKC
// normalized, case folded and stripped of punctuation and symbols. Tokens made
// only of punctuation normalize to the empty string.
func NormalizeToken(token string) string {
	folded := cases.Fold().String(norm.NFKC.String(strings.TrimSpace(token)))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WordSet is a case-insensitive set of normalized words.
type WordSet map[string]struct{}

// NewWordSet builds a set from words, normalizing each entry.
func NewWordSet(words []string) WordSet {
	set := make(WordSet, len(words))
	for _, w := range words {
		if key := NormalizeToken(w); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the normalized token is in the set.
func (s WordSet) Contains(token string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[NormalizeToken(token)]
	return ok
}
