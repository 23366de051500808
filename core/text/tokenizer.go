// Package text provides tokenization, TF-IDF scoring and set similarity for
// the retrieval pipeline.
package text

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases the input and splits it on non-alphanumeric
// boundaries, dropping empty tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TermFrequencies counts occurrences per token.
func TermFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// TokenSet returns the distinct tokens.
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
