package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minHintTermRunes = 4

	// hintSimilarity keeps a one-letter slip in a seven-letter word.
	hintSimilarity = 0.75
)

// HintTerms extracts the lookup terms of a wine name hint: folded,
// lower-cased words of at least four runes that are not plain numbers.
// Short words ("de", "la") and vintages do not narrow a catalog.
func HintTerms(hint string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, w := range splitWords(strings.ToLower(FoldAccents(hint))) {
		if utf8.RuneCountInString(w) < minHintTermRunes || isNumber(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

// MatchesHint reports whether any term occurs in one of the fields or is
// close to one of their words, so OCR slips ("Chateu Margux") still reach
// the resolver. An empty term list matches everything.
func MatchesHint(terms []string, fields ...string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, f := range fields {
		f = strings.ToLower(FoldAccents(f))
		words := splitWords(f)
		for _, t := range terms {
			if strings.Contains(f, t) {
				return true
			}
			for _, w := range words {
				if Similarity(t, w) >= hintSimilarity {
					return true
				}
			}
		}
	}
	return false
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
