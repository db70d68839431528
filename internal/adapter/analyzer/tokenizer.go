package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits dish descriptions into lower-cased word tokens.
type Tokenizer struct {
	stopwords map[string]struct{}
	singular  bool
}

// NewTokenizer creates a new Tokenizer. With singular set, simple English
// plurals are folded ("oysters" -> "oyster", "berries" -> "berry").
func NewTokenizer(singular bool) *Tokenizer {
	return &Tokenizer{
		stopwords: defaultStopwords(),
		singular:  singular,
	}
}

// Tokenize splits text into tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if t.singular {
			word = Singularize(word)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// Singularize folds the common English plural endings.
func Singularize(word string) string {
	n := len(word)
	switch {
	case n > 4 && strings.HasSuffix(word, "ies"):
		return word[:n-3] + "y"
	case n > 4 && (strings.HasSuffix(word, "ches") || strings.HasSuffix(word, "shes") || strings.HasSuffix(word, "oes")):
		return word[:n-2]
	case n > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us"):
		return word[:n-1]
	}
	return word
}

// splitWords splits text into words using unicode letter and digit classes.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			if r != '\'' {
				current.WriteRune(r)
			}
			continue
		}
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "by", "for", "from",
		"in", "is", "it", "of", "on", "or", "the", "to", "with",
		"served", "over", "into", "some", "our", "my", "your",
		"style", "fresh", "homemade", "side", "plus", "en", "de",
		"la", "le", "du", "al", "alla", "au", "aux",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
